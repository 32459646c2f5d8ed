package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/report"
)

// DashboardHandler maneja el resumen del tablero.
type DashboardHandler struct {
	uc *report.Service
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *report.Service) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve ventas, devoluciones, traslados y productos con stock bajo del período.
// GET /api/reports/dashboard?from=&to=&low_stock=
//
// Sin from/to toma el mes en curso. low_stock es el umbral (default report.DefaultLowStockThreshold).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	threshold := int64(c.QueryInt("low_stock", report.DefaultLowStockThreshold))

	summary, err := h.uc.Dashboard(c.UserContext(), GetActor(c), from, to, threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
