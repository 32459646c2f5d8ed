package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/report"
)

// ReportHandler reportes tabulares y su exportación a PDF/Excel.
type ReportHandler struct {
	uc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.Service) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Get godoc
// @Summary      Reporte tabular
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        kind  path   string  true   "sales | returns | transfers | stock"
// @Param        from  query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to    query  string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Success      200  {object}  dto.ReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind} [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Report(c.UserContext(), GetActor(c), c.Params("kind"), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar reporte
// @Description  Sólo admin. Devuelve el archivo como adjunto.
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        kind    path   string  true   "sales | returns | transfers | stock"
// @Param        format  query  string  false  "pdf | xlsx"  default(pdf)
// @Param        from    query  string  false  "Desde"
// @Param        to      query  string  false  "Hasta"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	file, err := h.uc.Export(c.UserContext(), GetActor(c), c.Params("kind"), c.Query("format", "pdf"), from, to)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Send(file.Data)
}
