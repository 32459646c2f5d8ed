package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/catalog"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
)

// InventoryHandler consultas de stock y ajustes manuales (protegido).
type InventoryHandler struct {
	uc *catalog.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *catalog.Service) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Stock godoc
// @Summary      Consultar stock
// @Description  Con product_id y location_id devuelve una cantidad; con sólo uno de ellos, la lista correspondiente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "ID del producto"
// @Param        location_id  query  string  false  "ID de la ubicación"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	productID, locationID := c.Query("product_id"), c.Query("location_id")
	ctx, actor := c.UserContext(), GetActor(c)
	switch {
	case productID != "" && locationID != "":
		out, err := h.uc.GetQuantity(ctx, actor, productID, locationID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	case productID != "":
		out, err := h.uc.StockByProduct(ctx, actor, productID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	case locationID != "":
		out, err := h.uc.ListStockAt(ctx, actor, locationID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
	return writeError(c, fmt.Errorf("%w: product_id o location_id es requerido", domain.ErrValidation))
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Sólo admin. Genera un asiento de ajuste en el libro.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, location_id, delta, reason"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.AdjustStock(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
