package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/sales"
)

// SaleHandler maneja ventas desde una van (protegido).
type SaleHandler struct {
	uc *sales.Service
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.Service) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de la van, calcula totales y actualiza el saldo del cliente si queda pendiente.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "customer_id, van_id, items, payment"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateSale(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSale(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente"
// @Param        van_id       query  string  false  "Van"
// @Param        from         query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListSales(c.UserContext(), GetActor(c), dto.SaleListRequest{
		PageRequest: page,
		CustomerID:  c.Query("customer_id"),
		VanID:       c.Query("van_id"),
		From:        from,
		To:          to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Returnable godoc
// @Summary      Cantidades aún devolvibles de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {array}   dto.ReturnableItem
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/returnable [get]
func (h *SaleHandler) Returnable(c *fiber.Ctx) error {
	out, err := h.uc.ReturnableQuantities(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
