package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/returns"
)

// ReturnHandler maneja devoluciones de ventas (protegido).
type ReturnHandler struct {
	uc *returns.Service
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.Service) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

// Create POST /api/returns
// El stock vuelve a la van de la venta; refund_mode credit descuenta del saldo del cliente.
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateReturn(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/returns/:id
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReturn(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/returns?sale_id=&customer_id=&from=&to=
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListReturns(c.UserContext(), GetActor(c), dto.ReturnListRequest{
		PageRequest: page,
		SaleID:      c.Query("sale_id"),
		CustomerID:  c.Query("customer_id"),
		From:        from,
		To:          to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
