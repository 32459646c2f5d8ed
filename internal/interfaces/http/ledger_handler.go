package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ledger"
)

// LedgerHandler consulta y auditoría del libro de movimientos.
type LedgerHandler struct {
	uc *ledger.Service
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Entries godoc
// @Summary      Listar asientos del libro
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        kind          query  string  false  "sale | return | transfer | adjustment"
// @Param        reference_id  query  string  false  "ID del documento"
// @Param        product_id    query  string  false  "Producto afectado"
// @Param        location_id   query  string  false  "Ubicación afectada"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/entries [get]
func (h *LedgerHandler) Entries(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListEntries(c.UserContext(), GetActor(c), dto.LedgerListRequest{
		PageRequest: page,
		Kind:        c.Query("kind"),
		ReferenceID: c.Query("reference_id"),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		From:        from,
		To:          to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Quantity godoc
// @Summary      Cantidad reconstruida desde el libro
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        as_of        query  string  false  "Corte (default ahora)"
// @Success      200  {object}  dto.QuantityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/quantity [get]
func (h *LedgerHandler) Quantity(c *fiber.Ctx) error {
	asOf, err := queryTime(c, "as_of")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ReconstructQuantity(c.UserContext(), GetActor(c), c.Query("product_id"), c.Query("location_id"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock vivo contra el libro
// @Description  Sólo admin.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ledger/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
