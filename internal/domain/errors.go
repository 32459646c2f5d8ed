package domain

import "errors"

// Tipos de error. Cada modo de falla concreto envuelve exactamente uno de ellos,
// de modo que errors.Is(err, ErrConflict) y errors.Is(err, ErrInsufficientStock) funcionan a la vez.
var (
	ErrValidation   = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrContention   = errors.New("contención transitoria, reintente")
	ErrForbidden    = errors.New("acceso denegado")
	ErrUnauthorized = errors.New("no autorizado")
)

// Modos de falla concretos.
var (
	ErrInvalidQuantity = newKindError(ErrValidation, "INVALID_QUANTITY", "la cantidad debe ser mayor que cero")

	ErrUnknownCustomer = newKindError(ErrNotFound, "UNKNOWN_CUSTOMER", "cliente desconocido")
	ErrUnknownVan      = newKindError(ErrNotFound, "UNKNOWN_VAN", "van desconocida")
	ErrUnknownLocation = newKindError(ErrNotFound, "UNKNOWN_LOCATION", "ubicación desconocida")
	ErrUnknownProduct  = newKindError(ErrNotFound, "UNKNOWN_PRODUCT", "producto desconocido")
	ErrUnknownSale     = newKindError(ErrNotFound, "UNKNOWN_SALE", "venta desconocida")
	ErrUnknownReturn   = newKindError(ErrNotFound, "UNKNOWN_RETURN", "devolución desconocida")
	ErrUnknownTransfer = newKindError(ErrNotFound, "UNKNOWN_TRANSFER", "traslado desconocido")
	ErrUserNotFound    = newKindError(ErrNotFound, "USER_NOT_FOUND", "usuario no encontrado")

	ErrInsufficientStock = newKindError(ErrConflict, "INSUFFICIENT_STOCK", "stock insuficiente")
	ErrOverReturn        = newKindError(ErrConflict, "OVER_RETURN", "la cantidad supera lo pendiente por devolver")
	ErrItemNotInSale     = newKindError(ErrConflict, "ITEM_NOT_IN_SALE", "el producto no pertenece a la venta")
	ErrSameLocation      = newKindError(ErrConflict, "SAME_LOCATION", "origen y destino deben ser distintos")
	ErrAlreadyCompleted  = newKindError(ErrConflict, "ALREADY_COMPLETED", "el traslado ya fue completado")
	ErrDuplicateCode     = newKindError(ErrConflict, "DUPLICATE_CODE", "el código ya existe")
	ErrAdminExists       = newKindError(ErrConflict, "ADMIN_EXISTS", "ya existe un administrador")
)

// KindError modo de falla con código estable para clientes (p. ej. "OVER_RETURN").
type KindError struct {
	kind error
	code string
	msg  string
}

func newKindError(kind error, code, msg string) *KindError {
	return &KindError{kind: kind, code: code, msg: msg}
}

func (e *KindError) Error() string { return e.msg }

// Unwrap expone el tipo (ErrConflict, ErrNotFound, ...).
func (e *KindError) Unwrap() error { return e.kind }

// Code código estable del modo de falla.
func (e *KindError) Code() string { return e.code }

// KindOf devuelve el tipo de error de err, o nil si no pertenece a la taxonomía.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrContention, ErrForbidden, ErrUnauthorized} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// CodeOf devuelve el código del modo de falla más específico presente en la cadena de err.
func CodeOf(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.code
	}
	switch KindOf(err) {
	case ErrValidation:
		return "VALIDATION"
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrConflict:
		return "CONFLICT"
	case ErrContention:
		return "CONTENTION"
	case ErrForbidden:
		return "FORBIDDEN"
	case ErrUnauthorized:
		return "UNAUTHORIZED"
	}
	return "INTERNAL"
}

// IsRetryable indica si la operación puede reintentarse automáticamente.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
