package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
)

// Formatos aceptados para fechas en query: RFC3339 o sólo fecha.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

// queryTime lee una fecha opcional del query string; vacía = tiempo cero.
func queryTime(c *fiber.Ctx, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s debe ser RFC3339 o AAAA-MM-DD", domain.ErrValidation, key)
}

// queryRange lee from/to. Un to con sólo fecha incluye el día completo.
func queryRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := queryTime(c, "from")
	if err != nil {
		return from, time.Time{}, err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return from, to, err
	}
	if len(c.Query("to")) == len("2006-01-02") {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("%w: to anterior a from", domain.ErrValidation)
	}
	return from, to, nil
}

// queryPage lee limit/offset con los valores por defecto de dto.PageRequest.
func queryPage(c *fiber.Ctx) (dto.PageRequest, error) {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	if err := validateStruct(page); err != nil {
		return page, err
	}
	page.DefaultPage()
	return page, nil
}
