package ports

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound la sesión no existe, expiró o fue revocada.
var ErrSessionNotFound = errors.New("sesión no encontrada")

// Session datos mínimos guardados por sesión (jti del JWT).
type Session struct {
	ID        string
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// SessionStore almacén de sesiones revocables. Adaptadores: Redis y memoria.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser revoca todas las sesiones abiertas de un usuario.
	DeleteByUser(ctx context.Context, userID string) error
}
