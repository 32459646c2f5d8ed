package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole valida un rol.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Actor identidad y rol de quien invoca una operación. Se pasa explícitamente a cada mutación.
type Actor struct {
	UserID string
	Role   string
}

// SystemActor actor para tareas internas (seed, migraciones).
var SystemActor = Actor{UserID: "system", Role: RoleAdmin}
