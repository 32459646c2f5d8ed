package dto

import "time"

// CreateLocationRequest entrada para registrar una van o bodega.
type CreateLocationRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=32"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Kind     string `json:"kind" validate:"required,oneof=warehouse van"`
	Capacity int    `json:"capacity" validate:"min=0"`
	Driver   string `json:"driver" validate:"omitempty,max=200"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Capacity  int       `json:"capacity"`
	Driver    string    `json:"driver,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
