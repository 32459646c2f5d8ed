package dto

import "time"

// ReportRequest parámetros de GET /api/reports/:kind.
type ReportRequest struct {
	Kind   string    `validate:"required,oneof=sales returns transfers stock"`
	Format string    `validate:"omitempty,oneof=pdf xlsx"`
	From   time.Time `query:"from"`
	To     time.Time `query:"to"`
}

// ReportResponse reporte tabular: columnas y filas ya formateadas.
type ReportResponse struct {
	Kind    string     `json:"kind"`
	Title   string     `json:"title"`
	From    time.Time  `json:"from"`
	To      time.Time  `json:"to"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Footer  []string   `json:"footer,omitempty"`
}

// ExportFile archivo exportado.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
