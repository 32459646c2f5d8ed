package ports

import "github.com/jhoicas/vanstock-api/internal/application/dto"

// ReportRenderer genera el archivo de un reporte tabular (PDF, XLSX).
type ReportRenderer interface {
	Render(report *dto.ReportResponse) ([]byte, error)
	ContentType() string
	Extension() string
}
