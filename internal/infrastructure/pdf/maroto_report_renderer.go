// Package pdf genera la versión PDF de los reportes tabulares (ventas, devoluciones, traslados, stock).
//
// Layout de la página A4 apaisada:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte   │  Período + fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas del reporte (cabecera con fondo)           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: fila de pie del reporte                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
)

var _ ports.ReportRenderer = (*MarotoReportRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorHeader  = &props.Color{Red: 225, Green: 233, Blue: 242}
)

const gridSize = 12

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoReportRenderer implementa ports.ReportRenderer usando Maroto v2.
type MarotoReportRenderer struct {
	now func() time.Time
}

// NewMarotoReportRenderer construye el renderer.
func NewMarotoReportRenderer() *MarotoReportRenderer {
	return &MarotoReportRenderer{now: time.Now}
}

func (g *MarotoReportRenderer) ContentType() string { return "application/pdf" }
func (g *MarotoReportRenderer) Extension() string   { return "pdf" }

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoReportRenderer) Render(rep *dto.ReportResponse) ([]byte, error) {
	if len(rep.Columns) == 0 || len(rep.Columns) > gridSize {
		return nil, fmt.Errorf("pdf: %d columnas no caben en la grilla", len(rep.Columns))
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(rep.Title, true).
		WithAuthor("vanstock", true).
		Build()

	m := maroto.New(cfg)
	widths := columnWidths(len(rep.Columns))

	m.AddRows(headerRow(rep, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(3))

	m.AddRows(tableHeaderRow(rep.Columns, widths))
	for _, cells := range rep.Rows {
		m.AddRows(tableRow(cells, widths, false))
	}
	if len(rep.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(gridSize).Add(
			text.New("Sin movimientos en el período.", props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}

	if len(rep.Footer) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(tableRow(rep.Footer, widths, true))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y período + emisión (der).
func headerRow(rep *dto.ReportResponse, issued time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(rep.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Período: "+period(rep.From, rep.To), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Emitido: "+issued.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(columns []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(columns))
	for i, label := range columns {
		cols = append(cols, col.New(widths[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Left,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func tableRow(cells []string, widths []int, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	cols := make([]core.Col, 0, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		cols = append(cols, col.New(w).Add(text.New(cell, props.Text{
			Style: style, Size: 8, Align: align.Left, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// columnWidths reparte las 12 columnas de la grilla; el sobrante va a las primeras.
func columnWidths(n int) []int {
	widths := make([]int, n)
	base, extra := gridSize/n, gridSize%n
	for i := range widths {
		widths[i] = base
		if i < extra {
			widths[i]++
		}
	}
	return widths
}

func period(from, to time.Time) string {
	desde := "inicio"
	if !from.IsZero() {
		desde = from.Format("02/01/2006")
	}
	return desde + " a " + to.Format("02/01/2006")
}
