// Package xlsx exporta los reportes tabulares a hojas de cálculo con excelize.
package xlsx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
)

var _ ports.ReportRenderer = (*ReportRenderer)(nil)

// maxSheetName límite de Excel para el nombre de una hoja.
const maxSheetName = 31

// ReportRenderer una hoja por reporte: cabecera, filas y pie.
type ReportRenderer struct{}

// NewReportRenderer construye el renderer.
func NewReportRenderer() *ReportRenderer { return &ReportRenderer{} }

func (ReportRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (ReportRenderer) Extension() string { return "xlsx" }

// Render escribe el reporte y devuelve los bytes del libro.
func (ReportRenderer) Render(rep *dto.ReportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(rep)
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("xlsx: nombre de hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	header := toRow(rep.Columns, false)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	if err := styleRow(f, sheet, 1, len(rep.Columns), bold); err != nil {
		return nil, err
	}

	row := 2
	for _, cells := range rep.Rows {
		excelRow := toRow(cells, true)
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", row, err)
		}
		row++
	}

	if len(rep.Footer) > 0 {
		footer := toRow(rep.Footer, true)
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
			return nil, fmt.Errorf("xlsx: pie: %w", err)
		}
		if err := styleRow(f, sheet, row, len(rep.Footer), bold); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	if cols == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("xlsx: estilo fila %d: %w", row, err)
	}
	return nil
}

func sheetName(rep *dto.ReportResponse) string {
	name := rep.Title
	if name == "" {
		name = rep.Kind
	}
	// caracteres no permitidos por Excel en nombres de hoja
	name = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(name)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// toRow convierte las celdas; con numbers los valores numéricos se escriben como número.
func toRow(cells []string, numbers bool) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
		if !numbers || !isNumber(c) {
			continue
		}
		if n, err := strconv.ParseFloat(c, 64); err == nil {
			out[i] = n
		}
	}
	return out
}

// isNumber descarta códigos con ceros a la izquierda ("007").
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	t := strings.TrimPrefix(s, "-")
	if len(t) > 1 && t[0] == '0' && t[1] != '.' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
