package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
)

func TestRender_HojaConCabeceraFilasYPie(t *testing.T) {
	rep := &dto.ReportResponse{
		Kind:    "sales",
		Title:   "Reporte De Ventas",
		Columns: []string{"Número", "Cliente", "Total"},
		Rows: [][]string{
			{"INV-20261016-ABC123", "CUST-001", "120.50"},
			{"INV-20261016-DEF456", "CUST-002", "80.00"},
		},
		Footer: []string{"Total", "2 ventas", "200.50"},
	}

	data, err := NewReportRenderer().Render(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Reporte De Ventas"}, f.GetSheetList())
	rows, err := f.GetRows("Reporte De Ventas")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Número", "Cliente", "Total"}, rows[0])
	assert.Equal(t, "CUST-001", rows[1][1])
	assert.Equal(t, "120.5", rows[1][2])
	assert.Equal(t, "200.5", rows[3][2])
}

func TestSheetName_LimpiaYRecorta(t *testing.T) {
	name := sheetName(&dto.ReportResponse{Title: "Reporte: ventas/devoluciones [octubre] del año completo"})
	assert.LessOrEqual(t, len([]rune(name)), maxSheetName)
	assert.NotContains(t, name, ":")
	assert.NotContains(t, name, "/")
	assert.Equal(t, "stock", sheetName(&dto.ReportResponse{Kind: "stock"}))
}

func TestIsNumber(t *testing.T) {
	assert.True(t, isNumber("12"))
	assert.True(t, isNumber("0.50"))
	assert.True(t, isNumber("-3"))
	assert.False(t, isNumber("007"))
	assert.False(t, isNumber("CUST-001"))
	assert.False(t, isNumber(""))
}
