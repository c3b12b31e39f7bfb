package statements

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want Format
		ok   bool
	}{
		{"", FormatJSON, true},
		{"json", FormatJSON, true},
		{"csv", FormatCSV, true},
		{"xlsx", FormatXLSX, true},
		{"pdf", FormatPDF, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleStatement(), FormatCSV))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"ship_id", "IMO9321483", "generated_at", "2026-06-01T12:00:00Z"}, records[0])
	var titles []string
	for i, record := range records {
		if len(record) == 1 && i+1 < len(records) {
			titles = append(titles, record[0])
		}
	}
	assert.Equal(t, []string{"Compliance balances", "Banked surplus", "Banked surplus applied", "Borrowing", "Pools", "Totals"}, titles)
	assert.Equal(t, []string{"pool_transfers", "-1336.8"}, records[len(records)-1])
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleStatement(), FormatXLSX))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Compliance balances", "Banked surplus", "Banked surplus applied", "Borrowing", "Pools", "Totals"}, file.GetSheetList())

	value, err := file.GetCellValue("Compliance balances", "B3")
	require.NoError(t, err)
	assert.Equal(t, "-1163.2", value)

	header, err := file.GetCellValue("Borrowing", "E1")
	require.NoError(t, err)
	assert.Equal(t, "status", header)
}

func TestExportPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleStatement(), FormatPDF))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleStatement(), FormatJSON))

	var decoded Statement
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "IMO9321483", decoded.ShipID)
	assert.Len(t, decoded.Borrowings, 2)
}
