package statements

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const timestampFormat = "2006-01-02T15:04:05Z07:00"

// ParseFormat maps a query value to a Format; empty means JSON.
func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatCSV, FormatXLSX, FormatPDF:
		return Format(raw), true
	}
	return "", false
}

// ContentType returns the MIME type of a rendering.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// section is one table of a statement.
type section struct {
	Title   string
	Columns []string
	Rows    [][]string
}

func sections(st *Statement) []section {
	balances := section{Title: "Compliance balances", Columns: []string{"year", "cb_value", "actual_intensity", "target_intensity", "energy_scope"}}
	for _, b := range st.Balances {
		balances.Rows = append(balances.Rows, []string{itoa(b.Year), ftoa(b.CBValue), ftoa(b.ActualIntensity), ftoa(b.TargetIntensity), ftoa(b.EnergyScope)})
	}

	bank := section{Title: "Banked surplus", Columns: []string{"entry_id", "year", "initial_amount", "remaining", "created_at"}}
	for _, e := range st.BankEntries {
		bank.Rows = append(bank.Rows, []string{e.ID.String(), itoa(e.Year), ftoa(e.InitialAmount), ftoa(e.Amount), e.CreatedAt.Format(timestampFormat)})
	}

	applications := section{Title: "Banked surplus applied", Columns: []string{"application_id", "year", "amount", "created_at"}}
	for _, a := range st.Applications {
		applications.Rows = append(applications.Rows, []string{a.ID.String(), itoa(a.Year), ftoa(a.Amount), a.CreatedAt.Format(timestampFormat)})
	}

	borrowings := section{Title: "Borrowing", Columns: []string{"entry_id", "year", "amount", "aggravated_amount", "status", "repaid_at"}}
	for _, b := range st.Borrowings {
		repaidAt := ""
		if b.RepaidAt != nil {
			repaidAt = b.RepaidAt.Format(timestampFormat)
		}
		borrowings.Rows = append(borrowings.Rows, []string{b.ID.String(), itoa(b.Year), ftoa(b.Amount), ftoa(b.AggravatedAmount), b.Status, repaidAt})
	}

	pools := section{Title: "Pools", Columns: []string{"pool_id", "year", "cb_before", "cb_after"}}
	for _, p := range st.Pools {
		pools.Rows = append(pools.Rows, []string{p.PoolID.String(), itoa(p.Year), ftoa(p.CBBefore), ftoa(p.CBAfter)})
	}

	t := st.Totals
	totals := section{Title: "Totals", Columns: []string{"metric", "value"}, Rows: [][]string{
		{"computed_cb", ftoa(t.ComputedCB)},
		{"banked_remaining", ftoa(t.BankedRemaining)},
		{"banked_applied", ftoa(t.BankedApplied)},
		{"borrowed", ftoa(t.Borrowed)},
		{"repayment_outstanding", ftoa(t.RepaymentOutstanding)},
		{"pool_transfers", ftoa(t.PoolTransfers)},
	}}

	return []section{balances, bank, applications, borrowings, pools, totals}
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Export writes st to w in format.
func Export(w io.Writer, st *Statement, format Format) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(st)
	case FormatCSV:
		return writeCSV(w, st)
	case FormatXLSX:
		return writeXLSX(w, st)
	case FormatPDF:
		return writePDF(w, st)
	}
	return fmt.Errorf("unsupported statement format %q", format)
}

// writeCSV emits every section as a block introduced by its title and
// separated by an empty record.
func writeCSV(w io.Writer, st *Statement) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ship_id", st.ShipID, "generated_at", st.GeneratedAt.Format(timestampFormat)}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, sec := range sections(st) {
		records := append([][]string{{}, {sec.Title}, sec.Columns}, sec.Rows...)
		if err := writer.WriteAll(records); err != nil {
			return fmt.Errorf("failed to write %s: %w", sec.Title, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeXLSX puts each section on its own sheet.
func writeXLSX(w io.Writer, st *Statement) error {
	file := excelize.NewFile()
	defer file.Close()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sec := range sections(st) {
		sheet := sec.Title
		if i == 0 {
			if err := file.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := file.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		rows := append([][]string{sec.Columns}, sec.Rows...)
		for r, row := range rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return err
				}
				if err := file.SetCellValue(sheet, cell, cellValue(value, r == 0)); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
		}

		last, _ := excelize.CoordinatesToCellName(len(sec.Columns), 1)
		if err := file.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(sec.Columns))
		if err := file.SetColWidth(sheet, "A", lastCol, 22); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
		if err := file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue stores numeric strings as numbers so spreadsheets can sum them.
func cellValue(value string, header bool) any {
	if header {
		return value
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// writePDF renders the statement as a single document of titled tables.
func writePDF(w io.Writer, st *Statement) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "FuelEU compliance statement: "+st.ShipID, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated: "+st.GeneratedAt.Format(time.RFC1123), "", 1, "R", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 30

	for _, sec := range sections(st) {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 8, sec.Title, "", 1, "L", false, 0, "")

		width := available / float64(len(sec.Columns))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range sec.Columns {
			pdf.CellFormat(width, 7, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(0, 0, 0)
		if len(sec.Rows) == 0 {
			pdf.CellFormat(available, 6, "No entries", "1", 1, "C", false, 0, "")
			continue
		}
		for i, row := range sec.Rows {
			pdf.SetFillColor(242, 242, 242)
			for _, value := range row {
				pdf.CellFormat(width, 6, value, "1", 0, "L", i%2 == 1, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
