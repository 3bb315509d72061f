package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/domain"
)

// Format is a supported download format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat defaults to CSV when value is empty.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return CSV, nil
	case CSV, XLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table is a named grid with a header row.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Filename is the download name of the table in the given format.
func (t Table) Filename(f Format) string {
	return fmt.Sprintf("%s.%s", t.Name, f)
}

// Write encodes t in format f.
func Write(w io.Writer, f Format, t Table) error {
	switch f {
	case XLSX:
		return WriteXLSX(w, t)
	default:
		return WriteCSV(w, t)
	}
}

// WriteCSV writes the header and every row.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook with a bold header.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetTitle(t.Name)
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(t.Header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Header))
		if err := f.SetColWidth(sheetName, "A", last, 24); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Excel limits sheet names to 31 characters and forbids some symbols.
func sheetTitle(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, name)
	if name == "" {
		name = "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// DrilldownTable lists the entries of one bucket.
func DrilldownTable(d board.Drilldown) Table {
	t := Table{
		Name:   fmt.Sprintf("%s-%s", d.Metric, d.Color),
		Header: []string{"Metric", "Status", "Entry"},
		Rows:   make([][]any, 0, len(d.Entries)),
	}
	for _, e := range d.Entries {
		t.Rows = append(t.Rows, []any{d.Metric, d.Color.Caption(), board.EntryText(e)})
	}
	return t
}

// TasksTable lists tasks with their progress stage.
func TasksTable(tasks []domain.Task) Table {
	t := Table{
		Name:   "tasks_export",
		Header: []string{"Title", "Owner", "Priority", "Due", "Progress", "Stage"},
		Rows:   make([][]any, 0, len(tasks)),
	}
	for _, task := range tasks {
		t.Rows = append(t.Rows, []any{
			task.Title.String(),
			task.Owner.String(),
			task.Priority.String(),
			task.Due.String(),
			task.Progress.String(),
			board.TaskStage(board.TaskProgress(task)),
		})
	}
	return t
}
