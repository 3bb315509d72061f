package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/domain"
)

func sampleDrilldown() board.Drilldown {
	return board.Drilldown{
		Metric: "employees",
		Color:  board.Green,
		Title:  "Employees — Completed",
		Entries: []board.Entry{
			board.EmployeeRef{ID: domain.Num(7), Name: "Asha"},
			board.Label(`Lead #1 — "Acme", Inc`),
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": CSV, "CSV": CSV, " xlsx ": XLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSVDrilldown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := DrilldownTable(sampleDrilldown())
	require.NoError(t, Write(&buf, CSV, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Metric", "Status", "Entry"},
		{"employees", "Completed", "Employee #7 — Asha"},
		{"employees", "Completed", `Lead #1 — "Acme", Inc`},
	}, records)
	assert.Equal(t, "employees-green.csv", table.Filename(CSV))
}

func TestWriteXLSXTasks(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		{Title: "Draft", Owner: "Asha", Priority: "High", Due: "2025-11-20", Progress: domain.Num(40)},
		{Title: "Ship", Owner: "Ravi", Priority: "Low", Due: "2025-11-30", Progress: domain.Num(100)},
		{Title: "Plan"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, TasksTable(tasks)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"tasks_export"}, f.GetSheetList())
	rows, err := f.GetRows("tasks_export")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Title", "Owner", "Priority", "Due", "Progress", "Stage"}, rows[0])
	assert.Equal(t, []string{"Draft", "Asha", "High", "2025-11-20", "40", "In Progress"}, rows[1])
	assert.Equal(t, "Completed", rows[2][5])
	assert.Equal(t, "Pending", rows[3][5])
}

func TestSheetTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a-b-c", sheetTitle("a/b:c"))
	assert.Len(t, []rune(sheetTitle("assignments-yellow-and-a-very-long-suffix")), 31)
	assert.Equal(t, "Sheet1", sheetTitle(""))
}
