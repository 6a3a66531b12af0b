package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReport(t *testing.T) Report {
	t.Helper()
	rules := NewRuleSet()
	require.NoError(t, rules.AddRule("Compressed", []string{".zip"}))

	counts := rules.NewCounts()
	counts[TotalKey] = 3
	counts["images"] = 2
	counts["Compressed"] = 1

	moves := []MoveRecord{
		{From: "/d/a.png", To: "/d/Images/a.png", Category: CategoryImages, RunID: "r1"},
		{From: "/d/b.png", To: "/d/Images/b.png", Category: CategoryImages, RunID: "r1"},
		{From: "/d/c.zip", To: "/d/Compressed/c.zip", Category: "Compressed", RunID: "r1"},
	}
	report := NewReport(counts, rules, moves)
	report.CreatedAt = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	return report
}

func TestReport_WriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport(t).WriteText(&buf))

	want := strings.Join([]string{
		"Sorting Report - 24-03-09 14.05.07",
		strings.Repeat("=", 50),
		"Total files sorted : 3",
		"Images : 2",
		"Videos : 0",
		"Documents : 0",
		"Others : 0",
		"Compressed : 1",
		"",
		"Files moved :",
		"/d/a.png ---> /d/Images/a.png",
		"/d/b.png ---> /d/Images/b.png",
		"/d/c.zip ---> /d/Compressed/c.zip",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestReport_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport(t).WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, movesSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 9)
	assert.Equal(t, []string{"Sorting Report", "24-03-09 14.05.07"}, summary[0])
	assert.Equal(t, []string{"Category", "Files"}, summary[2])
	assert.Equal(t, []string{"Total files sorted", "3"}, summary[3])
	assert.Equal(t, []string{"Images", "2"}, summary[4])
	assert.Equal(t, []string{"Compressed", "1"}, summary[8])

	moves, err := f.GetRows(movesSheet)
	require.NoError(t, err)
	require.Len(t, moves, 4)
	assert.Equal(t, []string{"From", "To", "Category", "Run"}, moves[0])
	assert.Equal(t, []string{"/d/c.zip", "/d/Compressed/c.zip", "Compressed", "r1"}, moves[3])
}

func TestReport_SavePicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	report := testReport(t)

	textPath := filepath.Join(dir, "report.txt")
	require.NoError(t, report.Save(textPath))
	data, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Sorting Report - "))

	xlsxPath := filepath.Join(dir, "report.XLSX")
	require.NoError(t, report.Save(xlsxPath))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), movesSheet)
}

func TestReport_SaveIntoMissingDirectory(t *testing.T) {
	err := testReport(t).Save(filepath.Join(t.TempDir(), "missing", "report.txt"))
	assert.Error(t, err)
}
