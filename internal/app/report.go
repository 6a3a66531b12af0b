package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	reportTimeLayout = "06-01-02 15.04.05"
	summarySheet     = "Summary"
	movesSheet       = "Moves"
)

type reportLine struct {
	label string
	key   string
}

// Report is a snapshot of a sort: its counters and the moves it made
type Report struct {
	CreatedAt time.Time
	Counts    Counts
	Moves     []MoveRecord
	lines     []reportLine
}

func NewReport(counts Counts, rules *RuleSet, moves []MoveRecord) Report {
	r := Report{
		CreatedAt: time.Now(),
		Counts:    counts.Clone(),
		Moves:     append([]MoveRecord(nil), moves...),
	}
	for _, rule := range rules.Rules() {
		r.lines = append(r.lines, reportLine{label: rule.Name, key: rule.CountKey})
	}
	return r
}

// WriteText writes the plain text report.
func (r Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Sorting Report - %s\n", r.CreatedAt.Format(reportTimeLayout))
	fmt.Fprintf(bw, "%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(bw, "Total files sorted : %d\n", r.Counts.Total())
	for _, line := range r.lines {
		fmt.Fprintf(bw, "%s : %d\n", line.label, r.Counts[line.key])
	}
	fmt.Fprintf(bw, "\nFiles moved :\n")
	for _, m := range r.Moves {
		fmt.Fprintf(bw, "%s ---> %s\n", m.From, m.To)
	}
	return bw.Flush()
}

// WriteXLSX writes a workbook with a Summary sheet (category, files) and a
// Moves sheet (from, to, category, run).
func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Sorting Report", r.CreatedAt.Format(reportTimeLayout)},
		{},
		{"Category", "Files"},
		{"Total files sorted", r.Counts.Total()},
	}
	for _, line := range r.lines {
		summary = append(summary, []interface{}{line.label, r.Counts[line.key]})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(movesSheet); err != nil {
		return err
	}
	moves := [][]interface{}{{"From", "To", "Category", "Run"}}
	for _, m := range r.Moves {
		moves = append(moves, []interface{}{m.From, m.To, m.Category, m.RunID})
	}
	if err := writeRows(f, movesSheet, moves); err != nil {
		return err
	}
	if err := f.SetColWidth(movesSheet, "A", "B", 60); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the report to path, as a workbook when path ends in .xlsx and
// as text otherwise.
func (r Report) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = r.WriteXLSX(out)
	} else {
		err = r.WriteText(out)
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
