package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(title, message string) {
	n.titles = append(n.titles, title)
}

func newTestOrchestrator() (*Orchestrator, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewOrchestrator(newTestEngine(NewRuleSet()), NewValidator(), notifier, testLogger()), notifier
}

func TestOrchestrator_SortReportUndo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "a")
	o, notifier := newTestOrchestrator()

	result, err := o.SortFolders(context.Background(), SortRequest{Directories: []string{dir}, Enabled: AllEnabled()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.Total())

	reportPath := filepath.Join(dir, "report.txt")
	require.NoError(t, o.SaveReport(reportPath, result))
	assert.Equal(t, reportPath, o.LastReport())

	undo := o.Undo()
	assert.Equal(t, 1, undo.Restored)
	assert.Equal(t, []string{"Sorting Completed", "Report Created", "Restore Completed"}, notifier.titles)

	require.NoError(t, o.ForgetReport(true))
	assert.NoFileExists(t, reportPath)
	assert.Empty(t, o.LastReport())
}

func TestOrchestrator_AddFoldersFromDrop(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	file := filepath.Join(second, "note.txt")
	writeFile(t, file, "x")
	missing := filepath.Join(second, "gone")
	o, _ := newTestOrchestrator()

	added, errs := o.AddFolders([]string{second, first, missing, second, file}, []string{first})
	assert.Equal(t, []string{second}, added)
	require.Len(t, errs, 4)
	assert.ErrorIs(t, errs[0], ErrDuplicateDirectory)
	assert.ErrorIs(t, errs[1], ErrPathNotFound)
	assert.ErrorIs(t, errs[2], ErrDuplicateDirectory)
	assert.ErrorIs(t, errs[3], ErrNotDirectory)

	var itemErr *ItemError
	require.ErrorAs(t, errs[1], &itemErr)
	assert.Equal(t, missing, itemErr.Path)
}

func TestOrchestrator_SortRejectsEmptySelection(t *testing.T) {
	o, notifier := newTestOrchestrator()
	_, err := o.SortFolders(context.Background(), SortRequest{}, nil)
	assert.ErrorIs(t, err, ErrNoDirectories)
	assert.Empty(t, notifier.titles)
}

func TestOrchestrator_NothingToSortOrRestore(t *testing.T) {
	dir := t.TempDir()
	o, notifier := newTestOrchestrator()

	result, err := o.SortFolders(context.Background(), SortRequest{Directories: []string{dir}, Enabled: AllEnabled()}, nil)
	require.NoError(t, err)
	assert.True(t, result.NoCandidates)
	assert.True(t, o.Undo().HistoryEmpty)
	assert.Empty(t, notifier.titles)

	require.NoError(t, o.ForgetReport(true))
}

func TestFormatSummaries(t *testing.T) {
	rules := NewRuleSet()
	counts := rules.NewCounts()
	counts[TotalKey] = 2
	counts["images"] = 2

	sortText := FormatSortSummary(SortResult{Counts: counts, Errors: []error{&ItemError{Op: "move", Path: "/x", Err: ErrMoveFailed}}}, rules)
	assert.Contains(t, sortText, "All files : 2\n")
	assert.Contains(t, sortText, "Images : 2\n")
	assert.Contains(t, sortText, "Videos : 0\n")
	assert.Contains(t, sortText, "could not move file")

	assert.Equal(t, "There are no files to sort\n", FormatSortSummary(SortResult{NoCandidates: true}, rules))

	undoText := FormatUndoSummary(UndoResult{Attempted: 3, Restored: 2, Skipped: 1, PrunedDirs: 1})
	assert.True(t, strings.HasPrefix(undoText, "Restored 2 of 3 files (1 skipped, 0 failed)\n"))
	assert.Contains(t, undoText, "Removed 1 empty folders")
	assert.Equal(t, "There are no files to restore.\n", FormatUndoSummary(UndoResult{HistoryEmpty: true}))
}
