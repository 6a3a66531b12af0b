package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// Undo moves every file in the history back where it came from, newest move
// first, then removes the category folders the restore left empty.
//
// A file that no longer exists at its destination is skipped. A file whose
// original path has been taken by something else is not overwritten and
// counts as failed. Either way the remaining records are still processed.
// The history and the counters are cleared together at the end.
func (e *Engine) Undo() UndoResult {
	var result UndoResult
	if !e.begin() {
		result.Errors = append(result.Errors, ErrEngineBusy)
		return result
	}
	defer e.end()

	records := e.History()
	if len(records) == 0 {
		result.HistoryEmpty = true
		e.logger.Info("There are no files to restore")
		return result
	}

	e.logger.Info("Restoring %d files", len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		result.Attempted++

		err := e.restore(rec)
		switch {
		case err == nil:
			result.Restored++
		case errors.Is(err, ErrUndoTargetMissing):
			result.Skipped++
			e.logger.Warn("%v", err)
			result.Errors = append(result.Errors, err)
		default:
			result.Failed++
			e.logger.Error("%v", err)
			result.Errors = append(result.Errors, err)
		}
	}

	for _, folder := range categoryFolders(records) {
		removed, err := e.files.PruneEmptyDirectories(folder)
		if err != nil {
			e.logger.Warn("Failed to clean %s: %v", folder, err)
			continue
		}
		result.PrunedDirs += removed
	}

	e.mu.Lock()
	e.history.Drain()
	e.counts = e.rules.NewCounts()
	journal := e.journal
	e.mu.Unlock()

	if journal != nil {
		if err := journal.Clear(); err != nil {
			e.logger.Warn("Failed to clear journal: %v", err)
			result.Errors = append(result.Errors, &ItemError{Op: "journal", Path: "", Err: err})
		}
	}

	e.logger.Info("Restore done: %d restored, %d skipped, %d failed, %d folders removed",
		result.Restored, result.Skipped, result.Failed, result.PrunedDirs)
	return result
}

func (e *Engine) restore(rec MoveRecord) error {
	present, err := e.files.Exists(rec.To)
	if err != nil {
		return &ItemError{Op: "restore", Path: rec.To, Err: err}
	}
	if !present {
		return &ItemError{Op: "restore", Path: rec.To, Err: ErrUndoTargetMissing}
	}

	occupied, err := e.files.Exists(rec.From)
	if err != nil {
		return &ItemError{Op: "restore", Path: rec.From, Err: err}
	}
	if occupied {
		return &ItemError{Op: "restore", Path: rec.From, Err: ErrRestoreTargetExists}
	}

	if err := e.files.EnsureDir(filepath.Dir(rec.From)); err != nil {
		return &ItemError{Op: "restore", Path: rec.From, Err: fmt.Errorf("%w: %w", ErrCannotCreateDir, err)}
	}
	if err := e.files.MoveFile(rec.To, rec.From); err != nil {
		return &ItemError{Op: "restore", Path: rec.To, Err: fmt.Errorf("%w: %w", ErrMoveFailed, err)}
	}
	return nil
}

// categoryFolders returns, per original parent directory, the category
// folders the records moved files into. Only folders directly below the
// parent qualify, so the parent itself is never pruned.
func categoryFolders(records []MoveRecord) []string {
	seen := make(map[string]bool)
	var folders []string
	for _, rec := range records {
		parent := filepath.Dir(rec.From)
		folder := filepath.Dir(rec.To)
		if folder == parent || filepath.Dir(folder) != parent {
			continue
		}
		if !seen[folder] {
			seen[folder] = true
			folders = append(folders, folder)
		}
	}
	sort.Strings(folders)
	return folders
}
