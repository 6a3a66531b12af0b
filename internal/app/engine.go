package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine owns the rule set, the history log and the counters of the last
// run. One sort or undo runs at a time; readers get copies.
type Engine struct {
	files   FileService
	journal Journal
	logger  *Logger

	mu      sync.Mutex
	rules   *RuleSet
	history *History
	counts  Counts
	running bool
}

func NewEngine(rules *RuleSet, files FileService, logger *Logger) *Engine {
	if rules == nil {
		rules = NewRuleSet()
	}
	return &Engine{
		files:   files,
		logger:  logger,
		rules:   rules,
		history: NewHistory(nil),
		counts:  rules.NewCounts(),
	}
}

// SetJournal attaches a journal and loads the moves it still holds, so an
// undo can reverse a sort made by an earlier process. An engine takes one
// journal for its lifetime.
func (e *Engine) SetJournal(j Journal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.journal != nil {
		return ErrJournalAttached
	}

	records, err := j.Load()
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}

	e.journal = j
	for _, rec := range records {
		e.history.Append(rec)
	}
	if len(records) > 0 {
		e.logger.Info("Loaded %d pending moves from journal", len(records))
	}
	return nil
}

func (e *Engine) Rules() *RuleSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Clone()
}

func (e *Engine) AddRule(name string, extensions []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.rules.AddRule(name, extensions); err != nil {
		return err
	}
	e.logger.Info("Rule added: %s -> %v", name, normalizeExtensions(extensions))
	return nil
}

func (e *Engine) RemoveRule(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.RemoveRule(name)
}

// History returns the pending moves in move order.
func (e *Engine) History() []MoveRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Records()
}

// Counts returns the counters of the current or last run.
func (e *Engine) Counts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts.Clone()
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	return true
}

func (e *Engine) end() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

type candidate struct {
	dir   string
	name  string
	match Match
}

// PlannedMove is a file a sort would move, and the category it would go to
type PlannedMove struct {
	From     string
	Category string
}

// Plan lists the files Sort would move for req, without touching anything.
func (e *Engine) Plan(req SortRequest) ([]PlannedMove, []error) {
	var result SortResult
	plan := e.scan(req, e.Rules(), &result)

	moves := make([]PlannedMove, 0, len(plan))
	for _, c := range plan {
		moves = append(moves, PlannedMove{From: filepath.Join(c.dir, c.name), Category: c.match.Category})
	}
	return moves, result.Errors
}

// Sort moves every classifiable file directly inside the requested
// directories into <directory>/<category>.
//
// Directories and files are processed in order, one at a time. The number of
// candidates is computed up front with the same listing and classification
// the move pass uses, so Progress.Total is exact. Failures on a single file
// or directory are collected into the result and the run goes on. The
// context is checked between files; moves made before cancellation stay in
// the history and can be undone.
func (e *Engine) Sort(ctx context.Context, req SortRequest, observer Observer) SortResult {
	result := SortResult{RunID: uuid.NewString()}
	if !e.begin() {
		result.Errors = append(result.Errors, ErrEngineBusy)
		return result
	}
	defer e.end()

	rules := e.Rules()
	counts := rules.NewCounts()
	result.Counts = counts.Clone()

	plan := e.scan(req, rules, &result)
	result.TotalFiles = len(plan)
	if result.TotalFiles == 0 {
		result.NoCandidates = true
		e.logger.Info("There are no files to sort")
		return result
	}

	e.mu.Lock()
	e.counts = counts.Clone()
	e.mu.Unlock()

	e.logger.Info("Sorting %d files from %d directories (run %s)", result.TotalFiles, len(req.Directories), result.RunID)
	if e.logger.IsDebug() {
		var b strings.Builder
		for _, c := range plan {
			fmt.Fprintf(&b, "%s -> %s\n", filepath.Join(c.dir, c.name), c.match.Category)
		}
		e.logger.DebugSection("Sort plan", b.String())
	}

	for _, c := range plan {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			e.logger.Info("Sort cancelled after %d of %d files", counts.Total(), result.TotalFiles)
			break
		}

		rec, err := e.moveOne(c, result.RunID)
		if err != nil {
			e.logger.Error("%v", err)
			result.Errors = append(result.Errors, err)
			continue
		}

		counts[c.match.CountKey]++
		counts[TotalKey]++

		e.mu.Lock()
		e.history.Append(rec)
		e.counts = counts.Clone()
		journal := e.journal
		e.mu.Unlock()

		if journal != nil {
			if err := journal.Append(rec); err != nil {
				e.logger.Warn("Failed to journal move %s -> %s: %v", rec.From, rec.To, err)
				result.Errors = append(result.Errors, &ItemError{Op: "journal", Path: rec.To, Err: err})
			}
		}

		result.Moves = append(result.Moves, rec)
		if observer != nil {
			observer.OnProgress(Progress{
				Done:   counts.Total(),
				Total:  result.TotalFiles,
				Counts: counts.Clone(),
				Last:   rec,
			})
		}
	}

	result.Counts = counts.Clone()
	e.logger.Info("Sorting done: %d moved, %d errors", counts.Total(), len(result.Errors))
	return result
}

// scan lists and classifies the candidates of every requested directory.
// Missing directories are recorded in result and skipped.
func (e *Engine) scan(req SortRequest, rules *RuleSet, result *SortResult) []candidate {
	var plan []candidate
	seen := make(map[string]bool)

	for _, dir := range req.Directories {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = filepath.Clean(dir)
		}
		if seen[abs] {
			e.logger.Warn("Skipping duplicate directory %s", abs)
			continue
		}
		seen[abs] = true

		names, err := e.files.ListFiles(abs)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				e.logger.Warn("Directory vanished: %s", abs)
				result.MissingDirs = append(result.MissingDirs, abs)
				err = fmt.Errorf("%w: %w", ErrPathNotFound, err)
			}
			result.Errors = append(result.Errors, &ItemError{Op: "scan", Path: abs, Err: err})
			continue
		}

		for _, name := range names {
			if match, ok := rules.Classify(name, req.Enabled); ok {
				plan = append(plan, candidate{dir: abs, name: name, match: match})
			}
		}
	}
	return plan
}

func (e *Engine) moveOne(c candidate, runID string) (MoveRecord, error) {
	from := filepath.Join(c.dir, c.name)
	folder := filepath.Join(c.dir, c.match.Category)

	if err := e.files.EnsureDir(folder); err != nil {
		return MoveRecord{}, &ItemError{Op: "mkdir", Path: folder, Err: fmt.Errorf("%w: %w", ErrCannotCreateDir, err)}
	}

	to, err := e.files.UniqueDestination(folder, c.name)
	if err != nil {
		return MoveRecord{}, &ItemError{Op: "move", Path: from, Err: fmt.Errorf("%w: %w", ErrMoveFailed, err)}
	}

	if err := e.files.MoveFile(from, to); err != nil {
		return MoveRecord{}, &ItemError{Op: "move", Path: from, Err: fmt.Errorf("%w: %w", ErrMoveFailed, err)}
	}

	return MoveRecord{
		From:     from,
		To:       to,
		Category: c.match.Category,
		RunID:    runID,
		MovedAt:  time.Now(),
	}, nil
}
