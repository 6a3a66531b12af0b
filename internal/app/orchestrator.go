package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

type Orchestrator struct {
	engine    *Engine
	validator *Validator
	notifier  Notifier
	logger    *Logger

	mu         sync.Mutex
	lastReport string
}

func NewOrchestrator(engine *Engine, validator *Validator, notifier Notifier, logger *Logger) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
	}
}

func (o *Orchestrator) Engine() *Engine {
	return o.engine
}

// AddFolder checks a folder before it joins the selection.
func (o *Orchestrator) AddFolder(path string, selected []string) error {
	return o.validator.ValidateNewDirectory(path, selected)
}

// AddFolders checks a batch of paths, such as a drop onto the folder list,
// in order. It returns the paths that may join the selection; a path
// repeated within the batch is a duplicate like any other. Rejected paths
// come back as *ItemError with op "add".
func (o *Orchestrator) AddFolders(paths, selected []string) ([]string, []error) {
	current := append([]string(nil), selected...)
	var added []string
	var errs []error
	for _, path := range paths {
		if err := o.AddFolder(path, current); err != nil {
			errs = append(errs, &ItemError{Op: "add", Path: path, Err: err})
			continue
		}
		current = append(current, path)
		added = append(added, path)
	}
	return added, errs
}

func (o *Orchestrator) SortFolders(ctx context.Context, req SortRequest, observer Observer) (SortResult, error) {
	if err := o.validator.ValidateSortRequest(req); err != nil {
		return SortResult{}, err
	}

	o.logger.Info("Starting sort of %d folders", len(req.Directories))
	result := o.engine.Sort(ctx, req, observer)
	if result.NoCandidates {
		return result, nil
	}

	if total := result.Counts.Total(); total > 0 {
		o.notify("Sorting Completed", fmt.Sprintf("%d files sorted successfully", total))
	}
	return result, nil
}

func (o *Orchestrator) Undo() UndoResult {
	result := o.engine.Undo()
	if !result.HistoryEmpty && result.Restored > 0 {
		o.notify("Restore Completed", fmt.Sprintf("%d files have been restored", result.Restored))
	}
	return result
}

// SaveReport writes the counters of result and the whole pending history to
// path. The path is remembered so an undo can offer to delete the report.
func (o *Orchestrator) SaveReport(path string, result SortResult) error {
	report := NewReport(result.Counts, o.engine.Rules(), o.engine.History())
	if err := report.Save(path); err != nil {
		o.logger.Error("%v", err)
		return err
	}

	o.mu.Lock()
	o.lastReport = path
	o.mu.Unlock()

	o.logger.Info("Report saved as %s", path)
	o.notify("Report Created", "Report was created successfully")
	return nil
}

func (o *Orchestrator) LastReport() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastReport == "" {
		return ""
	}
	if _, err := os.Stat(o.lastReport); err != nil {
		return ""
	}
	return o.lastReport
}

// ForgetReport drops the remembered report path, optionally deleting the file.
func (o *Orchestrator) ForgetReport(remove bool) error {
	o.mu.Lock()
	path := o.lastReport
	o.lastReport = ""
	o.mu.Unlock()

	if !remove || path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	o.logger.Info("Report %s deleted", path)
	return nil
}

func (o *Orchestrator) notify(title, message string) {
	if o.notifier != nil {
		o.notifier.Notify(title, message)
	}
}

// FormatSortSummary renders the counters and errors of a sort for display.
func FormatSortSummary(result SortResult, rules *RuleSet) string {
	var b strings.Builder
	if result.NoCandidates {
		b.WriteString("There are no files to sort\n")
	} else {
		fmt.Fprintf(&b, "All files : %d\n", result.Counts.Total())
		for _, r := range rules.Rules() {
			fmt.Fprintf(&b, "%s : %d\n", r.Name, result.Counts[r.CountKey])
		}
	}
	if result.Cancelled {
		b.WriteString("Sorting was cancelled\n")
	}
	for _, err := range result.Errors {
		fmt.Fprintf(&b, "✗ %v\n", err)
	}
	return b.String()
}

// FormatUndoSummary renders the outcome of an undo for display.
func FormatUndoSummary(result UndoResult) string {
	if result.HistoryEmpty {
		return "There are no files to restore.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Restored %d of %d files (%d skipped, %d failed)\n",
		result.Restored, result.Attempted, result.Skipped, result.Failed)
	if result.PrunedDirs > 0 {
		fmt.Fprintf(&b, "Removed %d empty folders\n", result.PrunedDirs)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(&b, "✗ %v\n", err)
	}
	return b.String()
}
