// smartorganizer-cli sorts folders from the command line.
//
// Usage:
//
//	smartorganizer-cli [flags] DIR...
//	smartorganizer-cli -undo -journal history.db
//	smartorganizer-cli -rule Audio=.mp3,.flac -disable Videos ~/Downloads
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"io.github.smartorganizer/internal/app"
)

// ruleFlags collects repeated -rule Name=.ext,.ext values
type ruleFlags []string

func (r *ruleFlags) String() string {
	return strings.Join(*r, " ")
}

func (r *ruleFlags) Set(value string) error {
	*r = append(*r, value)
	return nil
}

type consoleNotifier struct {
	logger *app.Logger
}

func (n consoleNotifier) Notify(title, message string) {
	n.logger.Info("%s: %s", title, message)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run holds the whole command so deferred cleanup such as closing the
// journal happens before main exits.
func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("smartorganizer-cli", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var rules ruleFlags
	var (
		configPath  = flags.String("config", "", "Path to settings.json (default: built-in settings)")
		journalPath = flags.String("journal", "", "Path to the SQLite move journal (default: from settings, none if unset)")
		disable     = flags.String("disable", "", "Comma separated built-in categories to skip, e.g. Images,Videos")
		reportPath  = flags.String("report", "", "Write a sorting report to this path (.txt or .xlsx)")
		undo        = flags.Bool("undo", false, "Undo every journaled move instead of sorting")
		history     = flags.Bool("history", false, "List the journaled runs and exit")
		debugFlag   = flags.Bool("debug", false, "Enable debug logging")
	)
	flags.Var(&rules, "rule", "Custom rule Name=.ext,.ext (repeatable)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := app.NewLoggerTo(stderr, *debugFlag)

	config := app.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = app.LoadConfigFile(*configPath, logger)
		if err != nil {
			return fmt.Errorf("loading config from %s: %w", *configPath, err)
		}
	}
	logger.SetDebug(*debugFlag || config.Debug)

	ruleSet := config.BuildRuleSet(logger)
	for _, value := range rules {
		name, exts, ok := strings.Cut(value, "=")
		if !ok {
			return fmt.Errorf("invalid -rule %q, want Name=.ext,.ext", value)
		}
		if err := ruleSet.AddRule(name, app.ParseExtensions(exts)); err != nil {
			return fmt.Errorf("invalid -rule %q: %w", value, err)
		}
	}

	enabled, err := parseDisabled(config.EnabledCategories(), *disable)
	if err != nil {
		return err
	}

	files := app.NewFileService(logger)
	files.SetIgnorePatterns(config.IgnorePatterns)
	engine := app.NewEngine(ruleSet, files, logger)

	if *journalPath == "" {
		*journalPath = config.JournalPath
	}
	var journal *app.SQLiteJournal
	if *journalPath != "" {
		journal, err = app.OpenJournal(*journalPath, logger)
		if err != nil {
			return err
		}
		defer journal.Close()
		if err := engine.SetJournal(journal); err != nil {
			return err
		}
	}

	orchestrator := app.NewOrchestrator(engine, app.NewValidator(), consoleNotifier{logger: logger}, logger)

	switch {
	case *history:
		return printHistory(stdout, journal, engine)
	case *undo:
		if journal == nil {
			return errors.New("-undo needs a journal (-journal or journal_path in settings)")
		}
		fmt.Fprint(stdout, app.FormatUndoSummary(orchestrator.Undo()))
		return nil
	default:
		return runSort(stdout, stderr, orchestrator, enabled, flags.Args(), *reportPath, logger)
	}
}

func runSort(stdout, stderr io.Writer, orchestrator *app.Orchestrator, enabled app.Enabled, dirs []string, reportPath string, logger *app.Logger) error {
	if len(dirs) == 0 {
		fmt.Fprintln(stderr, "Usage: smartorganizer-cli [flags] DIR...")
		return errors.New("at least one directory is required")
	}
	validator := app.NewValidator()
	var selected []string
	for _, dir := range dirs {
		if err := validator.ValidateNewDirectory(dir, selected); err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}
		selected = append(selected, dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	observer := app.ObserverFunc(func(p app.Progress) {
		fmt.Fprintf(stderr, "\r[%3d%%] %d/%d", p.Percent(), p.Done, p.Total)
		if p.Done == p.Total {
			fmt.Fprintln(stderr)
		}
	})

	result, err := orchestrator.SortFolders(ctx, app.SortRequest{Directories: selected, Enabled: enabled}, observer)
	if err != nil {
		return err
	}
	if result.Cancelled {
		fmt.Fprintln(stderr)
	}
	fmt.Fprint(stdout, app.FormatSortSummary(result, orchestrator.Engine().Rules()))

	if reportPath != "" && result.Counts.Total() > 0 {
		if err := orchestrator.SaveReport(reportPath, result); err != nil {
			logger.Error("%v", err)
		}
	}
	return nil
}

func parseDisabled(enabled app.Enabled, list string) (app.Enabled, error) {
	if strings.TrimSpace(list) == "" {
		return enabled, nil
	}
	builtins := map[string]string{}
	for _, name := range []string{app.CategoryImages, app.CategoryVideos, app.CategoryDocuments, app.CategoryOthers} {
		builtins[strings.ToLower(name)] = name
	}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, ok := builtins[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("unknown category %q in -disable", part)
		}
		enabled[name] = false
	}
	return enabled, nil
}

func printHistory(stdout io.Writer, journal *app.SQLiteJournal, engine *app.Engine) error {
	if journal == nil {
		return errors.New("-history needs a journal (-journal or journal_path in settings)")
	}
	runs, err := journal.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "There are no files to restore.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %s  %d files\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.RunID, r.Moves)
	}
	fmt.Fprintf(stdout, "Pending moves: %d\n", len(engine.History()))
	return nil
}
