package main

import (
	"path/filepath"

	fyneapp "fyne.io/fyne/v2/app"

	"io.github.smartorganizer/internal/app"
	"io.github.smartorganizer/internal/ui"
)

func main() {
	fyneApp := fyneapp.NewWithID("io.github.smartorganizer")
	logger := app.NewLogger(false)

	config := app.LoadConfig(fyneApp, logger)
	logger.SetDebug(config.Debug)

	files := app.NewFileService(logger)
	files.SetIgnorePatterns(config.IgnorePatterns)

	engine := app.NewEngine(config.BuildRuleSet(logger), files, logger)

	journalPath := config.JournalPath
	if journalPath == "" {
		journalPath = filepath.Join(fyneApp.Storage().RootURI().Path(), app.DefaultJournalName)
	}

	// The sorter still works without a journal, undo just does not survive a restart
	var runs ui.RunLister
	journal, err := app.OpenJournal(journalPath, logger)
	if err != nil {
		logger.Error("Failed to open journal: %v", err)
	} else {
		defer journal.Close()
		if err := engine.SetJournal(journal); err != nil {
			logger.Error("%v", err)
		}
		runs = journal
	}

	orchestrator := app.NewOrchestrator(engine, app.NewValidator(), ui.NewNotifier(fyneApp), logger)

	mainWindow := ui.NewMainWindow(fyneApp, orchestrator, files, runs, config, logger)
	mainWindow.ShowAndRun()
}
