package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"io.github.smartorganizer/internal/app"
)

const (
	defaultWindowWidth  = 900
	defaultWindowHeight = 700
	outputTextRows      = 8
	folderListHeight    = 160
)

type MainWindow struct {
	app          fyne.App
	window       fyne.Window
	orchestrator *app.Orchestrator
	files        *app.DefaultFileService
	runs         RunLister
	config       *app.Config
	logger       *app.Logger

	folders      []string
	selected     int
	folderList   *widget.List
	categoryChks map[string]*widget.Check
	countsBox    *fyne.Container
	countLabels  map[string]*widget.Label
	progressBar  *widget.ProgressBar
	percentLabel *widget.Label
	statusLabel  *widget.Label
	outputText   *widget.Entry
	sortBtn      *widget.Button
	stopBtn      *widget.Button
	undoBtn      *widget.Button
	bottomStatus *fyne.Container

	lastOutputContent string
	cancel            context.CancelFunc
}

func NewMainWindow(fyneApp fyne.App, orchestrator *app.Orchestrator, files *app.DefaultFileService, runs RunLister, config *app.Config, logger *app.Logger) *MainWindow {
	mw := &MainWindow{
		app:          fyneApp,
		window:       fyneApp.NewWindow("SmartOrganizer - File Sorter"),
		orchestrator: orchestrator,
		files:        files,
		runs:         runs,
		config:       config,
		logger:       logger,
		selected:     -1,
	}

	applyTheme(fyneApp, config.Theme)
	mw.initializeComponents()
	mw.setupLayout()
	mw.setupMenu()
	mw.window.SetOnDropped(mw.onDropped)

	return mw
}

func (mw *MainWindow) initializeComponents() {
	mw.folderList = widget.NewList(
		func() int { return len(mw.folders) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(mw.folders[id])
		},
	)
	mw.folderList.OnSelected = func(id widget.ListItemID) { mw.selected = id }
	mw.folderList.OnUnselected = func(widget.ListItemID) { mw.selected = -1 }

	enabled := mw.config.EnabledCategories()
	mw.categoryChks = make(map[string]*widget.Check)
	for _, name := range []string{app.CategoryImages, app.CategoryVideos, app.CategoryDocuments, app.CategoryOthers} {
		category := name
		check := widget.NewCheck(category, nil)
		check.SetChecked(enabled.IsEnabled(category))
		check.OnChanged = func(on bool) {
			mw.config.Enabled[category] = on
			app.SaveConfig(mw.app, mw.config, mw.logger)
		}
		mw.categoryChks[category] = check
	}

	mw.countsBox = container.NewVBox()
	mw.rebuildCountLabels()

	mw.progressBar = widget.NewProgressBar()
	mw.progressBar.TextFormatter = func() string { return "" }
	mw.percentLabel = widget.NewLabel("0%")
	mw.statusLabel = widget.NewLabel("Ready")

	mw.outputText = widget.NewMultiLineEntry()
	mw.outputText.SetPlaceHolder("Sort and undo results will appear here...")
	mw.outputText.Wrapping = fyne.TextWrapWord
	mw.outputText.SetMinRowsVisible(outputTextRows)
	mw.outputText.OnChanged = func(content string) {
		if content != mw.lastOutputContent {
			mw.outputText.SetText(mw.lastOutputContent)
		}
	}

	mw.sortBtn = widget.NewButton("Sort", mw.onSort)
	mw.sortBtn.Importance = widget.HighImportance
	mw.stopBtn = widget.NewButton("Stop", mw.onStop)
	mw.stopBtn.Hide()
	mw.undoBtn = widget.NewButton("Undo", mw.onUndo)
	mw.undoBtn.Importance = widget.DangerImportance
}

func (mw *MainWindow) setupLayout() {
	addBtn := widget.NewButton("Add Folder", mw.onAddFolder)
	removeBtn := widget.NewButton("Remove Selected", mw.onRemoveFolder)

	folderScroll := container.NewVScroll(mw.folderList)
	folderScroll.SetMinSize(fyne.NewSize(0, folderListHeight))

	checks := container.NewHBox()
	for _, name := range []string{app.CategoryImages, app.CategoryVideos, app.CategoryDocuments, app.CategoryOthers} {
		checks.Add(mw.categoryChks[name])
	}

	actions := container.NewHBox(
		mw.sortBtn,
		mw.stopBtn,
		mw.undoBtn,
		widget.NewButton("Custom Rule", mw.onCustomRules),
		widget.NewButton("History", mw.onHistory),
		widget.NewButton("Toggle Theme", mw.onToggleTheme),
	)

	topInputs := container.NewVBox(
		widget.NewLabel("Folders to sort (add or drop folders here):"),
		folderScroll,
		container.NewHBox(addBtn, removeBtn),
		widget.NewLabel("Categories:"),
		checks,
		actions,
		widget.NewSeparator(),
	)

	mw.bottomStatus = container.NewVBox(
		container.NewBorder(nil, nil, nil, mw.percentLabel, mw.progressBar),
		mw.statusLabel,
	)

	center := container.NewBorder(nil, nil, nil, container.NewVBox(widget.NewLabel("Files sorted:"), mw.countsBox), mw.outputText)

	mw.window.SetContent(container.NewPadded(
		container.NewBorder(topInputs, mw.bottomStatus, nil, nil, center),
	))
	mw.window.Resize(fyne.NewSize(defaultWindowWidth, defaultWindowHeight))
}

func (mw *MainWindow) setupMenu() {
	settingsMenu := fyne.NewMenu("Settings",
		fyne.NewMenuItem("Rules and Ignore List", mw.onCustomRules),
		fyne.NewMenuItem("About", mw.showAboutDialog),
	)
	mw.window.SetMainMenu(fyne.NewMainMenu(settingsMenu))
}

func (mw *MainWindow) setOutputText(text string) {
	mw.lastOutputContent = text
	mw.outputText.SetText(text)

	mw.outputText.CursorRow = strings.Count(text, "\n") + 1
	mw.outputText.Refresh()
}

// rebuildCountLabels lays out one label per category, custom rules included.
func (mw *MainWindow) rebuildCountLabels() {
	mw.countLabels = map[string]*widget.Label{app.TotalKey: widget.NewLabel("")}
	mw.countsBox.Objects = []fyne.CanvasObject{mw.countLabels[app.TotalKey]}
	for _, r := range mw.orchestrator.Engine().Rules().Rules() {
		label := widget.NewLabel("")
		mw.countLabels[r.CountKey] = label
		mw.countsBox.Add(label)
	}
	mw.updateCounts(mw.orchestrator.Engine().Counts())
}

func (mw *MainWindow) updateCounts(counts app.Counts) {
	mw.countLabels[app.TotalKey].SetText(fmt.Sprintf("All files : %d", counts.Total()))
	for _, r := range mw.orchestrator.Engine().Rules().Rules() {
		if label, ok := mw.countLabels[r.CountKey]; ok {
			label.SetText(fmt.Sprintf("%s : %d", r.Name, counts[r.CountKey]))
		}
	}
	mw.countsBox.Refresh()
}

func (mw *MainWindow) setProgress(done, total int) {
	p := app.Progress{Done: done, Total: total}
	if total > 0 {
		mw.progressBar.SetValue(float64(done) / float64(total))
	} else {
		mw.progressBar.SetValue(0)
	}
	mw.percentLabel.SetText(fmt.Sprintf("%d%%", p.Percent()))
}

func (mw *MainWindow) setBusy(busy bool) {
	if busy {
		mw.sortBtn.Disable()
		mw.undoBtn.Disable()
		mw.stopBtn.Show()
	} else {
		mw.sortBtn.Enable()
		mw.undoBtn.Enable()
		mw.stopBtn.Hide()
	}
	mw.bottomStatus.Refresh()
}

func (mw *MainWindow) onAddFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		path := uri.Path()
		if err := mw.orchestrator.AddFolder(path, mw.folders); err != nil {
			if errors.Is(err, app.ErrDuplicateDirectory) {
				dialog.ShowInformation("Warning", "This path has already been chosen", mw.window)
				return
			}
			dialog.ShowError(err, mw.window)
			return
		}
		mw.folders = append(mw.folders, path)
		mw.folderList.Refresh()
		mw.statusLabel.SetText(fmt.Sprintf("%d path(s) selected", len(mw.folders)))
	}, mw.window)
}

// onDropped adds folders dragged onto the window. Every rejected path gets a
// line in one warning.
func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	paths := make([]string, 0, len(uris))
	for _, uri := range uris {
		if uri.Scheme() != "file" {
			mw.logger.Warn("Ignoring dropped non-file URI: %s", uri)
			continue
		}
		paths = append(paths, uri.Path())
	}

	added, errs := mw.orchestrator.AddFolders(paths, mw.folders)
	if len(added) > 0 {
		mw.folders = append(mw.folders, added...)
		mw.folderList.Refresh()
		mw.statusLabel.SetText(fmt.Sprintf("%d path(s) selected", len(mw.folders)))
	}
	if len(errs) == 0 {
		return
	}

	var lines []string
	for _, err := range errs {
		var itemErr *app.ItemError
		path := ""
		if errors.As(err, &itemErr) {
			path = itemErr.Path
		}
		switch {
		case errors.Is(err, app.ErrPathNotFound):
			lines = append(lines, fmt.Sprintf("Dropped path does not exist: %s", path))
		case errors.Is(err, app.ErrDuplicateDirectory):
			lines = append(lines, fmt.Sprintf("This path has already been chosen: %s", path))
		case errors.Is(err, app.ErrNotDirectory):
			lines = append(lines, fmt.Sprintf("Not a folder: %s", path))
		default:
			lines = append(lines, err.Error())
		}
	}
	dialog.ShowInformation("Drop Error", strings.Join(lines, "\n"), mw.window)
}

func (mw *MainWindow) onRemoveFolder() {
	if mw.selected < 0 || mw.selected >= len(mw.folders) {
		dialog.ShowInformation("Warning", "No path selected for deletion.", mw.window)
		return
	}
	mw.folders = append(mw.folders[:mw.selected], mw.folders[mw.selected+1:]...)
	mw.folderList.UnselectAll()
	mw.selected = -1
	mw.folderList.Refresh()
	mw.statusLabel.SetText(fmt.Sprintf("%d remaining path(s)", len(mw.folders)))
}

func (mw *MainWindow) enabledCategories() app.Enabled {
	enabled := app.Enabled{}
	for name, check := range mw.categoryChks {
		enabled[name] = check.Checked
	}
	return enabled
}

func (mw *MainWindow) onSort() {
	req := app.SortRequest{
		Directories: append([]string(nil), mw.folders...),
		Enabled:     mw.enabledCategories(),
	}
	if len(req.Directories) == 0 {
		dialog.ShowInformation("Information", "Please select at least one folder", mw.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	mw.cancel = cancel
	mw.setBusy(true)
	mw.setProgress(0, 0)
	mw.updateCounts(nil)
	mw.statusLabel.SetText("Sorting...")
	mw.setOutputText("")

	observer := app.ObserverFunc(func(p app.Progress) {
		fyne.Do(func() {
			mw.setProgress(p.Done, p.Total)
			mw.updateCounts(p.Counts)
			mw.statusLabel.SetText(fmt.Sprintf("Sorting... %d of %d", p.Done, p.Total))
		})
	})

	go func() {
		defer cancel()
		result, err := mw.orchestrator.SortFolders(ctx, req, observer)

		fyne.Do(func() {
			mw.cancel = nil
			mw.setBusy(false)

			if err != nil {
				mw.statusLabel.SetText("Ready")
				dialog.ShowError(err, mw.window)
				return
			}

			rules := mw.orchestrator.Engine().Rules()
			mw.setOutputText(app.FormatSortSummary(result, rules))
			mw.updateCounts(result.Counts)

			if result.NoCandidates {
				mw.statusLabel.SetText("Ready")
				dialog.ShowInformation("Information", "There are no files to sort", mw.window)
				return
			}

			mw.statusLabel.SetText(fmt.Sprintf("Sorted %d of %d files", result.Counts.Total(), result.TotalFiles))
			if result.Counts.Total() > 0 {
				mw.askSaveReport(result)
			}
		})
	}()
}

func (mw *MainWindow) onStop() {
	if mw.cancel != nil {
		mw.cancel()
		mw.statusLabel.SetText("Stopping...")
	}
}

func (mw *MainWindow) askSaveReport(result app.SortResult) {
	dialog.ShowConfirm("Sort Report", "Do you want to save a sorting report?", func(ok bool) {
		if !ok {
			return
		}
		save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()

			if err := mw.orchestrator.SaveReport(path, result); err != nil {
				dialog.ShowError(err, mw.window)
			}
		}, mw.window)
		save.SetFileName("Sorting Report." + mw.config.ReportFormat)
		save.Show()
	}, mw.window)
}

func (mw *MainWindow) onUndo() {
	mw.setBusy(true)
	mw.stopBtn.Hide()
	mw.statusLabel.SetText("Restoring files...")

	go func() {
		result := mw.orchestrator.Undo()

		fyne.Do(func() {
			mw.setBusy(false)
			mw.statusLabel.SetText("Ready")

			if result.HistoryEmpty {
				dialog.ShowInformation("Information", "There are no files to restore.", mw.window)
				return
			}

			mw.setOutputText(app.FormatUndoSummary(result))
			mw.updateCounts(nil)
			mw.setProgress(0, 0)

			if mw.orchestrator.LastReport() != "" {
				dialog.ShowConfirm("Sort Report", "Do you want to delete the sorting report?", func(remove bool) {
					if err := mw.orchestrator.ForgetReport(remove); err != nil {
						dialog.ShowError(err, mw.window)
					}
				}, mw.window)
			}
		})
	}()
}

func (mw *MainWindow) onCustomRules() {
	rw := NewRulesWindow(mw.app, mw.orchestrator.Engine(), mw.files, mw.config, mw.logger, func() {
		mw.rebuildCountLabels()
	})
	rw.Show()
}

func (mw *MainWindow) onHistory() {
	NewHistoryWindow(mw.app, mw.orchestrator.Engine(), mw.runs, mw.logger).Show()
}

func (mw *MainWindow) onToggleTheme() {
	if mw.config.Theme == app.ThemeDark {
		mw.config.Theme = app.ThemeLight
	} else {
		mw.config.Theme = app.ThemeDark
	}
	applyTheme(mw.app, mw.config.Theme)
	app.SaveConfig(mw.app, mw.config, mw.logger)
}

func (mw *MainWindow) showAboutDialog() {
	version := mw.app.Metadata().Version
	if version == "" {
		version = "dev"
	}

	aboutText := fmt.Sprintf(`SmartOrganizer
Version %s

Sorts the files of the selected folders into category folders by extension.
Every sort can be undone.`, version)

	dialog.ShowInformation("About SmartOrganizer", aboutText, mw.window)
}

func (mw *MainWindow) Show() {
	mw.window.Show()
}

func (mw *MainWindow) ShowAndRun() {
	mw.window.ShowAndRun()
}
