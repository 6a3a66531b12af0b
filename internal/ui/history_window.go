package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"io.github.smartorganizer/internal/app"
)

// RunLister reports the journaled sort runs
type RunLister interface {
	Runs() ([]app.RunSummary, error)
}

// HistoryWindow lists the moves an undo would reverse.
type HistoryWindow struct {
	app    fyne.App
	window fyne.Window
	engine *app.Engine
	runs   RunLister
	logger *app.Logger

	listContainer *fyne.Container
	scrollContent *container.Scroll
	statusLabel   *widget.Label
	statsLabel    *widget.Label
	searchEntry   *widget.Entry

	allMoves      []app.MoveRecord
	filteredMoves []app.MoveRecord
}

func NewHistoryWindow(fyneApp fyne.App, engine *app.Engine, runs RunLister, logger *app.Logger) *HistoryWindow {
	hw := &HistoryWindow{
		app:    fyneApp,
		window: fyneApp.NewWindow("Sort History"),
		engine: engine,
		runs:   runs,
		logger: logger,
	}

	hw.initializeComponents()
	hw.setupLayout()
	hw.loadData()

	return hw
}

func (hw *HistoryWindow) initializeComponents() {
	hw.statusLabel = widget.NewLabel("Loading...")
	hw.statsLabel = widget.NewLabel("")

	hw.searchEntry = widget.NewEntry()
	hw.searchEntry.SetPlaceHolder("Search paths or categories...")
	hw.searchEntry.OnChanged = func(query string) {
		hw.filterData(query)
	}

	hw.listContainer = container.NewVBox()
	hw.scrollContent = container.NewScroll(hw.listContainer)
}

func (hw *HistoryWindow) setupLayout() {
	reloadBtn := widget.NewButton("Reload", hw.loadData)

	content := container.NewBorder(
		container.NewVBox(
			container.NewBorder(nil, nil, nil, reloadBtn, hw.statsLabel),
			hw.searchEntry,
			widget.NewSeparator(),
		),
		container.NewVBox(
			widget.NewSeparator(),
			hw.statusLabel,
		),
		nil, nil,
		hw.scrollContent,
	)

	hw.window.SetContent(container.NewPadded(content))
	hw.window.Resize(fyne.NewSize(1000, 600))
}

func (hw *HistoryWindow) loadData() {
	hw.statusLabel.SetText("Loading history...")

	go func() {
		moves := hw.engine.History()

		var runs []app.RunSummary
		var err error
		if hw.runs != nil {
			runs, err = hw.runs.Runs()
		}

		fyne.Do(func() {
			if err != nil {
				hw.logger.Error("Failed to load sort runs: %v", err)
				dialog.ShowError(fmt.Errorf("failed to load sort runs: %w", err), hw.window)
			}

			hw.allMoves = moves
			hw.updateStats(runs)
			hw.filterData(hw.searchEntry.Text)
		})
	}()
}

func (hw *HistoryWindow) filterData(query string) {
	if query == "" {
		hw.filteredMoves = hw.allMoves
	} else {
		query = strings.ToLower(query)
		hw.filteredMoves = nil
		for _, m := range hw.allMoves {
			if strings.Contains(strings.ToLower(m.From), query) ||
				strings.Contains(strings.ToLower(m.To), query) ||
				strings.Contains(strings.ToLower(m.Category), query) {
				hw.filteredMoves = append(hw.filteredMoves, m)
			}
		}
	}

	hw.renderMoves()
	if len(hw.allMoves) == 0 {
		hw.statusLabel.SetText("There are no files to restore")
	} else {
		hw.statusLabel.SetText(fmt.Sprintf("Showing %d of %d moves", len(hw.filteredMoves), len(hw.allMoves)))
	}
}

func (hw *HistoryWindow) renderMoves() {
	hw.listContainer.Objects = nil

	if len(hw.filteredMoves) == 0 {
		emptyLabel := widget.NewLabel("No moves to display")
		emptyLabel.Alignment = fyne.TextAlignCenter
		hw.listContainer.Add(emptyLabel)
		hw.listContainer.Refresh()
		return
	}

	// Newest first, the order an undo walks them
	for i := len(hw.filteredMoves) - 1; i >= 0; i-- {
		hw.listContainer.Add(hw.createMoveCard(hw.filteredMoves[i]))
	}
	hw.listContainer.Refresh()
}

func (hw *HistoryWindow) createMoveCard(m app.MoveRecord) fyne.CanvasObject {
	pathLabel := widget.NewLabel(filepath.Base(m.To))
	pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	moveLabel := widget.NewLabel(fmt.Sprintf("%s → %s", m.From, m.To))
	moveLabel.Wrapping = fyne.TextWrapWord

	metaLabel := widget.NewLabel(fmt.Sprintf("Category: %s  |  Run: %s  |  Moved: %s",
		m.Category, shortRunID(m.RunID), formatTimestamp(m.MovedAt)))
	metaLabel.TextStyle = fyne.TextStyle{Italic: true}

	separator := canvas.NewLine(theme.Color(theme.ColorNameShadow))
	separator.StrokeWidth = 1

	return container.NewVBox(pathLabel, moveLabel, metaLabel, separator)
}

func (hw *HistoryWindow) updateStats(runs []app.RunSummary) {
	if len(hw.allMoves) == 0 {
		hw.statsLabel.SetText("No pending moves")
		return
	}

	byCategory := make(map[string]int)
	for _, m := range hw.allMoves {
		byCategory[m.Category]++
	}
	parts := make([]string, 0, len(byCategory))
	for _, r := range hw.engine.Rules().Rules() {
		if n := byCategory[r.Name]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", r.Name, n))
		}
	}

	statsText := fmt.Sprintf("Pending moves: %d", len(hw.allMoves))
	if len(runs) > 0 {
		statsText += fmt.Sprintf(" in %d runs since %s", len(runs), formatTimestamp(runs[0].StartedAt))
	}
	if len(parts) > 0 {
		statsText += " (" + strings.Join(parts, ", ") + ")"
	}
	hw.statsLabel.SetText(statsText)
}

func (hw *HistoryWindow) Show() {
	hw.window.Show()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
