package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"io.github.smartorganizer/internal/app"
)

// RulesWindow edits the custom rules and the ignore list.
type RulesWindow struct {
	app       fyne.App
	engine    *app.Engine
	files     *app.DefaultFileService
	config    *app.Config
	logger    *app.Logger
	onChanged func()

	rules    []app.Rule
	selected int
}

func NewRulesWindow(fyneApp fyne.App, engine *app.Engine, files *app.DefaultFileService, config *app.Config, logger *app.Logger, onChanged func()) *RulesWindow {
	return &RulesWindow{
		app:       fyneApp,
		engine:    engine,
		files:     files,
		config:    config,
		logger:    logger,
		onChanged: onChanged,
		selected:  -1,
	}
}

func (rw *RulesWindow) Show() {
	win := rw.app.NewWindow("Custom Rules")
	win.Resize(fyne.NewSize(700, 500))

	rw.rules = rw.engine.Rules().CustomRules()

	ruleList := widget.NewList(
		func() int { return len(rw.rules) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			r := rw.rules[id]
			obj.(*widget.Label).SetText(fmt.Sprintf("%s  (%s)", r.Name, strings.Join(r.Extensions, ", ")))
		},
	)

	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Folder name, e.g. Compressed")

	extEntry := widget.NewEntry()
	extEntry.SetPlaceHolder(".zip, .rar")

	ruleList.OnSelected = func(id widget.ListItemID) {
		rw.selected = id
		nameEntry.SetText(rw.rules[id].Name)
		extEntry.SetText(strings.Join(rw.rules[id].Extensions, ", "))
	}
	ruleList.OnUnselected = func(widget.ListItemID) { rw.selected = -1 }

	refresh := func() {
		rw.rules = rw.engine.Rules().CustomRules()
		ruleList.UnselectAll()
		ruleList.Refresh()
		rw.persistRules()
	}

	saveRuleBtn := widget.NewButton("Save Rule", func() {
		if err := rw.engine.AddRule(nameEntry.Text, app.ParseExtensions(extEntry.Text)); err != nil {
			dialog.ShowError(err, win)
			return
		}
		nameEntry.SetText("")
		extEntry.SetText("")
		refresh()
	})
	saveRuleBtn.Importance = widget.HighImportance

	removeRuleBtn := widget.NewButton("Remove Selected", func() {
		if rw.selected < 0 || rw.selected >= len(rw.rules) {
			return
		}
		name := rw.rules[rw.selected].Name
		dialog.ShowConfirm("Remove Rule", fmt.Sprintf("Remove the rule %q?\n\nFiles already sorted into it stay where they are.", name), func(ok bool) {
			if !ok {
				return
			}
			rw.engine.RemoveRule(name)
			refresh()
		}, win)
	})
	removeRuleBtn.Importance = widget.DangerImportance

	ruleForm := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Name", Widget: nameEntry},
			{Text: "Extensions", Widget: extEntry},
		},
	}
	rulesTab := container.NewBorder(
		widget.NewLabelWithStyle("Custom rules win over the built-in categories:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewVBox(ruleForm, container.NewHBox(saveRuleBtn, removeRuleBtn)),
		nil, nil,
		ruleList,
	)

	ignorePatternsEntry := widget.NewMultiLineEntry()
	ignorePatternsEntry.SetText(rw.config.IgnorePatterns)
	ignorePatternsEntry.SetPlaceHolder("Enter ignore patterns (one per line, # for comments)...")
	ignorePatternsEntry.Wrapping = fyne.TextWrapWord
	ignorePatternsEntry.SetMinRowsVisible(15)

	saveIgnoreBtn := widget.NewButton("Save", func() {
		rw.config.IgnorePatterns = ignorePatternsEntry.Text
		rw.files.SetIgnorePatterns(ignorePatternsEntry.Text)
		app.SaveConfig(rw.app, rw.config, rw.logger)
		dialog.ShowInformation("Saved", "Ignore list has been saved.", win)
	})
	saveIgnoreBtn.Importance = widget.HighImportance

	ignoreLabel := widget.NewLabelWithStyle("Ignore Patterns (one per line, similar to .gitignore):", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ignoreTab := container.NewBorder(ignoreLabel, saveIgnoreBtn, nil, nil, container.NewScroll(ignorePatternsEntry))

	tabs := container.NewAppTabs(
		container.NewTabItem("Rules", rulesTab),
		container.NewTabItem("Ignore Patterns", ignoreTab),
	)

	closeBtn := widget.NewButton("Close", func() { win.Close() })

	win.SetContent(container.NewBorder(nil, container.NewHBox(closeBtn), nil, nil, tabs))
	win.Show()
}

func (rw *RulesWindow) persistRules() {
	rw.config.StoreRules(rw.engine.Rules())
	app.SaveConfig(rw.app, rw.config, rw.logger)
	if rw.onChanged != nil {
		rw.onChanged()
	}
}
