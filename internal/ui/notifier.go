package ui

import (
	"fyne.io/fyne/v2"
)

// Notifier shows desktop notifications. Safe to call from any goroutine.
type Notifier struct {
	app fyne.App
}

func NewNotifier(a fyne.App) *Notifier {
	return &Notifier{app: a}
}

func (n *Notifier) Notify(title, message string) {
	fyne.Do(func() {
		n.app.SendNotification(fyne.NewNotification(title, message))
	})
}
