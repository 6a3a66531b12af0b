package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"io.github.smartorganizer/internal/app"
)

// variantTheme pins the default theme to one variant regardless of the
// system preference.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

func applyTheme(a fyne.App, name string) {
	variant := theme.VariantLight
	if name == app.ThemeDark {
		variant = theme.VariantDark
	}
	a.Settings().SetTheme(variantTheme{Theme: theme.DefaultTheme(), variant: variant})
}
