package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window       fyne.Window
	settings     Settings
	onSave       func(Settings)
	fullGlyph    *widget.Entry
	halfGlyph    *widget.Entry
	quarterGlyph *widget.Entry
	workMinutes  *widget.Entry
	breakMinutes *widget.Entry
	checklist    *widget.Entry
	autoBreak    *widget.Check
	idleCheck    *widget.Check
	idleMinutes  *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Pomotasks Settings")

	prefs := &Window{
		window:       window,
		onSave:       onSave,
		fullGlyph:    widget.NewEntry(),
		halfGlyph:    widget.NewEntry(),
		quarterGlyph: widget.NewEntry(),
		workMinutes:  widget.NewEntry(),
		breakMinutes: widget.NewEntry(),
		checklist:    widget.NewEntry(),
		autoBreak:    widget.NewCheck("Start the break when work ends", nil),
		idleCheck:    widget.NewCheck("Pause when idle", nil),
		idleMinutes:  widget.NewEntry(),
	}
	prefs.checklist.SetPlaceHolder("file or folder of markdown checklists")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Glyphs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			widget.NewLabel("Full"), prefs.fullGlyph,
			widget.NewLabel("Half"), prefs.halfGlyph,
			widget.NewLabel("Quarter"), prefs.quarterGlyph,
		),
		widget.NewLabelWithStyle("Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Work"), prefs.workMinutes, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Break"), prefs.breakMinutes, widget.NewLabel("min")),
		prefs.autoBreak,
		container.NewHBox(prefs.idleCheck, prefs.idleMinutes, widget.NewLabel("min")),
		widget.NewLabelWithStyle("Checklists", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.checklist,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.fullGlyph.SetText(settings.FullGlyph)
	prefs.halfGlyph.SetText(settings.HalfGlyph)
	prefs.quarterGlyph.SetText(settings.QuarterGlyph)
	prefs.workMinutes.SetText(fmt.Sprintf("%d", int(settings.WorkDuration.Minutes())))
	prefs.breakMinutes.SetText(fmt.Sprintf("%d", int(settings.BreakDuration.Minutes())))
	prefs.checklist.SetText(settings.ChecklistPath)
	prefs.autoBreak.SetChecked(settings.AutoStartBreak)
	prefs.idleCheck.SetChecked(settings.IdlePauseEnabled)
	prefs.idleMinutes.SetText(fmt.Sprintf("%d", int(settings.IdlePauseAfter.Minutes())))
}

func (prefs *Window) handleSave() {
	settings := prefs.settings
	settings.FullGlyph = strings.TrimSpace(prefs.fullGlyph.Text)
	settings.HalfGlyph = strings.TrimSpace(prefs.halfGlyph.Text)
	settings.QuarterGlyph = strings.TrimSpace(prefs.quarterGlyph.Text)

	if err := settings.Symbols().Validate(); err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}

	if minutes, ok := parsePositiveInt(prefs.workMinutes.Text); ok {
		settings.WorkDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.breakMinutes.Text); ok {
		settings.BreakDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.idleMinutes.Text); ok {
		settings.IdlePauseAfter = time.Duration(minutes) * time.Minute
	}

	settings.ChecklistPath = strings.TrimSpace(prefs.checklist.Text)
	settings.AutoStartBreak = prefs.autoBreak.Checked
	settings.IdlePauseEnabled = prefs.idleCheck.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
