package tray

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"pomotasks/internal/core/model"
	"pomotasks/internal/core/notation"
	"pomotasks/internal/core/session"
	"pomotasks/internal/core/timer"
)

const menuTitle = "Pomotasks"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggle       func()
	OnSkip         func()
	OnReset        func()
	OnSelectTask   func(notation.Record)
	OnClearTask    func()
	OnCompleteTask func()
	OnReload       func()
	OnPreferences  func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	symbols    model.SymbolSetting
	status     timer.Status
	label      string
	checklists []notation.Checklist
	selected   *notation.Record
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, symbols model.SymbolSetting, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		symbols:   symbols,
		status:    timer.StatusStopped,
		label:     "starting...",
	}
	manager.refreshMenu()
	return manager
}

// SetSymbols changes the glyphs used in task labels.
func (manager *Manager) SetSymbols(symbols model.SymbolSetting) {
	manager.symbols = symbols
	manager.refreshMenu()
}

// Update reflects a session event in the status line and controls.
func (manager *Manager) Update(event session.Event) {
	switch event.Type {
	case session.EventTaskSelected, session.EventTaskUpdated:
		manager.selected = event.Task
	case session.EventStateChange, session.EventProgress:
		manager.status = event.Status
		manager.label = FormatStatus(event.Phase, event.Status, event.Remaining)
		if event.Task != nil {
			manager.selected = event.Task
		}
	default:
		return
	}
	manager.refreshMenu()
}

// SetChecklists replaces the task submenu.
func (manager *Manager) SetChecklists(checklists []notation.Checklist) {
	manager.checklists = checklists
	manager.refreshMenu()
}

// FormatStatus renders the status line, e.g. "work 12:05 (paused)".
func FormatStatus(phase session.Phase, status timer.Status, remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Round(time.Second).Seconds())
	label := fmt.Sprintf("%s %02d:%02d", phase, seconds/60, seconds%60)
	switch status {
	case timer.StatusPaused:
		label += " (paused)"
	case timer.StatusStopped:
		label += " (stopped)"
	}
	return label
}

func (manager *Manager) menu() *fyne.Menu {
	statusItem := fyne.NewMenuItem("Status: "+manager.label, nil)
	statusItem.Disabled = true

	current := fyne.NewMenuItem("No task selected", nil)
	current.Disabled = true
	if manager.selected != nil {
		current.Label = "Task: " + manager.taskLabel(*manager.selected)
	}

	tasks := fyne.NewMenuItem("Tasks", nil)
	tasks.ChildMenu = fyne.NewMenu("", manager.taskItems()...)

	toggleLabel := "Start"
	switch manager.status {
	case timer.StatusRunning:
		toggleLabel = "Pause"
	case timer.StatusPaused:
		toggleLabel = "Resume"
	}

	clearItem := fyne.NewMenuItem("Clear task", manager.call(manager.callbacks.OnClearTask))
	clearItem.Disabled = manager.selected == nil
	doneItem := fyne.NewMenuItem("Mark task done", manager.call(manager.callbacks.OnCompleteTask))
	doneItem.Disabled = manager.selected == nil

	return fyne.NewMenu(menuTitle,
		statusItem,
		current,
		tasks,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(toggleLabel, manager.call(manager.callbacks.OnToggle)),
		fyne.NewMenuItem("Skip", manager.call(manager.callbacks.OnSkip)),
		fyne.NewMenuItem("Reset", manager.call(manager.callbacks.OnReset)),
		fyne.NewMenuItemSeparator(),
		clearItem,
		doneItem,
		fyne.NewMenuItem("Reload checklists", manager.call(manager.callbacks.OnReload)),
		fyne.NewMenuItem("Preferences", manager.call(manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", manager.call(manager.callbacks.OnQuit)),
	)
}

func (manager *Manager) taskItems() []*fyne.MenuItem {
	var items []*fyne.MenuItem
	for _, checklist := range manager.checklists {
		if len(checklist.Tasks) == 0 {
			continue
		}
		header := fyne.NewMenuItem(fmt.Sprintf("%s (%s left)", checklist.Name, notation.FormatCount(manager.symbols, checklist.RemainingCount)), nil)
		header.Disabled = true
		items = append(items, header)

		for _, record := range checklist.Tasks {
			record := record // per-iteration copy (go directive < 1.22)
			item := fyne.NewMenuItem(manager.taskLabel(record), func() {
				if manager.callbacks.OnSelectTask != nil {
					manager.callbacks.OnSelectTask(record)
				}
			})
			item.Checked = manager.isSelected(record)
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		empty := fyne.NewMenuItem("No open tasks", nil)
		empty.Disabled = true
		items = append(items, empty)
	}
	return items
}

func (manager *Manager) taskLabel(record notation.Record) string {
	if glyphs := notation.FormatCount(manager.symbols, record.RemainingCount); glyphs != "" {
		return record.Name + " " + glyphs
	}
	return record.Name
}

func (manager *Manager) isSelected(record notation.Record) bool {
	if manager.selected == nil {
		return false
	}
	return manager.selected.FilePath == record.FilePath && manager.selected.RawLine == record.RawLine
}

func (manager *Manager) call(callback func()) func() {
	return func() {
		if callback != nil {
			callback()
		}
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu())
	}
}
