package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pomotasks/internal/core/session"
	"pomotasks/internal/core/timer"
	"pomotasks/internal/platform"
	"pomotasks/internal/storage"
	"pomotasks/internal/ui/preferences"
	"pomotasks/internal/ui/tray"
)

// desktopNotifier shows session notices through the desktop notification
// service. Notify is called with the session lock held, so it must not block.
type desktopNotifier struct {
	app fyne.App
}

func (notifier desktopNotifier) Notify(title, message string) {
	fyne.Do(func() {
		notifier.app.SendNotification(fyne.NewNotification(title, message))
	})
}

func runTray(settings preferences.Settings, configFile string) error {
	guard, err := platform.AcquireSingleInstance(appName, settings.ChecklistPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(theme.MediaRecordIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("Pomotasks is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	store := storage.NewChecklistStore()
	keeper := session.New(settings.SessionConfig(), store, desktopNotifier{app: fyneApp}, session.Options{TickInterval: time.Second})
	keeper.SetIdleChecker(platform.NewIdleProvider())

	var trayManager *tray.Manager
	reload := func() {
		if settings.ChecklistPath == "" {
			trayManager.SetChecklists(nil)
			return
		}
		checklists, err := store.LoadChecklists(settings.Symbols(), settings.ChecklistPath)
		if err != nil {
			log.Printf("load checklists: %v", err)
			return
		}
		trayManager.SetChecklists(checklists)
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := saveSettings(configFile, settings); err != nil {
			log.Printf("save settings: %v", err)
		}
		keeper.UpdateConfig(settings.SessionConfig())
		trayManager.SetSymbols(settings.Symbols())
		reload()
	})

	trayManager = tray.New(desktopApp, settings.Symbols(), tray.Callbacks{
		OnToggle:     keeper.Toggle,
		OnSkip:       keeper.Skip,
		OnReset:      keeper.Reset,
		OnSelectTask: keeper.SelectTask,
		OnClearTask: func() {
			keeper.ClearTask()
		},
		OnCompleteTask: func() {
			record, ok := keeper.ClearTask()
			if !ok {
				return
			}
			if err := store.CompleteTask(record.FilePath, record.RawLine); err != nil {
				log.Printf("complete task %q: %v", record.Name, err)
			}
			reload()
		},
		OnReload: reload,
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			keeper.Stop()
			fyneApp.Quit()
		},
	})

	desktopApp.SetSystemTrayIcon(statusIcon(timer.StatusStopped))
	reload()

	events := keeper.Subscribe(16)
	go func() {
		for event := range events {
			event := event // per-iteration copy (go directive < 1.22)
			if line, ok := eventLogLine(event); ok {
				log.Print(line)
			}
			fyne.Do(func() {
				trayManager.Update(event)
				switch event.Type {
				case session.EventStateChange:
					desktopApp.SetSystemTrayIcon(statusIcon(event.Status))
				case session.EventTaskUpdated:
					reload()
				}
			})
		}
	}()

	keeper.Start()
	if settings.ChecklistPath == "" {
		prefsWindow.Show()
	}
	fyneApp.Run()
	keeper.Stop()
	return nil
}

// eventLogLine renders the events worth logging, tagged with the countdown
// they belong to so the lines of one countdown can be grepped together.
func eventLogLine(event session.Event) (string, bool) {
	var line string
	switch event.Type {
	case session.EventError, session.EventIdleError:
		line = "session: " + event.Message
	case session.EventIdlePause:
		line = "session paused: " + event.Message
	case session.EventExpired:
		line = fmt.Sprintf("%s countdown finished", event.Phase)
	default:
		return "", false
	}
	if event.CountdownID != "" {
		line = fmt.Sprintf("[%s] %s", event.CountdownID, line)
	}
	return line, true
}

func statusIcon(status timer.Status) fyne.Resource {
	switch status {
	case timer.StatusRunning:
		return theme.MediaPlayIcon()
	case timer.StatusPaused:
		return theme.MediaPauseIcon()
	default:
		return theme.MediaStopIcon()
	}
}
