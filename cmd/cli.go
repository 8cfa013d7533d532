package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pomotasks/internal/core/notation"
	"pomotasks/internal/platform"
	"pomotasks/internal/storage"
	"pomotasks/internal/ui/preferences"
)

func newListCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "Show open tasks with their remaining, completed and over-completed effort",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(v)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			root := settings.ChecklistPath
			if len(args) == 1 {
				root = args[0]
			}

			checklists, err := storage.NewChecklistStore().LoadChecklists(settings.Symbols(), root)
			if err != nil {
				return err
			}
			printChecklists(cmd.OutOrStdout(), settings, checklists)
			return nil
		},
	}
}

func newLogCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "log <file> <line-number> <minutes>",
		Short: "Book worked minutes on a task line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(v)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			lineNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line number %q", args[1])
			}
			minutes, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[2])
			}

			line, err := logMinutes(storage.NewChecklistStore(), settings, args[0], lineNumber, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func newDoneCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "done <file> <line-number>",
		Short: "Tick the checkbox of a task line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(v)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			lineNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line number %q", args[1])
			}

			store := storage.NewChecklistStore()
			record, err := store.TaskAt(settings.Symbols(), args[0], lineNumber)
			if err != nil {
				return err
			}
			if err := store.CompleteTask(record.FilePath, record.RawLine); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "done: %s\n", record.Name)
			return nil
		},
	}
}

func newConfigCommand(v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := loadSettings(v)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			data, err := storage.MarshalSettings(settings)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return configCmd
}

func newAutostartCommand(v *viper.Viper) *cobra.Command {
	autostartCmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start the tray app at login",
	}

	autostartCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Register the tray app with the login session",
		RunE: func(cmd *cobra.Command, args []string) error {
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to resolve executable: %w", err)
			}
			entry := platform.LaunchEntry{
				AppName:  appName,
				ExecPath: execPath,
				Args:     launchArgs(v),
			}
			if err := platform.NewAutostart().Enable(entry); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled")
			return nil
		},
	})

	autostartCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Remove the login entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := platform.NewAutostart().Disable(appName); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
			return nil
		},
	})

	autostartCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether autostart is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := platform.NewAutostart().Enabled(appName)
			if err != nil {
				return err
			}
			if enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "enabled")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "disabled")
			}
			return nil
		},
	})

	return autostartCmd
}

// launchArgs repeats the overrides given to this invocation, with paths made
// absolute, so the login entry starts with the same settings.
func launchArgs(v *viper.Viper) []string {
	var args []string
	for _, name := range overrideFlags {
		value := v.GetString(name)
		if value == "" || value == "0" {
			continue
		}
		if name == "config" || name == "checklist" {
			if abs, err := filepath.Abs(value); err == nil {
				value = abs
			}
		}
		args = append(args, "--"+name, value)
	}
	return args
}

// logMinutes books minutes on the task at lineNumber and returns the
// rewritten line. Less than a quarter unit is refused.
func logMinutes(store *storage.ChecklistStore, settings preferences.Settings, path string, lineNumber int, minutes float64) (string, error) {
	symbols := settings.Symbols()
	if symbols.WorkMinutesPerUnit <= 0 {
		return "", fmt.Errorf("work duration must be positive")
	}
	record, err := store.TaskAt(symbols, path, lineNumber)
	if err != nil {
		return "", err
	}

	units := minutes / symbols.WorkMinutesPerUnit
	if minutes >= 0 && notation.FloorToQuarter(units) == 0 {
		return "", fmt.Errorf("%w: %v", notation.ErrTooFewMinutes, minutes)
	}
	updated, err := notation.Subtract(record, units)
	if err != nil {
		return "", err
	}

	line := notation.FormatLine(symbols, updated)
	if err := store.ReplaceLine(record.FilePath, record.RawLine, line); err != nil {
		return "", err
	}
	return line, nil
}

func printChecklists(out io.Writer, settings preferences.Settings, checklists []notation.Checklist) {
	symbols := settings.Symbols()
	for _, checklist := range checklists {
		estimate := checklist.Estimate(settings.WorkDuration, settings.BreakDuration).Round(time.Minute)
		fmt.Fprintf(out, "%s: %s left, about %s with breaks\n",
			checklist.Path, glyphsOrDash(notation.FormatCount(symbols, checklist.RemainingCount)), estimate)

		for i, task := range checklist.Tasks {
			minutes := notation.RemainingMinutes(symbols, notation.TaskBody(task.RawLine))
			fmt.Fprintf(out, "%5d  %s  left %s (%g min)  done %s  over %s\n",
				checklist.Lines[i],
				task.Name,
				glyphsOrDash(notation.FormatCount(symbols, task.RemainingCount)),
				minutes,
				glyphsOrDash(notation.FormatCount(symbols, task.CompletedCount)),
				glyphsOrDash(notation.FormatCount(symbols, task.OverCompletedCount)),
			)
		}
	}
}

func glyphsOrDash(glyphs string) string {
	if glyphs == "" {
		return "-"
	}
	return glyphs
}
