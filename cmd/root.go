package main

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pomotasks/internal/storage"
	"pomotasks/internal/ui/preferences"
)

var overrideFlags = []string{"config", "checklist", "work-minutes", "break-minutes"}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("POMOTASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "pomotasks",
		Short: "Pomodoro timer that books work time into markdown checklists",
		Long: `Pomotasks runs work and break countdowns from the system tray.

Task lines in markdown checklists carry their estimate as glyphs. While a task
is selected, finished work is written back into its line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, configFile, err := loadSettings(v)
			if err != nil {
				log.Printf("settings: %v", err)
			}
			return runTray(settings, configFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "settings file (default is settings.yaml in the user config dir)")
	flags.String("checklist", "", "checklist file or folder of markdown files")
	flags.Int("work-minutes", 0, "work session length in minutes")
	flags.Int("break-minutes", 0, "break length in minutes")
	for _, name := range overrideFlags {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(newListCommand(v))
	root.AddCommand(newLogCommand(v))
	root.AddCommand(newDoneCommand(v))
	root.AddCommand(newConfigCommand(v))
	root.AddCommand(newAutostartCommand(v))
	return root
}

func settingsPath(v *viper.Viper) (string, error) {
	if path := v.GetString("config"); path != "" {
		return path, nil
	}
	return storage.SettingsPath(appName)
}

// loadSettings reads the settings file and layers flags and POMOTASKS_*
// variables on top. Overrides are applied even when the file is unreadable.
// The returned path is the --config value, empty for the default location.
func loadSettings(v *viper.Viper) (preferences.Settings, string, error) {
	configFile := v.GetString("config")
	var (
		settings preferences.Settings
		err      error
	)
	if configFile == "" {
		settings, err = storage.LoadSettings(appName)
	} else {
		settings, err = storage.LoadSettingsFile(configFile)
	}
	return applyOverrides(settings, v), configFile, err
}

// saveSettings writes to configFile, or to the default location when it is
// empty.
func saveSettings(configFile string, settings preferences.Settings) error {
	if configFile == "" {
		return storage.SaveSettings(appName, settings)
	}
	return storage.SaveSettingsFile(configFile, settings)
}

func applyOverrides(settings preferences.Settings, v *viper.Viper) preferences.Settings {
	if path := strings.TrimSpace(v.GetString("checklist")); path != "" {
		settings.ChecklistPath = path
	}
	if minutes := v.GetInt("work-minutes"); minutes > 0 {
		settings.WorkDuration = time.Duration(minutes) * time.Minute
	}
	if minutes := v.GetInt("break-minutes"); minutes > 0 {
		settings.BreakDuration = time.Duration(minutes) * time.Minute
	}
	return settings
}
