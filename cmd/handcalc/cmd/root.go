// Package cmd contains all CLI commands for handcalc.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/handcalc/internal/config"
)

var cfgFile string

// settings is the configuration loaded before every command runs.
var settings config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "handcalc",
	Short: "Gesture and voice calculator",
	Long: `handcalc is a calculator driven by hand gestures seen through a webcam.

Point your index finger at a bubble to pick it:
  - Digits 0-9 and "next" build a number
  - +, -, *, / append an operator
  - = evaluates the expression

Spoken commands ("add two and three") are evaluated through a voice plugin.

Running 'handcalc' without arguments launches the terminal UI.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/handcalc/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Int("camera", 0, "camera device id")
	flags.String("plugin-dir", "", "voice plugin directory")
	flags.String("data-dir", "", "directory for the settings database")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("camera_id", flags.Lookup("camera"))
	viper.BindPFlag("plugin_dir", flags.Lookup("plugin-dir"))
	viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
}

// initConfig loads .env and points viper at the config file.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: reading .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigFile(filepath.Join(config.Dir(), config.FileName))
	}
}

// configPath returns the config file in use.
func configPath() string {
	return viper.ConfigFileUsed()
}

// loadSettings reads the configuration and installs the default logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings = cfg

	slog.SetDefault(newLogger(cfg.Level()))
	slog.Debug("config loaded", "file", configPath())
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
