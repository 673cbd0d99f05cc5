package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/handcalc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write a default config.yaml to your config directory and create the
data and plugin directories.

Edit the file to pick a camera, tune the frame rates or select a voice
plugin. Every key can also be set with a HANDCALC_ environment variable.`,
	// The existing config may be invalid; init must not depend on it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := configPath()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	cfg := config.Default()
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	for _, dir := range []string{cfg.DataDir, cfg.PluginDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	fmt.Fprintf(out, "Created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Copy a voice plugin (e.g. plugins/voice-whisper) into %s\n", cfg.PluginDir)
	fmt.Fprintln(out, "  2. Run 'handcalc eval 7+3' to check the evaluator")
	fmt.Fprintln(out, "  3. Run 'handcalc serve' and open http://localhost:8080/api/stream")
	return nil
}
