package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/handcalc/internal/plugin"
	"github.com/ayusman/handcalc/internal/voice"
)

var voiceCmd = &cobra.Command{
	Use:   "voice [transcript...]",
	Short: "Evaluate a spoken command",
	Long: `Evaluate a spoken arithmetic command.

With a transcript, it is parsed directly:
  handcalc voice add two and three      # 2 + 3 = 5

Without one, the configured voice plugin records and transcribes a command.
Use --plugins to list the discovered voice plugins.`,
	SilenceErrors: true,
	RunE:          runVoice,
}

func init() {
	rootCmd.AddCommand(voiceCmd)
	voiceCmd.Flags().Bool("plugins", false, "list voice plugins and exit")
}

func runVoice(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if list, _ := cmd.Flags().GetBool("plugins"); list {
		manager := plugin.NewManager(settings.PluginDir, slog.Default())
		if err := manager.Discover(); err != nil {
			return fmt.Errorf("discovering plugins: %w", err)
		}
		plugins := manager.List()
		if len(plugins) == 0 {
			fmt.Fprintf(out, "No plugins in %s\n", settings.PluginDir)
			return nil
		}
		for _, p := range plugins {
			fmt.Fprintf(out, "%-20s %-8s %s\n", p.Manifest.Name, p.Manifest.Version, p.Manifest.Description)
		}
		return nil
	}

	var (
		result string
		err    error
	)
	if len(args) > 0 {
		result, err = voice.Interpret(strings.Join(args, " "))
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), settings.App().VoiceTimeout)
		defer cancel()
		fmt.Fprintln(out, "Listening...")
		result, err = voice.Listen(ctx, newRecognizer(settings, slog.Default()))
	}
	if err != nil {
		fmt.Fprintln(out, voice.Describe(err))
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}
