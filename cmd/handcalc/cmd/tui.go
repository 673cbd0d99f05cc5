package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ayusman/handcalc/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the calculator in the terminal",
	Long: `Run the gesture calculator with a terminal display.

Keys:
  space  toggle gesture detection
  c      clear the expression
  v      evaluate a spoken command
  e      type an expression to evaluate
  q      quit

Logs are written to handcalc.log in the data directory.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI launches the terminal UI.
func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(settings.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(settings.DataDir, "handcalc.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: settings.Level()}))
	slog.SetDefault(logger)

	rt, err := newRuntime(settings, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(tui.New(rt.app), tea.WithAltScreen(), tea.WithContext(ctx))
	rt.consumer.AddSink(tui.Sink(p))

	if err := rt.start(ctx); err != nil {
		return err
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
