package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	goruntime "runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/handcalc/internal/server"
	"github.com/ayusman/handcalc/internal/tray"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator with the HTTP interface",
	Long: `Run the gesture calculator and serve it over HTTP.

Endpoints:
  GET  /api/health             health and session id
  GET  /api/status             detection state and expression
  POST /api/control/{op}       activate, deactivate, toggle, reset, listen
  POST /api/evaluate           evaluate {"expression": "..."}
  POST /api/interpret          evaluate a spoken command transcript
  GET  /api/settings           effective settings and stored overrides
  PUT  /api/settings           store overrides
  GET  /api/stream             annotated camera frames (MJPEG)
  GET  /api/events             command events (websocket)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("tray", false, "show a system tray menu")
	serveCmd.Flags().String("web", "", "directory of static files to serve")
	serveCmd.Flags().Bool("active", false, "start with gesture detection on")

	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	withTray, _ := cmd.Flags().GetBool("tray")
	webDir, _ := cmd.Flags().GetString("web")
	active, _ := cmd.Flags().GetBool("active")
	logger := slog.Default()

	fmt.Println("handcalc - Gesture Calculator")

	rt, err := newRuntime(settings, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	hub := server.NewHub(logger)
	rt.consumer.AddSink(hub)

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       rt.app,
		Hub:       hub,
		Store:     rt.store,
		Settings:  settings,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.start(ctx); err != nil {
		return err
	}
	if active {
		if err := rt.app.Activate(); err != nil {
			return err
		}
	}

	addr := settings.ListenAddr
	fmt.Printf("Session %s\n", rt.app.SessionID())
	fmt.Printf("Starting server on %s\n", addr)

	if !withTray {
		return srv.Run(ctx, addr)
	}

	// systray owns the main goroutine; the server runs beside it.
	t := tray.New(rt.app, logger)
	rt.consumer.AddSink(t)
	t.OnOpen(func() { openBrowser(browserURL(addr)) })
	t.OnQuit(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, addr)
		t.Quit()
	}()
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "Error opening browser:", err)
		return
	}
	go cmd.Wait()
}
