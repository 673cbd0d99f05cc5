// Package tray provides a system tray control surface for handcalc.
package tray

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/event"
)

// Controller is the part of app.App the tray menu drives.
type Controller interface {
	Toggle() error
	Reset() error
	Listen() error
	Status() app.Status
}

// Tray is the tray menu. It is also a display sink: the last expression
// and result are shown as disabled menu items.
type Tray struct {
	app    Controller
	log    *slog.Logger
	onOpen func()
	onQuit func()

	mu         sync.RWMutex
	expression string
	result     string

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuExpression *systray.MenuItem
	menuResult     *systray.MenuItem
}

// New creates a Tray driving a.
func New(a Controller, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{app: a, log: logger.With("component", "tray")}
}

// OnOpen sets the callback for the "Open in Browser" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func toggleTitle(active bool) string {
	if active {
		return "● Gestures on"
	}
	return "○ Gestures off"
}

func expressionTitle(text string) string {
	if text == "" {
		return "Expression: none"
	}
	return "Expression: " + text
}

func resultTitle(text string) string {
	if text == "" {
		return "Result: none"
	}
	return "Result: " + text
}

func (t *Tray) onReady() {
	systray.SetTitle("handcalc")
	systray.SetTooltip("handcalc gesture calculator")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.app.Status().Active), "Toggle gesture detection")
	menuClear := systray.AddMenuItem("Clear", "Clear the expression")
	menuListen := systray.AddMenuItem("Listen", "Evaluate a spoken command")
	systray.AddSeparator()

	t.menuExpression = systray.AddMenuItem(expressionTitle(t.expression), "Current expression")
	t.menuExpression.Disable()
	t.menuResult = systray.AddMenuItem(resultTitle(t.result), "Last result")
	t.menuResult.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser", "Open the web view")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit handcalc")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.run("reset", t.app.Reset)
			case <-menuListen.ClickedCh:
				t.run("listen", t.app.Listen)
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	if !t.run("toggle", t.app.Toggle) {
		return
	}
	title := toggleTitle(t.app.Status().Active)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(title)
	}
}

func (t *Tray) run(name string, op func() error) bool {
	if err := op(); err != nil {
		t.log.Warn("tray action failed", "action", name, "error", err)
		return false
	}
	return true
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback()
	}
}

// OnEvent implements display.Sink.
func (t *Tray) OnEvent(e event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case event.KindExpressionUpdated:
		t.expression = e.Text
		if t.menuExpression != nil {
			t.menuExpression.SetTitle(expressionTitle(e.Text))
		}
	case event.KindEvaluationCompleted, event.KindMessage:
		t.result = e.Text
		if t.menuResult != nil {
			t.menuResult.SetTitle(resultTitle(e.Text))
		}
	}
}

// Last returns the expression and result currently shown.
func (t *Tray) Last() (expression, result string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.expression, t.result
}
