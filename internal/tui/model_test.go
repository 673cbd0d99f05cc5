package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/event"
)

type fakeApp struct {
	calls  []string
	err    error
	status app.Status
}

func (f *fakeApp) call(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeApp) Toggle() error      { return f.call("toggle") }
func (f *fakeApp) Reset() error       { return f.call("reset") }
func (f *fakeApp) Listen() error      { return f.call("listen") }
func (f *fakeApp) Status() app.Status { return f.status }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key, dropping the resulting command.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(key(s))
	return next.(Model)
}

// control sends a control key and runs its command, feeding any error back.
func control(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(key(s))
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("key %q produced no command", s)
	}
	if msg, ok := cmd().(errMsg); ok {
		next, _ = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_ControlKeys(t *testing.T) {
	fake := &fakeApp{}
	m := New(fake)

	for _, k := range []string{" ", "g", "c", "v"} {
		m = control(t, m, k)
	}

	want := "toggle,toggle,reset,listen"
	if got := strings.Join(fake.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestModel_ControlError(t *testing.T) {
	fake := &fakeApp{err: app.ErrListening}
	m := control(t, New(fake), "v")

	if !errors.Is(m.err, app.ErrListening) {
		t.Fatalf("err = %v", m.err)
	}
	if !strings.Contains(m.View(), "already listening") {
		t.Error("error not rendered")
	}
}

func TestModel_Events(t *testing.T) {
	m := New(&fakeApp{status: app.Status{Active: true, Camera: true, FPS: 15, Phase: "operator"}})

	for _, e := range []event.Event{
		event.ExpressionUpdated("7+"),
		event.ExpressionUpdated("7+3"),
		event.EvaluationCompleted("7+3 = 10"),
	} {
		next, _ := m.Update(EventMsg{Event: e})
		m = next.(Model)
	}

	if m.expression != "7+3" || m.result != "7+3 = 10" {
		t.Errorf("expression %q result %q", m.expression, m.result)
	}

	view := m.View()
	for _, want := range []string{"7+3 = 10", "● on", "15 fps", "operator"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_Evaluate(t *testing.T) {
	m := New(&fakeApp{})

	m = press(t, m, "e")
	if !m.evaluating {
		t.Fatal("expected input mode")
	}
	for _, r := range "5/0" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")

	if m.evaluating {
		t.Error("input mode not left after enter")
	}
	if m.result != "Error: Division by Zero" {
		t.Errorf("result = %q", m.result)
	}

	m = press(t, m, "e")
	for _, r := range "2*3+4" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	if m.result != "2*3+4 = 10" {
		t.Errorf("result = %q", m.result)
	}
	if len(m.history) != 2 {
		t.Errorf("history = %v", m.history)
	}

	// q types into the input instead of quitting.
	m = press(t, m, "e")
	m = press(t, m, "q")
	if m.input.Value() != "q" {
		t.Errorf("input = %q", m.input.Value())
	}
	m = press(t, m, "esc")
	if m.evaluating || m.result != "2*3+4 = 10" {
		t.Error("esc should cancel without evaluating")
	}
}

func TestModel_HistoryBounded(t *testing.T) {
	m := New(&fakeApp{})
	for i := 0; i < maxHistory+5; i++ {
		m.pushResult("1+1 = 2")
	}
	if len(m.history) != maxHistory {
		t.Errorf("history length = %d, want %d", len(m.history), maxHistory)
	}
}

func TestModel_Quit(t *testing.T) {
	_, cmd := New(&fakeApp{}).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
