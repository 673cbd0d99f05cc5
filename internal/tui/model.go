package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/display"
	"github.com/ayusman/handcalc/internal/event"
	"github.com/ayusman/handcalc/internal/expr"
)

// maxHistory is how many results are kept on screen.
const maxHistory = 8

// statusInterval is how often the app status is polled.
const statusInterval = 250 * time.Millisecond

// Controller is the part of app.App the TUI drives.
type Controller interface {
	Toggle() error
	Reset() error
	Listen() error
	Status() app.Status
}

// EventMsg delivers a command event from the display consumer.
type EventMsg struct {
	Event event.Event
}

type statusMsg app.Status

type errMsg struct{ err error }

// Model is the bubbletea model.
type Model struct {
	app     Controller
	input   textinput.Model
	spinner spinner.Model

	status     app.Status
	expression string
	result     string
	history    []string
	err        error
	evaluating bool
	width      int
}

// New creates a Model driving a.
func New(a Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. 7+3*2"
	ti.CharLimit = 64
	ti.Prompt = "= "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorNext)

	return Model{
		app:     a,
		input:   ti,
		spinner: sp,
		status:  a.Status(),
	}
}

// Sink returns a display sink that forwards command events to p.
func Sink(p *tea.Program) display.Sink {
	return display.SinkFunc(func(e event.Event) {
		if e.IsCommand() {
			p.Send(EventMsg{Event: e})
		}
	})
}

func (m Model) pollStatus() tea.Cmd {
	a := m.app
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return statusMsg(a.Status())
	})
}

// Init starts status polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollStatus(), m.spinner.Tick)
}

// call runs a control operation as a command.
func call(op func() error) tea.Cmd {
	return func() tea.Msg {
		if err := op(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case statusMsg:
		m.status = app.Status(msg)
		return m, m.pollStatus()

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.evaluating {
			return m.updateInput(msg)
		}
		m.err = nil
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ", "g":
			return m, call(m.app.Toggle)
		case "c":
			return m, call(m.app.Reset)
		case "v":
			return m, call(m.app.Listen)
		case "e", ":":
			m.evaluating = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.evaluating = false
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.ReplaceAll(m.input.Value(), " ", "")
		m.evaluating = false
		m.input.Blur()
		if text != "" {
			m.pushResult(expr.Result(text))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyEvent(e event.Event) {
	switch e.Kind {
	case event.KindExpressionUpdated:
		m.expression = e.Text
	case event.KindEvaluationCompleted, event.KindMessage:
		m.pushResult(e.Text)
	}
}

func (m *Model) pushResult(text string) {
	m.result = text
	m.history = append(m.history, text)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func isError(text string) bool {
	return strings.HasPrefix(text, "Error:")
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("handcalc"))
	b.WriteString("\n\n")

	gestures := offStyle.Render("○ off")
	if m.status.Active {
		gestures = onStyle.Render("● on")
	}
	camera := offStyle.Render("unavailable")
	if m.status.Camera {
		camera = fmt.Sprintf("%d fps", m.status.FPS)
	}
	b.WriteString(labelStyle.Render("Gestures") + gestures + "\n")
	b.WriteString(labelStyle.Render("Camera") + camera + "\n")
	b.WriteString(labelStyle.Render("Phase") + m.status.Phase + "\n")
	if m.status.Listening {
		b.WriteString(labelStyle.Render("Voice") + m.spinner.View() + " listening\n")
	}
	b.WriteString("\n")

	expression := m.expression
	if expression == "" {
		expression = " "
	}
	b.WriteString(labelStyle.Render("Expression") + expressionStyle.Render(expression) + "\n")

	if m.result != "" {
		style := resultStyle
		if isError(m.result) {
			style = errorStyle
		}
		b.WriteString(labelStyle.Render("Result") + style.Render(m.result) + "\n")
	}

	if len(m.history) > 1 {
		b.WriteString("\n" + historyStyle.Render(strings.Join(m.history, "\n")) + "\n")
	}

	if m.evaluating {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	help := "space toggle gestures • c clear • v listen • e evaluate • q quit"
	if m.evaluating {
		help = "enter evaluate • esc cancel"
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}
