// Package app runs the calculator: it owns the camera, the hand tracker and
// the interaction state machine, and publishes events for displays.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/ayusman/handcalc/internal/calc"
	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/event"
	"github.com/ayusman/handcalc/internal/tracker"
	"github.com/ayusman/handcalc/internal/voice"
)

// Loop timing defaults.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the hand is moving.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// MaxReadFailures is how many consecutive failed reads stop sensing.
	MaxReadFailures = 30
	// VoiceTimeout bounds one Listen call.
	VoiceTimeout = 20 * time.Second
)

var (
	// ErrCameraUnavailable is returned by Start when the camera cannot be
	// opened. The app keeps serving control messages and voice input.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNotRunning is returned by control methods before Start or after Stop.
	ErrNotRunning = errors.New("app is not running")

	// ErrListening is returned by Listen while a previous Listen is active.
	ErrListening = errors.New("already listening")
)

// Config holds the app's tunables.
type Config struct {
	CameraID        int
	CanvasWidth     int
	CanvasHeight    int
	Mirror          bool
	Debounce        time.Duration
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64
	MaxReadFailures int
	VoiceTimeout    time.Duration
}

// DefaultConfig returns the standard 775x500 mirrored setup.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:     capture.CanvasWidth,
		CanvasHeight:    capture.CanvasHeight,
		Mirror:          true,
		Debounce:        calc.DefaultDebounce,
		IdleFPS:         IdleFPS,
		ActiveFPS:       ActiveFPS,
		IdleTimeout:     IdleTimeout,
		MotionThreshold: 1.0,
		MaxReadFailures: MaxReadFailures,
		VoiceTimeout:    VoiceTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		c.CanvasWidth, c.CanvasHeight = d.CanvasWidth, d.CanvasHeight
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.IdleFPS <= 0 {
		c.IdleFPS = d.IdleFPS
	}
	if c.ActiveFPS <= 0 {
		c.ActiveFPS = d.ActiveFPS
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.MotionThreshold <= 0 {
		c.MotionThreshold = d.MotionThreshold
	}
	if c.MaxReadFailures <= 0 {
		c.MaxReadFailures = d.MaxReadFailures
	}
	if c.VoiceTimeout <= 0 {
		c.VoiceTimeout = d.VoiceTimeout
	}
	return c
}

// Status is a point-in-time view of the app for displays.
type Status struct {
	SessionID     string `json:"session_id"`
	Running       bool   `json:"running"`
	Camera        bool   `json:"camera"`
	Active        bool   `json:"active"`
	Listening     bool   `json:"listening"`
	Phase         string `json:"phase"`
	Expression    string `json:"expression"`
	FPS           int    `json:"fps"`
	DroppedFrames uint64 `json:"dropped_frames"`
}

// Option configures an App.
type Option func(*App)

// WithCamera replaces the device camera.
func WithCamera(c capture.Camera) Option {
	return func(a *App) { a.camera = c }
}

// WithTracker sets the hand tracker.
func WithTracker(t tracker.Tracker) Option {
	return func(a *App) { a.tracker = t }
}

// WithRecognizer sets the speech recognizer used by Listen.
func WithRecognizer(r voice.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithClock replaces time.Now for debounce timing.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// App is the sensor loop actor. The state machine is owned by the loop
// goroutine; every other goroutine talks to it through control messages
// and reads the published Status.
type App struct {
	cfg        Config
	queue      *event.Queue
	camera     capture.Camera
	tracker    tracker.Tracker
	motion     *capture.MotionDetector
	recognizer voice.Recognizer
	machine    *calc.Machine
	log        *slog.Logger
	now        func() time.Time
	sessionID  string

	control   chan control
	status    atomic.Pointer[Status]
	listening atomic.Bool

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *conc.WaitGroup
}

// New creates an App that publishes to queue. Without WithCamera it uses
// the device camera cfg.CameraID; without WithTracker it sees no hands.
func New(cfg Config, queue *event.Queue, opts ...Option) *App {
	cfg = cfg.withDefaults()

	a := &App{
		cfg:       cfg,
		queue:     queue,
		log:       slog.Default(),
		now:       time.Now,
		sessionID: uuid.NewString(),
		control:   make(chan control),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.CameraID)
	}
	if a.tracker == nil {
		a.tracker = tracker.NewMockTracker()
	}
	a.log = a.log.With("component", "app", "session", a.sessionID)
	a.motion = capture.NewMotionDetector(cfg.MotionThreshold)
	a.machine = calc.NewMachine(calc.WithDebounce(cfg.Debounce))
	a.publish(false, false, false, 0)
	return a
}

// SessionID identifies this App instance in logs and on the wire.
func (a *App) SessionID() string {
	return a.sessionID
}

// Config returns the effective configuration.
func (a *App) Config() Config {
	return a.cfg
}

// Start opens the camera and starts the loop. Detection starts inactive.
// If the camera cannot be opened the loop still runs without sensing and
// Start returns an error wrapping ErrCameraUnavailable.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrNotRunning
	}
	if a.stopCh != nil {
		return nil
	}

	var camErr error
	cam := a.camera
	if err := cam.Open(); err != nil {
		camErr = fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
		a.log.Error("camera unavailable, gestures disabled", "camera", a.cfg.CameraID, "error", err)
		cam = nil
	} else {
		cam.SetFPS(a.cfg.IdleFPS)
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.wg = conc.NewWaitGroup()

	l := newLoop(a, cam)
	stop, done := a.stopCh, a.done
	a.wg.Go(func() {
		defer close(done)
		l.run(stop)
	})

	a.log.Info("sensor loop started", "camera", cam != nil)
	return camErr
}

// Stop ends the loop, waits for it and any Listen in flight, and releases
// the camera, tracker and motion detector. The App cannot be restarted
// after Stop.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.cancel()
	wg := a.wg
	a.stopCh = nil
	a.stopped = true
	a.mu.Unlock()

	wg.Wait()

	if err := a.tracker.Close(); err != nil {
		a.log.Warn("close tracker", "error", err)
	}
	a.motion.Close()
	a.log.Info("sensor loop stopped")
}

// Status returns the latest published status.
func (a *App) Status() Status {
	s := *a.status.Load()
	s.Listening = a.listening.Load()
	if a.queue != nil {
		s.DroppedFrames = a.queue.DroppedFrames()
	}
	return s
}

// Activate turns gesture detection on.
func (a *App) Activate() error { return a.send(opActivate) }

// Deactivate turns gesture detection off. The expression is kept.
func (a *App) Deactivate() error { return a.send(opDeactivate) }

// Toggle flips gesture detection.
func (a *App) Toggle() error { return a.send(opToggle) }

// Reset clears the expression and returns to number selection.
func (a *App) Reset() error { return a.send(opReset) }

// Listen records one utterance in the background and publishes an
// EvaluationCompleted event, or a Message event when recognition or
// parsing fails. It does not touch the gesture expression.
func (a *App) Listen() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return ErrNotRunning
	}
	if !a.listening.CompareAndSwap(false, true) {
		return ErrListening
	}

	ctx := a.ctx
	a.wg.Go(func() {
		defer a.listening.Store(false)
		a.listen(ctx)
	})
	return nil
}

func (a *App) listen(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, a.cfg.VoiceTimeout)
	defer cancel()

	a.log.Info("listening for voice command")
	text, err := voice.Listen(ctx, a.recognizer)
	if err != nil {
		a.log.Warn("voice command failed", "error", err)
		a.emit(event.Message(voice.Describe(err)))
		return
	}
	a.log.Info("voice command evaluated", "result", text)
	a.emit(event.EvaluationCompleted(text))
}

func (a *App) send(op controlOp) error {
	a.mu.Lock()
	done := a.done
	running := a.stopCh != nil
	a.mu.Unlock()

	if !running {
		return ErrNotRunning
	}

	msg := control{op: op, ack: make(chan struct{})}
	select {
	case a.control <- msg:
	case <-done:
		return ErrNotRunning
	}
	select {
	case <-msg.ack:
		return nil
	case <-done:
		return ErrNotRunning
	}
}

// emit pushes e to the queue. A closed queue drops it.
func (a *App) emit(e event.Event) {
	if a.queue == nil {
		return
	}
	if !a.queue.Push(e) {
		a.log.Debug("event dropped, queue closed", "kind", e.Kind)
	}
}

// publish stores a new Status snapshot. Called from the loop goroutine or
// before it starts.
func (a *App) publish(running, camera, active bool, fps int) {
	snap := a.machine.Snapshot()
	a.status.Store(&Status{
		SessionID:  a.sessionID,
		Running:    running,
		Camera:     camera,
		Active:     active,
		Phase:      snap.Phase.String(),
		Expression: snap.Expression,
		FPS:        fps,
	})
}
