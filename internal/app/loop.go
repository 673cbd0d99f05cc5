package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/event"
	"github.com/ayusman/handcalc/internal/render"
	"github.com/ayusman/handcalc/internal/tracker"
)

// CameraLostMessage is published when the camera stops delivering frames.
const CameraLostMessage = "Error: Unable to access the webcam."

type controlOp int

const (
	opActivate controlOp = iota + 1
	opDeactivate
	opToggle
	opReset
)

func (o controlOp) String() string {
	switch o {
	case opActivate:
		return "activate"
	case opDeactivate:
		return "deactivate"
	case opToggle:
		return "toggle"
	case opReset:
		return "reset"
	default:
		return "unknown"
	}
}

// control is a message to the loop goroutine. The loop closes ack once
// the message has been applied.
type control struct {
	op  controlOp
	ack chan struct{}
}

// loop holds the state owned by the sensor goroutine.
//
// Each tick:
//  1. read a frame; give up sensing after MaxReadFailures failures in a row
//  2. when inactive, discard it
//  3. pick the frame rate from motion (idle or active)
//  4. mirror and resize to the canvas, track hands
//  5. feed the index fingertip to the state machine
//  6. draw the overlay, push the command event then the frame
type loop struct {
	app *App
	cam capture.Camera

	ticker     *time.Ticker
	fps        int
	fast       bool
	lastMotion time.Time
	active     bool
	failures   int
}

func newLoop(a *App, cam capture.Camera) *loop {
	return &loop{app: a, cam: cam, fps: a.cfg.IdleFPS}
}

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

func (l *loop) run(stop <-chan struct{}) {
	var tick <-chan time.Time
	if l.cam != nil {
		l.ticker = time.NewTicker(frameInterval(l.fps))
		defer l.ticker.Stop()
		tick = l.ticker.C
	}
	defer l.app.publish(false, false, false, 0)
	defer l.releaseCamera()

	l.publish()

	for {
		select {
		case <-stop:
			return

		case msg := <-l.app.control:
			l.handle(msg.op)
			close(msg.ack)

		case <-tick:
			if !l.step() {
				tick = nil
				l.releaseCamera()
				l.publish()
			}
		}
	}
}

func (l *loop) releaseCamera() {
	if l.cam == nil {
		return
	}
	if err := l.cam.Close(); err != nil {
		l.app.log.Warn("close camera", "error", err)
	}
	l.cam = nil
}

func (l *loop) publish() {
	l.app.publish(true, l.cam != nil, l.active, l.fps)
}

func (l *loop) handle(op controlOp) {
	switch op {
	case opActivate:
		l.setActive(true)
	case opDeactivate:
		l.setActive(false)
	case opToggle:
		l.setActive(!l.active)
	case opReset:
		l.app.emit(l.app.machine.Reset())
	}
	l.app.log.Debug("control", "op", op, "active", l.active)
	l.publish()
}

func (l *loop) setActive(active bool) {
	if l.active == active {
		return
	}
	l.active = active
	if !active {
		l.slowDown()
		l.app.motion.Reset()
	}
	l.app.log.Info("gesture detection", "active", active)
}

// step processes one frame. It returns false once the camera is considered
// lost.
func (l *loop) step() bool {
	frame, err := l.cam.ReadFrame()
	if err != nil {
		l.failures++
		l.app.log.Debug("read frame", "error", err, "failures", l.failures)
		if l.failures >= l.app.cfg.MaxReadFailures {
			l.app.log.Error("camera lost", "failures", l.failures, "error", err)
			l.app.emit(event.Message(CameraLostMessage))
			return false
		}
		return true
	}
	l.failures = 0
	defer frame.Close()

	if !l.active {
		return true
	}

	l.adaptRate(*frame)
	l.process(frame)
	return true
}

func (l *loop) process(frame *gocv.Mat) {
	cfg := l.app.cfg
	canvas, err := capture.PrepareCanvas(frame, cfg.CanvasWidth, cfg.CanvasHeight, cfg.Mirror)
	if err != nil {
		l.app.log.Warn("prepare canvas", "error", err)
		return
	}
	defer canvas.Close()

	hands, err := l.app.tracker.Track(&canvas)
	if err != nil {
		l.app.log.Warn("track hands", "error", err)
		hands = nil
	}
	tip := tracker.Fingertip(hands, cfg.CanvasWidth, cfg.CanvasHeight)

	m := l.app.machine
	lay := m.Layout(cfg.CanvasWidth, cfg.CanvasHeight)
	ev, ok := m.Observe(tip, l.app.now(), lay)
	render.Overlay(&canvas, lay, tip)

	if ok {
		l.app.log.Debug("selection", "kind", ev.Kind, "text", ev.Text)
		l.publish()
		l.app.emit(ev)
	}

	data, err := capture.EncodeJPEG(canvas)
	if err != nil {
		l.app.log.Warn("encode frame", "error", err)
		return
	}
	l.app.emit(event.FrameReady(data, cfg.CanvasWidth, cfg.CanvasHeight))
}

// adaptRate raises the frame rate while something moves and drops it back
// after IdleTimeout without motion.
func (l *loop) adaptRate(frame gocv.Mat) {
	moved, _ := l.app.motion.Detect(frame)
	now := time.Now()

	switch {
	case moved:
		l.lastMotion = now
		if !l.fast {
			l.fast = true
			l.setFPS(l.app.cfg.ActiveFPS)
		}
	case l.fast && now.Sub(l.lastMotion) > l.app.cfg.IdleTimeout:
		l.slowDown()
	}
}

func (l *loop) slowDown() {
	if !l.fast {
		return
	}
	l.fast = false
	l.setFPS(l.app.cfg.IdleFPS)
}

func (l *loop) setFPS(fps int) {
	if l.cam == nil || fps == l.fps {
		return
	}
	l.fps = fps
	l.cam.SetFPS(fps)
	l.ticker.Reset(frameInterval(fps))
	l.app.log.Debug("frame rate", "fps", fps)
	l.publish()
}
