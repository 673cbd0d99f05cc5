package tracker

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ScriptName is the MediaPipe helper the tracker runs.
const ScriptName = "hand_tracker.py"

const (
	// idleShutdown stops the helper process after this long without frames.
	idleShutdown = 30 * time.Second

	// stopGrace is how long a helper gets to exit after stdin closes.
	stopGrace = 2 * time.Second
)

var (
	// ErrScriptNotFound is returned when the MediaPipe helper script is missing.
	ErrScriptNotFound = errors.New(ScriptName + " not found")

	// ErrTimeout is returned when the helper does not answer a frame in time.
	ErrTimeout = errors.New("hand tracker timed out")
)

// MediaPipeTracker runs MediaPipe Hands in a Python helper process. Frames
// are written to its stdin as a 4-byte big-endian length followed by JPEG
// bytes; it answers each frame with one JSON line.
type MediaPipeTracker struct {
	config     Config
	scriptPath string
	command    func() *exec.Cmd
	log        *slog.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	idleTimer *time.Timer
}

// NewMediaPipeTracker locates the helper script. The helper process starts
// lazily on the first Track call.
func NewMediaPipeTracker(config Config, logger *slog.Logger) (*MediaPipeTracker, error) {
	scriptPath := findFile(filepath.Join("scripts", ScriptName))
	if scriptPath == "" {
		return nil, ErrScriptNotFound
	}
	t := newProcessTracker(config, nil, logger)
	t.scriptPath = scriptPath
	t.command = t.pythonCommand
	return t, nil
}

// newProcessTracker builds a tracker around an arbitrary helper command.
func newProcessTracker(config Config, command func() *exec.Cmd, logger *slog.Logger) *MediaPipeTracker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = DefaultResponseTimeout
	}
	return &MediaPipeTracker{
		config:  config,
		command: command,
		log:     logger.With("component", "tracker.mediapipe"),
	}
}

// Track sends frame to the helper and returns the hands it reports.
func (t *MediaPipeTracker) Track(frame *gocv.Mat) ([]Hand, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return t.exchangeLocked(buf.GetBytes())
}

type exchangeResult struct {
	line []byte
	err  error
}

// exchangeLocked sends one JPEG frame and waits up to ResponseTimeout for
// the reply. On timeout the helper is killed so the next call restarts it.
func (t *MediaPipeTracker) exchangeLocked(data []byte) ([]Hand, error) {
	if err := t.ensureStarted(); err != nil {
		return nil, err
	}

	stdin, stdout := t.stdin, t.stdout
	done := make(chan exchangeResult, 1)
	go func() {
		header := make([]byte, 4)
		binary.BigEndian.PutUint32(header, uint32(len(data)))
		if _, err := stdin.Write(header); err != nil {
			done <- exchangeResult{err: fmt.Errorf("write frame header: %w", err)}
			return
		}
		if _, err := stdin.Write(data); err != nil {
			done <- exchangeResult{err: fmt.Errorf("write frame: %w", err)}
			return
		}
		line, err := stdout.ReadBytes('\n')
		if err != nil {
			err = fmt.Errorf("read tracker response: %w", err)
		}
		done <- exchangeResult{line: line, err: err}
	}()

	timer := time.NewTimer(t.config.ResponseTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			t.stopLocked()
			return nil, res.err
		}
		hands, err := decodeResponse(res.line)
		if err != nil {
			return nil, err
		}
		t.armIdleTimer()
		return hands, nil

	case <-timer.C:
		t.log.Warn("hand tracker not responding, killing it", "timeout", t.config.ResponseTimeout)
		t.killLocked()
		return nil, fmt.Errorf("%w after %s", ErrTimeout, t.config.ResponseTimeout)
	}
}

// Close stops the helper process.
func (t *MediaPipeTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked()
}

func (t *MediaPipeTracker) pythonCommand() *exec.Cmd {
	python := findFile(filepath.Join("venv", "bin", "python"))
	if python == "" {
		python = "python3"
	}

	return exec.Command(python, t.scriptPath,
		"--max-hands", strconv.Itoa(t.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(t.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(t.config.MinTrackingConf, 'f', -1, 64),
	)
}

func (t *MediaPipeTracker) ensureStarted() error {
	if t.cmd != nil {
		return nil
	}

	cmd := t.command()
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start hand tracker: %w", err)
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = bufio.NewReader(stdout)
	t.log.Info("hand tracker started", "cmd", cmd.Path, "script", t.scriptPath, "pid", cmd.Process.Pid)
	return nil
}

func (t *MediaPipeTracker) stopLocked() error {
	if t.cmd == nil {
		return nil
	}
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}

	t.stdin.Close()

	cmd := t.cmd
	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	var err error
	select {
	case err = <-waited:
	case <-time.After(stopGrace):
		t.log.Warn("hand tracker ignored shutdown, killing it", "pid", cmd.Process.Pid)
		cmd.Process.Kill()
		err = <-waited
	}
	t.cmd = nil
	t.stdin = nil
	t.stdout = nil
	t.log.Info("hand tracker stopped")
	return err
}

// killLocked stops an unresponsive helper without waiting for it to drain
// stdin.
func (t *MediaPipeTracker) killLocked() {
	if t.cmd == nil {
		return
	}
	if err := t.cmd.Process.Kill(); err != nil {
		t.log.Warn("kill hand tracker", "error", err)
	}
	t.stopLocked()
}

func (t *MediaPipeTracker) armIdleTimer() {
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(idleShutdown, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.stopLocked()
	})
}

type trackerResponse struct {
	Hands []wireHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

type wireHand struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// decodeResponse parses one response line from the helper.
func decodeResponse(line []byte) ([]Hand, error) {
	var resp trackerResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse tracker response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("hand tracker: %s", resp.Error)
	}

	hands := make([]Hand, 0, len(resp.Hands))
	for _, wh := range resp.Hands {
		if len(wh.Points) <= IndexTip {
			continue
		}
		h := Hand{Handedness: wh.Handedness, Score: wh.Score}
		copy(h.Points[:], wh.Points)
		hands = append(hands, h)
	}
	return hands, nil
}

// findFile looks for rel under the working directory, its parents, the
// executable's directory and ~/.handcalc, returning an absolute path.
func findFile(rel string) string {
	var candidates []string
	candidates = append(candidates, rel, filepath.Join("..", rel), filepath.Join("..", "..", rel))
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".handcalc", rel))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
