// Package main is a voice plugin that records a short clip with sox and
// transcribes it with the whisper.cpp command line tool.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultSeconds  = 5
	defaultBinary   = "whisper-cli"
	defaultRecorder = "rec"
	defaultLanguage = "en"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Model    string `json:"model"`
	Binary   string `json:"binary"`
	Recorder string `json:"recorder"`
}

type params struct {
	Seconds  int    `json:"seconds"`
	Language string `json:"language"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "transcribe" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}
	var p params
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid params: %v", err))
			return
		}
	}

	text, err := transcribe(withDefaults(cfg), p)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	data, _ := json.Marshal(map[string]string{"text": text})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

func withDefaults(cfg config) config {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Recorder == "" {
		cfg.Recorder = defaultRecorder
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("WHISPER_MODEL")
	}
	return cfg
}

func transcribe(cfg config, p params) (string, error) {
	if cfg.Model == "" {
		return "", errors.New("no whisper model configured")
	}

	seconds := p.Seconds
	if seconds <= 0 {
		seconds = defaultSeconds
	}
	language := p.Language
	if language == "" {
		language = defaultLanguage
	}
	// whisper.cpp wants a bare language code.
	language, _, _ = strings.Cut(language, "-")

	dir, err := os.MkdirTemp("", "voice-whisper")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	wav := filepath.Join(dir, "clip.wav")

	// 16 kHz mono 16-bit is what whisper.cpp expects.
	rec := exec.Command(cfg.Recorder, "-q", "-r", "16000", "-c", "1", "-b", "16", wav,
		"trim", "0", strconv.Itoa(seconds))
	if out, err := rec.CombinedOutput(); err != nil {
		return "", fmt.Errorf("recording failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	var stdout, stderr bytes.Buffer
	whisper := exec.Command(cfg.Binary, "-m", cfg.Model, "-f", wav, "-l", language, "-nt")
	whisper.Stdout = &stdout
	whisper.Stderr = &stderr
	if err := whisper.Run(); err != nil {
		return "", fmt.Errorf("transcription failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := cleanTranscript(stdout.String())
	if text == "" {
		return "", errors.New("no speech detected")
	}
	return text, nil
}

var markerPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// cleanTranscript drops whisper's non-speech markers such as [BLANK_AUDIO]
// and collapses whitespace.
func cleanTranscript(raw string) string {
	return strings.Join(strings.Fields(markerPattern.ReplaceAllString(raw, " ")), " ")
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
