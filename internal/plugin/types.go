// Package plugin discovers and runs external helper programs. Voice
// backends are plugins: an executable next to a plugin.json manifest that
// reads one JSON request on stdin and writes one JSON response to stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// ActionTranscribe asks a plugin to record speech and return its text.
const ActionTranscribe = "transcribe"

// ManifestFile is the manifest name looked up in every plugin directory.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TranscribeParams are the params of a transcribe request.
type TranscribeParams struct {
	// Seconds is how long to record.
	Seconds int `json:"seconds,omitempty"`
	// Language is a BCP-47 hint such as "en-US".
	Language string `json:"language,omitempty"`
}

// Transcript is the data of a successful transcribe response.
type Transcript struct {
	Text string `json:"text"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the plugin declares action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
