package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayusman/handcalc/internal/plugin"
)

// noSpeech is the error plugins report when the clip held no speech.
const noSpeech = "no speech detected"

// PluginRecognizer transcribes speech through a voice plugin.
type PluginRecognizer struct {
	manager  *plugin.Manager
	executor *plugin.Executor
	name     string
	params   plugin.TranscribeParams
	config   json.RawMessage
	log      *slog.Logger
}

// PluginOption configures a PluginRecognizer.
type PluginOption func(*PluginRecognizer)

// WithPluginName selects a plugin by name instead of the first plugin that
// supports transcription.
func WithPluginName(name string) PluginOption {
	return func(r *PluginRecognizer) { r.name = name }
}

// WithParams sets the transcribe params sent with each request.
func WithParams(p plugin.TranscribeParams) PluginOption {
	return func(r *PluginRecognizer) { r.params = p }
}

// WithPluginConfig sets the plugin config sent with each request.
func WithPluginConfig(cfg json.RawMessage) PluginOption {
	return func(r *PluginRecognizer) { r.config = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PluginOption {
	return func(r *PluginRecognizer) { r.log = l }
}

// NewPluginRecognizer returns a recognizer backed by plugins from manager.
// Plugins are resolved on every call so a rescan takes effect.
func NewPluginRecognizer(manager *plugin.Manager, executor *plugin.Executor, opts ...PluginOption) *PluginRecognizer {
	r := &PluginRecognizer{
		manager:  manager,
		executor: executor,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "voice.plugin")
	return r
}

// Recognize runs the transcribe action and returns the transcript.
func (r *PluginRecognizer) Recognize(ctx context.Context) (string, error) {
	p, err := r.resolve()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRecognizer, err)
	}

	params, err := json.Marshal(r.params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}

	r.log.Debug("listening", "plugin", p.Manifest.Name)
	resp, err := r.executor.Execute(ctx, p, &plugin.Request{
		Action: plugin.ActionTranscribe,
		Config: r.config,
		Params: params,
	})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		if strings.EqualFold(resp.Error, noSpeech) {
			return "", ErrNotUnderstood
		}
		return "", fmt.Errorf("%s: %s", p.Manifest.Name, resp.Error)
	}

	var tr plugin.Transcript
	if err := json.Unmarshal(resp.Data, &tr); err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}
	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return "", ErrNotUnderstood
	}

	r.log.Info("recognized", "plugin", p.Manifest.Name, "transcript", text)
	return text, nil
}

func (r *PluginRecognizer) resolve() (*plugin.Plugin, error) {
	if r.name != "" {
		return r.manager.Get(r.name)
	}
	return r.manager.FindByAction(plugin.ActionTranscribe)
}
