// Package config loads handcalc configuration from file, environment and
// flags through viper, and from settings persisted in the store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/tracker"
)

// EnvPrefix prefixes every environment override, e.g. HANDCALC_CAMERA_ID.
const EnvPrefix = "HANDCALC"

// FileName is the config file looked up in the config directory.
const FileName = "config.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all handcalc settings. Durations are whole milliseconds.
type Config struct {
	CameraID         int     `mapstructure:"camera_id" yaml:"camera_id"`
	CanvasWidth      int     `mapstructure:"canvas_width" yaml:"canvas_width"`
	CanvasHeight     int     `mapstructure:"canvas_height" yaml:"canvas_height"`
	Mirror           bool    `mapstructure:"mirror" yaml:"mirror"`
	DebounceMs       int     `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	IdleFPS          int     `mapstructure:"idle_fps" yaml:"idle_fps"`
	ActiveFPS        int     `mapstructure:"active_fps" yaml:"active_fps"`
	MotionThreshold  float64 `mapstructure:"motion_threshold" yaml:"motion_threshold"`
	MaxPendingFrames int     `mapstructure:"max_pending_frames" yaml:"max_pending_frames"`
	MaxReadFailures  int     `mapstructure:"max_read_failures" yaml:"max_read_failures"`
	PollIntervalMs   int     `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	MinConfidence    float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	PluginDir        string  `mapstructure:"plugin_dir" yaml:"plugin_dir"`
	VoicePlugin      string  `mapstructure:"voice_plugin" yaml:"voice_plugin"`
	VoiceTimeoutMs   int     `mapstructure:"voice_timeout_ms" yaml:"voice_timeout_ms"`
	DataDir          string  `mapstructure:"data_dir" yaml:"data_dir"`
	ListenAddr       string  `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel         string  `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	home := homeDir()
	return Config{
		CameraID:         0,
		CanvasWidth:      775,
		CanvasHeight:     500,
		Mirror:           true,
		DebounceMs:       2000,
		IdleFPS:          app.IdleFPS,
		ActiveFPS:        app.ActiveFPS,
		MotionThreshold:  1.0,
		MaxPendingFrames: 8,
		MaxReadFailures:  app.MaxReadFailures,
		PollIntervalMs:   100,
		MinConfidence:    0.7,
		PluginDir:        filepath.Join(home, ".handcalc", "plugins"),
		VoicePlugin:      "",
		VoiceTimeoutMs:   20000,
		DataDir:          filepath.Join(home, ".handcalc"),
		ListenAddr:       ":8080",
		LogLevel:         "info",
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Dir returns the default config directory, ~/.config/handcalc.
func Dir() string {
	return filepath.Join(homeDir(), ".config", "handcalc")
}

// SetDefaults registers every key's default on v so that env overrides
// and Unmarshal see all keys.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("camera_id", d.CameraID)
	v.SetDefault("canvas_width", d.CanvasWidth)
	v.SetDefault("canvas_height", d.CanvasHeight)
	v.SetDefault("mirror", d.Mirror)
	v.SetDefault("debounce_ms", d.DebounceMs)
	v.SetDefault("idle_fps", d.IdleFPS)
	v.SetDefault("active_fps", d.ActiveFPS)
	v.SetDefault("motion_threshold", d.MotionThreshold)
	v.SetDefault("max_pending_frames", d.MaxPendingFrames)
	v.SetDefault("max_read_failures", d.MaxReadFailures)
	v.SetDefault("poll_interval_ms", d.PollIntervalMs)
	v.SetDefault("min_confidence", d.MinConfidence)
	v.SetDefault("plugin_dir", d.PluginDir)
	v.SetDefault("voice_plugin", d.VoicePlugin)
	v.SetDefault("voice_timeout_ms", d.VoiceTimeoutMs)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the config file named by v (if any) and unmarshals v into a
// validated Config. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.CameraID >= 0, "camera_id must be >= 0, got %d", c.CameraID)
	check(c.CanvasWidth > 0 && c.CanvasHeight > 0, "canvas must be positive, got %dx%d", c.CanvasWidth, c.CanvasHeight)
	check(c.DebounceMs > 0, "debounce_ms must be > 0, got %d", c.DebounceMs)
	check(c.IdleFPS > 0 && c.IdleFPS <= 120, "idle_fps must be in 1..120, got %d", c.IdleFPS)
	check(c.ActiveFPS > 0 && c.ActiveFPS <= 120, "active_fps must be in 1..120, got %d", c.ActiveFPS)
	check(c.MotionThreshold > 0 && c.MotionThreshold <= 100, "motion_threshold must be in (0,100], got %g", c.MotionThreshold)
	check(c.MaxPendingFrames > 0, "max_pending_frames must be > 0, got %d", c.MaxPendingFrames)
	check(c.MaxReadFailures > 0, "max_read_failures must be > 0, got %d", c.MaxReadFailures)
	check(c.PollIntervalMs > 0, "poll_interval_ms must be > 0, got %d", c.PollIntervalMs)
	check(c.MinConfidence >= 0 && c.MinConfidence <= 1, "min_confidence must be in [0,1], got %g", c.MinConfidence)
	check(c.VoiceTimeoutMs > 0, "voice_timeout_ms must be > 0, got %d", c.VoiceTimeoutMs)
	_, levelErr := ParseLevel(c.LogLevel)
	check(levelErr == nil, "log_level must be debug, info, warn or error, got %q", c.LogLevel)

	return errors.Join(errs...)
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Level returns the configured slog level, info when invalid.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// App converts c to the app's configuration.
func (c Config) App() app.Config {
	return app.Config{
		CameraID:        c.CameraID,
		CanvasWidth:     c.CanvasWidth,
		CanvasHeight:    c.CanvasHeight,
		Mirror:          c.Mirror,
		Debounce:        ms(c.DebounceMs),
		IdleFPS:         c.IdleFPS,
		ActiveFPS:       c.ActiveFPS,
		IdleTimeout:     app.IdleTimeout,
		MotionThreshold: c.MotionThreshold,
		MaxReadFailures: c.MaxReadFailures,
		VoiceTimeout:    ms(c.VoiceTimeoutMs),
	}
}

// Tracker returns the hand tracker configuration.
func (c Config) Tracker() tracker.Config {
	t := tracker.DefaultConfig()
	t.MinConfidence = c.MinConfidence
	t.MinTrackingConf = c.MinConfidence
	return t
}

// PollInterval returns the display poll interval.
func (c Config) PollInterval() time.Duration {
	return ms(c.PollIntervalMs)
}

// DatabasePath returns the settings database path under DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "handcalc.db")
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

const fileHeader = `# handcalc configuration
# Every key can be overridden with an environment variable, e.g.
# HANDCALC_CAMERA_ID=1 or HANDCALC_LOG_LEVEL=debug.

`

// Save writes cfg as YAML to path, creating the directory.
func Save(path string, cfg Config) error {
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), out...), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
