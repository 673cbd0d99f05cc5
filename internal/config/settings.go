package config

import (
	"fmt"
	"sort"
	"strconv"
)

// setting binds a persisted key to a Config field.
type setting struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intSetting(field func(c *Config) *int) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func floatSetting(field func(c *Config) *float64) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
	}
}

func boolSetting(field func(c *Config) *bool) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func stringSetting(field func(c *Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

// settings are the keys that may be changed at runtime and persisted in
// the store. Paths and the listen address stay file/env only.
var settings = map[string]setting{
	"camera_id":        intSetting(func(c *Config) *int { return &c.CameraID }),
	"mirror":           boolSetting(func(c *Config) *bool { return &c.Mirror }),
	"debounce_ms":      intSetting(func(c *Config) *int { return &c.DebounceMs }),
	"idle_fps":         intSetting(func(c *Config) *int { return &c.IdleFPS }),
	"active_fps":       intSetting(func(c *Config) *int { return &c.ActiveFPS }),
	"motion_threshold": floatSetting(func(c *Config) *float64 { return &c.MotionThreshold }),
	"min_confidence":   floatSetting(func(c *Config) *float64 { return &c.MinConfidence }),
	"voice_plugin":     stringSetting(func(c *Config) *string { return &c.VoicePlugin }),
	"voice_timeout_ms": intSetting(func(c *Config) *int { return &c.VoiceTimeoutMs }),
	"log_level":        stringSetting(func(c *Config) *string { return &c.LogLevel }),
}

// SettingKeys returns the runtime-settable keys in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSetting reports whether key may be persisted.
func IsSetting(key string) bool {
	_, ok := settings[key]
	return ok
}

// Settings returns the runtime-settable values of c as strings.
func (c Config) Settings() map[string]string {
	out := make(map[string]string, len(settings))
	for k, s := range settings {
		out[k] = s.get(&c)
	}
	return out
}

// ApplySettings overlays values on c and validates the result. Unknown
// keys and unparsable values are errors; c is unchanged on error.
func (c *Config) ApplySettings(values map[string]string) error {
	next := *c
	for k, v := range values {
		s, ok := settings[k]
		if !ok {
			return fmt.Errorf("%w: unknown setting %q", ErrInvalid, k)
		}
		if err := s.set(&next, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, k, v, err)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
