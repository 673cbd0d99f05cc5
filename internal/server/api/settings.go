package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handcalc/internal/config"
	"github.com/ayusman/handcalc/internal/store"
)

// SettingsHandler serves the persisted runtime settings. Stored values
// override the file and environment configuration on the next start.
type SettingsHandler struct {
	store *store.Store
	base  config.Config
}

// NewSettingsHandler creates a SettingsHandler over s. base is the
// configuration the stored overrides are applied to.
func NewSettingsHandler(s *store.Store, base config.Config) *SettingsHandler {
	return &SettingsHandler{store: s, base: base}
}

type settingsResponse struct {
	Settings  map[string]string `json:"settings"`
	Overrides map[string]string `json:"overrides"`
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key := strings.TrimPrefix(path, "/")

	if key == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPut:
			h.update(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.delete(w, key)
}

// effective returns the base config with the stored overrides applied.
func (h *SettingsHandler) effective() (config.Config, map[string]string, error) {
	overrides, err := h.store.Settings().All()
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg := h.base
	if err := cfg.ApplySettings(overrides); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, overrides, nil
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	cfg, overrides, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: cfg.Settings(), Overrides: overrides})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	cfg, _, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if err := cfg.ApplySettings(values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Settings().SetMany(values); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	h.list(w)
}

func (h *SettingsHandler) delete(w http.ResponseWriter, key string) {
	if !config.IsSetting(key) {
		writeError(w, http.StatusBadRequest, "Unknown setting")
		return
	}
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not overridden")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
