package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root string, m Manifest) {
	t.Helper()

	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{
		Name:        "voice-whisper",
		Version:     "1.0.0",
		Description: "whisper.cpp transcription",
		Executable:  "voice-whisper",
		Actions:     []string{ActionTranscribe},
	})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	p := plugins[0]
	if p.Manifest.Name != "voice-whisper" || p.Manifest.Version != "1.0.0" {
		t.Errorf("unexpected manifest %+v", p.Manifest)
	}
	if want := filepath.Join(root, "voice-whisper"); p.Path != want {
		t.Errorf("Path = %q, want %q", p.Path, want)
	}
	if want := filepath.Join(root, "voice-whisper", "voice-whisper"); p.Executable != want {
		t.Errorf("Executable = %q, want %q", p.Executable, want)
	}
	if !p.Supports(ActionTranscribe) {
		t.Error("expected plugin to support transcribe")
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "good", Executable: "good", Actions: []string{ActionTranscribe}})
	writeManifest(t, root, Manifest{Name: "no-exec"})

	badDir := filepath.Join(root, "bad-json")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, ManifestFile), []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "no-manifest"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray-file"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		t.Errorf("expected only the valid plugin, got %d plugins", len(plugins))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "first", Executable: "first"})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	if len(manager.List()) != 1 {
		t.Fatal("expected the plugin to be discovered")
	}
	if err := os.RemoveAll(filepath.Join(root, "first")); err != nil {
		t.Fatal(err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	if len(manager.List()) != 0 {
		t.Error("removed plugin should disappear on rescan")
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "voice-a", Executable: "a"})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	t.Run("found", func(t *testing.T) {
		p, err := manager.Get("voice-a")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if p.Manifest.Name != "voice-a" {
			t.Errorf("Name = %q", p.Manifest.Name)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
			t.Errorf("expected ErrPluginNotFound, got %v", err)
		}
	})
}

func TestManager_FindByAction(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "zeta", Executable: "z", Actions: []string{ActionTranscribe}})
	writeManifest(t, root, Manifest{Name: "alpha", Executable: "a", Actions: []string{ActionTranscribe}})
	writeManifest(t, root, Manifest{Name: "beta", Executable: "b", Actions: []string{"speak"}})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	p, err := manager.FindByAction(ActionTranscribe)
	if err != nil {
		t.Fatalf("FindByAction() error = %v", err)
	}
	if p.Manifest.Name != "alpha" {
		t.Errorf("expected first plugin by name, got %q", p.Manifest.Name)
	}

	if _, err := manager.FindByAction("translate"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	if got := NewManager("/tmp/plugins", nil).PluginDir(); got != "/tmp/plugins" {
		t.Errorf("PluginDir() = %q", got)
	}
}
