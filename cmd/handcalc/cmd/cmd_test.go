package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/handcalc/internal/expr"
	"github.com/ayusman/handcalc/internal/voice"
)

// execute runs the root command with a temp home so no user config is read.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HANDCALC_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("HANDCALC_PLUGIN_DIR", filepath.Join(home, "plugins"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestEval(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr error
	}{
		{[]string{"eval", "7+3"}, "7+3 = 10\n", nil},
		{[]string{"eval", "2", "*", "(3", "+", "4)"}, "2*(3+4) = 14\n", nil},
		{[]string{"eval", "5/0"}, "Error: Division by Zero\n", expr.ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestVoice_Transcript(t *testing.T) {
	out, err := execute(t, "voice", "multiply", "six", "by", "seven")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "6 * 7 = 42\n" {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "voice", "six", "plus", "seven")
	if !errors.Is(err, voice.ErrUnrecognizedOperation) {
		t.Errorf("expected ErrUnrecognizedOperation, got %v", err)
	}
	if !strings.HasPrefix(out, "Error: Unrecognized operation in command:") {
		t.Errorf("output = %q", out)
	}
}

func TestVoice_ListPluginsEmpty(t *testing.T) {
	out, err := execute(t, "voice", "--plugins")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "No plugins in") {
		t.Errorf("output = %q", out)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "init", "--config", path)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "Created "+path) {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "canvas_width: 775") {
		t.Errorf("config missing defaults:\n%s", data)
	}

	if _, err := execute(t, "init", "--config", path); err == nil {
		t.Error("expected error for existing config without --force")
	}
	if _, err := execute(t, "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestBrowserURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080/",
		"127.0.0.1:9000": "http://127.0.0.1:9000/",
	}
	for addr, want := range tests {
		if got := browserURL(addr); got != want {
			t.Errorf("browserURL(%q) = %q, want %q", addr, got, want)
		}
	}
}
