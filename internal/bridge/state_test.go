package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, dir, content string) string {
	t.Helper()
	prefsDir := filepath.Join(dir, "Default")
	if err := os.MkdirAll(prefsDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(prefsDir, "Preferences")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWasUncleanExit(t *testing.T) {
	tests := []struct {
		name  string
		prefs string
		want  bool
	}{
		{"crashed", `{"profile":{"exit_type":"Crashed"}}`, true},
		{"crashed spaced", `{"profile":{"exit_type": "Crashed"}}`, true},
		{"normal", `{"profile":{"exit_type":"Normal"}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writePrefs(t, dir, tt.prefs)
			if got := WasUncleanExit(dir); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWasUncleanExitMissingPrefs(t *testing.T) {
	if WasUncleanExit(t.TempDir()) {
		t.Error("missing Preferences should read as clean")
	}
}

func TestMarkCleanExit(t *testing.T) {
	dir := t.TempDir()
	path := writePrefs(t, dir, `{"profile":{"exit_type":"Crashed","exited_cleanly":false}}`)

	MarkCleanExit(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if WasUncleanExit(dir) {
		t.Errorf("exit_type not patched: %s", data)
	}
}

func TestClearChromeSessions(t *testing.T) {
	dir := t.TempDir()
	sessions := filepath.Join(dir, "Default", "Sessions")
	if err := os.MkdirAll(sessions, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessions, "Session_1"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ClearChromeSessions(dir)

	if _, err := os.Stat(sessions); !os.IsNotExist(err) {
		t.Errorf("sessions dir should be removed, stat err: %v", err)
	}
}
