package web

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSafePath(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "shot.png", false},
		{"nested", "runs/2026/shot.png", false},
		{"base itself", ".", false},
		{"dotdot", "../escape.png", true},
		{"nested dotdot", "runs/../../escape.png", true},
		{"absolute outside", "/etc/passwd", true},
		{"absolute inside", filepath.Join(base, "shot.png"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafePath(base, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SafePath(%q) = %q, want error", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SafePath(%q): %v", tt.path, err)
			}
			if !strings.HasPrefix(got, base) {
				t.Errorf("resolved %q escapes base %q", got, base)
			}
		})
	}
}
