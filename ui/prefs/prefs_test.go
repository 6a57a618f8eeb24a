package prefs

import (
	"path/filepath"
	"testing"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")

	p := loadFrom(path)
	p.SetFloat(KeyBrushDiameter, 25)
	p.SetString(KeyLastOpenDir, "/tmp/photos")
	p.SetBool("compare_mode", true)
	if err := p.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	q := loadFrom(path)
	if got := q.FloatWithFallback(KeyBrushDiameter, 40); got != 25 {
		t.Errorf("brush diameter = %v, want 25", got)
	}
	if got := q.String(KeyLastOpenDir); got != "/tmp/photos" {
		t.Errorf("last open dir = %q, want /tmp/photos", got)
	}
	if !q.Bool("compare_mode", false) {
		t.Error("compare_mode = false, want true")
	}
}

func TestMissingFileUsesFallbacks(t *testing.T) {
	p := loadFrom(filepath.Join(t.TempDir(), "nope", "preferences.json"))
	if got := p.FloatWithFallback(KeyBrushDiameter, 40); got != 40 {
		t.Errorf("fallback float = %v, want 40", got)
	}
	if got := p.String(KeyLastSaveDir); got != "" {
		t.Errorf("missing string = %q, want empty", got)
	}
	if p.Bool("compare_mode", false) {
		t.Error("missing bool should use fallback false")
	}
}
