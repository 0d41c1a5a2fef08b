package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Display.NumberFormat != "hexadecimal" {
		t.Errorf("default number format = %s", s.Display.NumberFormat)
	}
	if s.Debugger.HistorySize != 100 {
		t.Errorf("default history size = %d", s.Debugger.HistorySize)
	}
	if s.Execution.MaxSteps != 0 {
		t.Errorf("default max steps = %d", s.Execution.MaxSteps)
	}
}

func TestLoadSettingsFromMissingFile(t *testing.T) {
	s := LoadSettingsFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if s.Display.NumberFormat != "hexadecimal" {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := "[display]\nnumber_format = \"binary\"\n\n[execution]\nmax_steps = 5000\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s := LoadSettingsFrom(path)
	if s.Display.NumberFormat != "binary" {
		t.Errorf("number format = %s, want binary", s.Display.NumberFormat)
	}
	if s.Execution.MaxSteps != 5000 {
		t.Errorf("max steps = %d, want 5000", s.Execution.MaxSteps)
	}
	// untouched sections keep their defaults
	if s.Debugger.HistorySize != 100 {
		t.Errorf("history size = %d, want 100", s.Debugger.HistorySize)
	}
}

func TestLoadSettingsFromBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}
	s := LoadSettingsFrom(path)
	if s.Display.NumberFormat != "hexadecimal" {
		t.Error("unparseable settings should fall back to defaults")
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	m, errs := LoadManifest(dir)
	if errs != nil {
		t.Fatalf("missing manifest must default: %v", errs)
	}
	if len(m.Files) != 1 || m.Files[0] != "main.s" || m.Delay != 0 {
		t.Errorf("defaults = %v delay %d", m.Files, m.Delay)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	manifest := `{"files": ["boot.s", "main.s"], "delay": 250}`
	if err := os.WriteFile(dir+"config.json", []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}

	m, errs := LoadManifest(dir)
	if errs != nil {
		t.Fatal(errs)
	}
	if len(m.Files) != 2 || m.Files[0] != "boot.s" || m.Delay != 250 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	if err := os.WriteFile(dir+"config.json", []byte(`{"files": }`), 0600); err != nil {
		t.Fatal(err)
	}
	_, errs := LoadManifest(dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "Configuration Error in \"config.json\"") {
		t.Fatalf("expected configuration error, got %v", errs)
	}
}

func TestLoadManifestMissingFiles(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	if err := os.WriteFile(dir+"config.json", []byte(`{"delay": 10}`), 0600); err != nil {
		t.Fatal(err)
	}
	_, errs := LoadManifest(dir)
	if len(errs) != 1 {
		t.Fatalf("manifest without files must error, got %v", errs)
	}
}

func TestReadContents(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	if err := os.WriteFile(dir+"main.s", []byte("mov r0, #1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	m, _ := LoadManifest(dir)
	files, errs := m.ReadContents()
	if errs != nil {
		t.Fatal(errs)
	}
	if len(files) != 1 || files[0].Name != "main.s" || !strings.Contains(files[0].Content, "mov") {
		t.Errorf("files = %+v", files)
	}
}

func TestReadContentsMissingFile(t *testing.T) {
	dir := t.TempDir() + string(os.PathSeparator)
	m, _ := LoadManifest(dir) // defaults to main.s, which does not exist
	_, errs := m.ReadContents()
	if len(errs) != 1 || !strings.Contains(errs[0], `"main.s"`) {
		t.Fatalf("expected missing-file error, got %v", errs)
	}
}
