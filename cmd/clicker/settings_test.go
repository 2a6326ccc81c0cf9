package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUISettingsRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	saved := uiSettings{CPS: 37, Button: "Right", Toggle: "KEY_F8"}
	if err := saveUISettings(saved); err != nil {
		t.Fatalf("saveUISettings: %v", err)
	}

	loaded, err := loadUISettings()
	if err != nil {
		t.Fatalf("loadUISettings: %v", err)
	}
	if loaded == nil {
		t.Fatal("loadUISettings returned nil after save")
	}
	if *loaded != saved {
		t.Fatalf("loaded = %+v, want %+v", *loaded, saved)
	}
}

func TestLoadUISettingsMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loaded, err := loadUISettings()
	if err != nil {
		t.Fatalf("loadUISettings: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil settings for missing file, got %+v", loaded)
	}
}

func TestLoadUISettingsCorruptFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "auto-clicker")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := loadUISettings(); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}

func TestSaveUISettingsLeavesNoTempFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := saveUISettings(uiSettings{CPS: 10, Button: "Left", Toggle: "KEY_F6"}); err != nil {
		t.Fatalf("saveUISettings: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(configHome, "auto-clicker"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "settings.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("settings dir = %v, want only settings.json", names)
	}
}
