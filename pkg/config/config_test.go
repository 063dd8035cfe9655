package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.DataDir == "" {
		t.Error("General.DataDir should not be empty")
	}
	if !cfg.Skills.UseBuiltin {
		t.Error("Skills.UseBuiltin should default to true")
	}
	if cfg.Matching.MaxSuggestions != 3 {
		t.Errorf("Matching.MaxSuggestions = %d, want 3", cfg.Matching.MaxSuggestions)
	}
	if !cfg.Learning.Enabled {
		t.Error("Learning.Enabled should default to true")
	}
	if cfg.Safety.MinFreeDiskMB != 100 {
		t.Errorf("Safety.MinFreeDiskMB = %d, want 100", cfg.Safety.MinFreeDiskMB)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.toml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[general]
data_dir = "/custom/data"

[skills]
dir = "/custom/skills"
use_builtin = false

[learning]
path = "/custom/learning.json"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.General.DataDir != "/custom/data" {
		t.Errorf("General.DataDir = %q, want %q", cfg.General.DataDir, "/custom/data")
	}
	if cfg.Skills.Dir != "/custom/skills" {
		t.Errorf("Skills.Dir = %q, want %q", cfg.Skills.Dir, "/custom/skills")
	}
	if cfg.Skills.UseBuiltin {
		t.Error("Skills.UseBuiltin should be false")
	}
	if cfg.Learning.Path != "/custom/learning.json" {
		t.Errorf("Learning.Path = %q, want %q", cfg.Learning.Path, "/custom/learning.json")
	}

	// Unset sections keep defaults.
	if cfg.Matching.MaxSuggestions != 3 {
		t.Errorf("Matching.MaxSuggestions = %d, want 3", cfg.Matching.MaxSuggestions)
	}
}

func TestLoadFromFile_ExpandHome(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	path := writeConfig(t, `
[general]
data_dir = "~/test-data"

[skills]
dir = "~/test-skills"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	expectedDataDir := filepath.Join(homeDir, "test-data")
	if cfg.General.DataDir != expectedDataDir {
		t.Errorf("General.DataDir = %q, want %q", cfg.General.DataDir, expectedDataDir)
	}

	expectedSkillsDir := filepath.Join(homeDir, "test-skills")
	if cfg.Skills.Dir != expectedSkillsDir {
		t.Errorf("Skills.Dir = %q, want %q", cfg.Skills.Dir, expectedSkillsDir)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.toml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_BadTOML(t *testing.T) {
	path := writeConfig(t, `[general`)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg = Default()
	cfg.Matching.MaxSuggestions = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero max_suggestions")
	}

	cfg = Default()
	cfg.Safety.MinFreeDiskMB = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative min_free_disk_mb")
	}

	cfg = Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log level")
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log format")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AUTOSKILL_DATA_DIR", "/env/data")
	t.Setenv("AUTOSKILL_SKILLS_DIR", "/env/skills")
	t.Setenv("AUTOSKILL_LEARNING_ENABLED", "false")
	t.Setenv("AUTOSKILL_LOG_LEVEL", "debug")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.General.DataDir != "/env/data" {
		t.Errorf("General.DataDir = %q, want %q", cfg.General.DataDir, "/env/data")
	}
	if cfg.Skills.Dir != "/env/skills" {
		t.Errorf("Skills.Dir = %q, want %q", cfg.Skills.Dir, "/env/skills")
	}
	if cfg.Learning.Enabled {
		t.Error("Learning.Enabled should be overridden to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matching.MaxSuggestions != 3 {
		t.Errorf("Matching.MaxSuggestions = %d, want 3", cfg.Matching.MaxSuggestions)
	}
}
