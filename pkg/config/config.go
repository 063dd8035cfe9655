package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General  GeneralConfig  `toml:"general"`
	Skills   SkillsConfig   `toml:"skills"`
	Matching MatchingConfig `toml:"matching"`
	Learning LearningConfig `toml:"learning"`
	History  HistoryConfig  `toml:"history"`
	Safety   SafetyConfig   `toml:"safety"`
	Logging  LoggingConfig  `toml:"logging"`
}

type GeneralConfig struct {
	// DataDir is the root for all persistent state.
	DataDir string `toml:"data_dir"`
	// ProjectDir is the directory analyzed for project context;
	// defaults to the current working directory.
	ProjectDir string `toml:"project_dir"`
}

type SkillsConfig struct {
	// Dir holds user-defined skill definitions, one subdirectory per
	// skill with a SKILL.md inside.
	Dir string `toml:"dir"`
	// UseBuiltin loads the catalog embedded in the binary before the
	// user directory; user skills with the same name win.
	UseBuiltin bool `toml:"use_builtin"`
}

type MatchingConfig struct {
	// MaxSuggestions bounds the suggestion list rendered to the user.
	MaxSuggestions int `toml:"max_suggestions"`
}

type LearningConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type SafetyConfig struct {
	// MinFreeDiskMB is the floor for the file-modification disk check.
	MinFreeDiskMB int `toml:"min_free_disk_mb"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".autoskill")

	return &Config{
		General: GeneralConfig{
			DataDir:    dataDir,
			ProjectDir: "",
		},
		Skills: SkillsConfig{
			Dir:        filepath.Join(dataDir, "skills"),
			UseBuiltin: true,
		},
		Matching: MatchingConfig{
			MaxSuggestions: 3,
		},
		Learning: LearningConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "learning.json"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "history.db"),
		},
		Safety: SafetyConfig{
			MinFreeDiskMB: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

func LoadFromFile(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	return cfg, nil
}

func (c *Config) postProcess() error {
	var err error

	if c.General.DataDir, err = expandPath(c.General.DataDir); err != nil {
		return fmt.Errorf("expand general.data_dir: %w", err)
	}
	if c.General.ProjectDir, err = expandPath(c.General.ProjectDir); err != nil {
		return fmt.Errorf("expand general.project_dir: %w", err)
	}
	if c.Skills.Dir, err = expandPath(c.Skills.Dir); err != nil {
		return fmt.Errorf("expand skills.dir: %w", err)
	}
	if c.Learning.Path, err = expandPath(c.Learning.Path); err != nil {
		return fmt.Errorf("expand learning.path: %w", err)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("expand history.path: %w", err)
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("expand logging.file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Matching.MaxSuggestions < 1 {
		return fmt.Errorf("max_suggestions must be at least 1, got %d", c.Matching.MaxSuggestions)
	}

	if c.Safety.MinFreeDiskMB < 0 {
		return fmt.Errorf("min_free_disk_mb cannot be negative, got %d", c.Safety.MinFreeDiskMB)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid logging format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}

func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUTOSKILL_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("AUTOSKILL_PROJECT_DIR"); v != "" {
		cfg.General.ProjectDir = v
	}
	if v := os.Getenv("AUTOSKILL_SKILLS_DIR"); v != "" {
		cfg.Skills.Dir = v
	}
	if v := os.Getenv("AUTOSKILL_LEARNING_PATH"); v != "" {
		cfg.Learning.Path = v
	}
	if v := os.Getenv("AUTOSKILL_LEARNING_ENABLED"); v != "" {
		cfg.Learning.Enabled = isTruthy(v)
	}
	if v := os.Getenv("AUTOSKILL_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("AUTOSKILL_HISTORY_ENABLED"); v != "" {
		cfg.History.Enabled = isTruthy(v)
	}
	if v := os.Getenv("AUTOSKILL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUTOSKILL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func isTruthy(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

func Load(configPath string) (*Config, error) {
	var cfg *Config
	var err error

	if configPath != "" {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
