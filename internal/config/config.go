// Package config loads devmetrics settings. Sources are applied in order,
// later ones winning: built-in defaults, the global YAML file, the project
// YAML file, then DEVMETRICS_* environment variables. Command-line flags
// are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/otel"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEVMETRICS"

// Store backends.
const (
	BackendFile   = "file"
	BackendLibsql = "libsql"
)

// Config is built once per run and passed to every component.
type Config struct {
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir" envconfig:"DATA_DIR"`
	RepoDir  string `mapstructure:"repo_dir" yaml:"repo_dir" envconfig:"REPO_DIR"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogDir   string `mapstructure:"log_dir" yaml:"log_dir" envconfig:"LOG_DIR"`

	StoreBackend string `mapstructure:"store_backend" yaml:"store_backend" envconfig:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"database_url" yaml:"database_url" envconfig:"DATABASE_URL"`
	AuthToken    string `mapstructure:"auth_token" yaml:"auth_token,omitempty" envconfig:"AUTH_TOKEN"`

	SkillCap   int               `mapstructure:"skill_cap" yaml:"skill_cap" envconfig:"SKILL_CAP"`
	Thresholds domain.Thresholds `mapstructure:"thresholds" yaml:"thresholds" envconfig:"THRESHOLDS"`

	// BlockedCommands are regular expressions; a matching Bash command is
	// blocked by the PreToolUse hook.
	BlockedCommands []string `mapstructure:"blocked_commands" yaml:"blocked_commands" envconfig:"BLOCKED_COMMANDS"`
	// Patterns are keywords; a prompt mentioning one counts as a match.
	Patterns []string `mapstructure:"patterns" yaml:"patterns" envconfig:"PATTERNS"`

	Otel otel.Config `mapstructure:"otel" yaml:"otel" envconfig:"OTEL"`
}

// Default returns the built-in settings.
func Default() (*Config, error) {
	dataDir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:      dataDir,
		RepoDir:      ".",
		LogLevel:     "info",
		StoreBackend: BackendFile,
		SkillCap:     domain.DefaultSkillCap,
		Thresholds:   domain.DefaultThresholds(),
		BlockedCommands: []string{
			`rm\s+-rf\s+/(\s|$)`,
			`git\s+push\s+.*--force`,
		},
	}, nil
}

// GlobalConfigPath is the per-user config file.
func GlobalConfigPath() (string, error) {
	dir, err := util.GetXDGConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ProjectConfigPath is the config file of the current project.
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".devmetrics", "config.yaml")
	}
	return filepath.Join(cwd, ".devmetrics", "config.yaml")
}

// Load builds the configuration. When explicit is set only that file is
// read, and it must exist; otherwise the global and project files are
// read when present.
func Load(explicit string) (*Config, error) {
	var paths []string
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", explicit, err)
		}
		paths = []string{explicit}
	} else {
		if global, err := GlobalConfigPath(); err == nil {
			paths = append(paths, global)
		}
		paths = append(paths, ProjectConfigPath())
	}
	return LoadFiles(paths...)
}

// LoadFiles applies defaults, each existing file in order, then the
// environment, and validates the result.
func LoadFiles(paths ...string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := loadFile(path, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogDir = expandHome(cfg.LogDir)
	cfg.RepoDir = expandHome(cfg.RepoDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	// Lists from a file replace the defaults instead of being merged by index.
	if v.IsSet("blocked_commands") {
		cfg.BlockedCommands = nil
	}
	if v.IsSet("patterns") {
		cfg.Patterns = nil
	}
	return v.Unmarshal(cfg)
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch c.StoreBackend {
	case BackendFile:
	case BackendLibsql:
		if c.DatabaseURL == "" {
			return fmt.Errorf("store_backend %q requires database_url", BackendLibsql)
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want %q or %q)", c.StoreBackend, BackendFile, BackendLibsql)
	}
	if c.SkillCap < 1 {
		return fmt.Errorf("skill_cap must be at least 1")
	}
	th := c.Thresholds
	if th.MinAvgCommits < 0 || th.MinAvgCoverage < 0 || th.MaxAvgTokens < 0 || th.MinDistinctSkills < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}
	for _, pattern := range c.BlockedCommands {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid blocked_commands pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// DailyDir holds one JSON file per collected day.
func (c *Config) DailyDir() string {
	return filepath.Join(c.DataDir, "daily")
}

// EventLogDir holds the JSONL event logs written by the hook command.
func (c *Config) EventLogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ReportDir holds generated weekly reports.
func (c *Config) ReportDir() string {
	return filepath.Join(c.DataDir, "reports")
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.AuthToken != "" {
		out.AuthToken = "********"
	}
	return &out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
