package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/prismafix"
)

// FileName is the config file looked up in the working directory.
const FileName = "prismafix.yml"

// EnvPrefix prefixes environment overrides, e.g. PRISMAFIX_SCHEMA.
const EnvPrefix = "PRISMAFIX"

// Config represents prismafix.yml.
type Config struct {
	Schema string       `mapstructure:"schema" yaml:"schema"`
	Backup bool         `mapstructure:"backup" yaml:"backup"`
	Rules  []RuleConfig `mapstructure:"rules" yaml:"rules"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// RuleConfig names a relation field that should not exist. Field may be
// left empty to derive it from Model.
type RuleConfig struct {
	Model string `mapstructure:"model" yaml:"model"`
	Field string `mapstructure:"field" yaml:"field,omitempty"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Schema: prismafix.DefaultSchemaPath,
		Rules: []RuleConfig{
			{Model: "Tenant", Field: "tenants"},
		},
		Watch: WatchConfig{Debounce: 200 * time.Millisecond},
		Log:   LogConfig{Level: "warn"},
	}
}

// Load reads configuration for a run.
//
// When path is set, that file must exist. Otherwise prismafix.yml is looked
// up in dir and a missing file yields the defaults. Environment variables
// prefixed with PRISMAFIX_ override file values (PRISMAFIX_LOG_LEVEL sets
// log.level).
func Load(fsys afero.Fs, dir, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yml"))
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("schema", def.Schema)
	v.SetDefault("backup", def.Backup)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = def.Rules
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Schema == "" {
		return fmt.Errorf("schema path must not be empty")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for i, r := range c.Rules {
		if r.Model == "" {
			return fmt.Errorf("rules[%d]: model is required", i)
		}
	}
	return nil
}

// Save writes cfg as YAML to path. An existing file is only replaced when
// force is set.
func Save(fsys afero.Fs, path string, cfg *Config, force bool) error {
	if !force {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return afero.WriteFile(fsys, path, data, 0644)
}
