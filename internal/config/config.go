// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults applied when no file or environment value is present.
const (
	DefaultAPIBase   = "http://localhost:8000"
	DefaultLogLevel  = "info"
	DefaultExportDir = "."
)

// Config holds all configuration values for regexr.
type Config struct {
	APIBase        string `mapstructure:"api_base" yaml:"api_base"`
	RequestTimeout string `mapstructure:"request_timeout" yaml:"request_timeout"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
	ExportDir      string `mapstructure:"export_dir" yaml:"export_dir"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		APIBase:        DefaultAPIBase,
		RequestTimeout: "",
		LogLevel:       DefaultLogLevel,
		LogFile:        "",
		ExportDir:      DefaultExportDir,
	}
}

// keys lists every configuration key.
var keys = []string{"api_base", "request_timeout", "log_level", "log_file", "export_dir"}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > ./.env > project config > XDG global config > defaults
// CLI flags are applied by the caller on the returned Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("regexr")

	def := Default()
	v.SetDefault("api_base", def.APIBase)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("export_dir", def.ExportDir)

	// Setup ENV binding with REGEXR_ prefix
	v.SetEnvPrefix("REGEXR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range keys {
		if err := v.BindEnv(key, "REGEXR_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	// REGEXR_ entries from ./.env sit above both files, below the real env
	dotenv, err := readDotEnv(DotEnvPath())
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := v.MergeConfigMap(dotenv); err != nil {
			return nil, fmt.Errorf("merging .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the values can be used to build a client.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base must be an http or https URL, got %q", c.APIBase)
	}
	if u.Host == "" {
		return fmt.Errorf("api_base has no host: %q", c.APIBase)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses request_timeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/regexr/regexr.yml or $XDG_CONFIG_HOME/regexr/regexr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "regexr", "regexr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "regexr", "regexr.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./regexr.yml in the current working directory.
func ProjectPath() string {
	return "regexr.yml"
}

// DotEnvPath returns the dotenv file read by Load: ./.env.
func DotEnvPath() string {
	return ".env"
}

// readDotEnv returns the REGEXR_ settings in the dotenv file at path, keyed
// by config key. A missing file yields nothing.
func readDotEnv(path string) (map[string]any, error) {
	if !fileExists(path) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make(map[string]any)
	for _, key := range keys {
		if val, ok := vars["REGEXR_"+strings.ToUpper(key)]; ok {
			out[key] = val
		}
	}
	return out, nil
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return writeFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeFile(ProjectPath(), cfg)
}

func writeFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
