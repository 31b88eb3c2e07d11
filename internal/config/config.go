// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/offline"
	"github.com/jeranaias/chatshell/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatshell configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" yaml:"version" json:"version"`
	DefaultModel string `toml:"default_model" yaml:"default_model" json:"default_model"`

	// Models offered in the model selector, in display order
	Models []string `toml:"models" yaml:"models" json:"models"`

	// Response provider configuration
	Provider ProviderConfig `toml:"provider" yaml:"provider" json:"provider"`

	// UI configuration
	UI UIConfig `toml:"ui" yaml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" yaml:"logging" json:"logging"`
}

// ProviderConfig selects and tunes the response provider.
type ProviderConfig struct {
	// Kind is "simulated" or "ollama"
	Kind string `toml:"kind" yaml:"kind" json:"kind"`
	// SimulatedDelayMs is the simulated provider's reply delay
	SimulatedDelayMs int `toml:"simulated_delay_ms" yaml:"simulated_delay_ms" json:"simulated_delay_ms"`
	// RequestTimeoutSecs bounds each completion (0 = no timeout)
	RequestTimeoutSecs int `toml:"request_timeout_secs" yaml:"request_timeout_secs" json:"request_timeout_secs"`
	// RateLimitPerMinute caps completions started per minute (0 = unlimited)
	RateLimitPerMinute int `toml:"rate_limit_per_minute" yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`

	Ollama OllamaConfig `toml:"ollama" yaml:"ollama" json:"ollama"`
}

// OllamaConfig contains local Ollama configuration.
type OllamaConfig struct {
	// URL is the Ollama server base URL
	URL string `toml:"url" yaml:"url" json:"url"`
	// TimeoutSecs bounds a single HTTP request to Ollama
	TimeoutSecs int `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
	// ModelMap maps display model names to Ollama tags, overriding the
	// built-in mapping
	ModelMap map[string]string `toml:"model_map" yaml:"model_map" json:"model_map,omitempty"`
	// OfflineOnly rejects any URL that is not a loopback address
	OfflineOnly bool `toml:"offline_only" yaml:"offline_only" json:"offline_only"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" yaml:"theme" json:"theme"`
	// SidebarOpen shows the conversation sidebar on start
	SidebarOpen bool `toml:"sidebar_open" yaml:"sidebar_open" json:"sidebar_open"`
	// ShowToolsPanel shows the tools panel on start
	ShowToolsPanel bool `toml:"show_tools_panel" yaml:"show_tools_panel" json:"show_tools_panel"`
	// RenderMarkdown renders assistant replies as Markdown
	RenderMarkdown bool `toml:"render_markdown" yaml:"render_markdown" json:"render_markdown"`
	// ExportDir is where exports are written (empty = current directory)
	ExportDir string `toml:"export_dir" yaml:"export_dir" json:"export_dir"`
}

// LoggingConfig contains log output configuration.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error"
	Level string `toml:"level" yaml:"level" json:"level"`
	// File is the log file path; "-" logs to stderr (empty = default)
	File string `toml:"file" yaml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

const (
	// ProviderSimulated answers with a canned reply after a delay.
	ProviderSimulated = "simulated"
	// ProviderOllama talks to a local Ollama server.
	ProviderOllama = "ollama"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	models := make([]string, len(model.DefaultModels))
	copy(models, model.DefaultModels)

	return &Config{
		Version:      "1.0.0",
		DefaultModel: models[0],
		Models:       models,

		Provider: ProviderConfig{
			Kind:               ProviderSimulated,
			SimulatedDelayMs:   1500,
			RequestTimeoutSecs: 0, // no timeout
			RateLimitPerMinute: 0, // unlimited
			Ollama: OllamaConfig{
				URL:         "http://127.0.0.1:11434",
				TimeoutSecs: 120,
				OfflineOnly: false,
			},
		},

		UI: UIConfig{
			Theme:          "dark",
			SidebarOpen:    true,
			ShowToolsPanel: false,
			RenderMarkdown: true,
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatshell configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatshell"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return configPath("config.toml")
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	return configPath("config.yaml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return configPath("config.json")
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// FindConfigFile returns the first config file that exists, in precedence
// order. It returns "" when none exists.
func FindConfigFile() (string, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// DefaultLogFile returns ~/.chatshell/chatshell.log.
func DefaultLogFile() (string, error) {
	return configPath("chatshell.log")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the first config file found, or from
// defaults when there is none. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file with full validation.
// The format is chosen by extension: .json, .yaml/.yml, anything else TOML.
// Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch formatOf(path) {
	case "json":
		err = LoadJSON(cfg, path)
	case "yaml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path in the format its extension
// names. The file is written atomically with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	data, err := Encode(cfg, formatOf(path))
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents a half-written config
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders cfg as "toml", "yaml" or "json".
func Encode(cfg *Config, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
	case "toml":
		fmt.Fprintln(&buf, "# chatshell configuration file")
		fmt.Fprintln(&buf, "")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Models
	// ==========================================================================

	if len(c.Models) == 0 {
		errs = append(errs, ValidationError{
			Field:   "models",
			Message: "at least one model is required",
		})
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, ValidationError{Field: "models", Message: "model names cannot be empty"})
			continue
		}
		if seen[m] {
			errs = append(errs, ValidationError{Field: "models", Message: fmt.Sprintf("duplicate model '%s'", m)})
		}
		seen[m] = true
	}
	if len(c.Models) > 0 && !model.Contains(c.Models, c.DefaultModel) {
		errs = append(errs, ValidationError{
			Field:   "default_model",
			Message: fmt.Sprintf("'%s' is not in models", c.DefaultModel),
		})
	}

	// ==========================================================================
	// Provider
	// ==========================================================================

	switch strings.ToLower(c.Provider.Kind) {
	case ProviderSimulated, ProviderOllama:
	default:
		errs = append(errs, ValidationError{
			Field:   "provider.kind",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: simulated, ollama", c.Provider.Kind),
		})
	}
	if c.Provider.SimulatedDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "provider.simulated_delay_ms", Message: "cannot be negative"})
	}
	if c.Provider.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "provider.request_timeout_secs", Message: "cannot be negative"})
	}
	if c.Provider.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "provider.rate_limit_per_minute", Message: "cannot be negative"})
	}
	if c.Provider.Ollama.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "provider.ollama.timeout_secs", Message: "cannot be negative"})
	}
	if err := offline.ValidateEndpoint(c.Provider.Ollama.URL, c.Provider.Ollama.OfflineOnly); err != nil {
		errs = append(errs, ValidationError{
			Field:   "provider.ollama.url",
			Message: fmt.Sprintf("'%s': %v", c.Provider.Ollama.URL, err),
		})
	}

	// ==========================================================================
	// UI and logging
	// ==========================================================================

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills missing or zero-value fields from Default.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if len(c.Models) == 0 {
		c.Models = defaults.Models
	}
	if c.DefaultModel == "" {
		c.DefaultModel = c.Models[0]
	}

	if c.Provider.Kind == "" {
		c.Provider.Kind = defaults.Provider.Kind
	}
	c.Provider.Kind = strings.ToLower(c.Provider.Kind)
	if c.Provider.SimulatedDelayMs == 0 {
		c.Provider.SimulatedDelayMs = defaults.Provider.SimulatedDelayMs
	}
	if c.Provider.Ollama.URL == "" {
		c.Provider.Ollama.URL = defaults.Provider.Ollama.URL
	}
	if c.Provider.Ollama.TimeoutSecs == 0 {
		c.Provider.Ollama.TimeoutSecs = defaults.Provider.Ollama.TimeoutSecs
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// SimulatedDelay returns the simulated provider's delay.
func (c *Config) SimulatedDelay() time.Duration {
	return time.Duration(c.Provider.SimulatedDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-completion timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Provider.RequestTimeoutSecs) * time.Second
}

// OllamaTimeout returns the HTTP timeout for Ollama requests.
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Provider.Ollama.TimeoutSecs) * time.Second
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATSHELL_MODEL: overrides default_model
//   - CHATSHELL_PROVIDER: overrides provider.kind
//   - CHATSHELL_OLLAMA_URL: overrides provider.ollama.url
//   - CHATSHELL_OFFLINE: set to "1" or "true" to enable provider.ollama.offline_only
//   - CHATSHELL_REQUEST_TIMEOUT: overrides provider.request_timeout_secs
//   - CHATSHELL_RATE_LIMIT: overrides provider.rate_limit_per_minute
//   - CHATSHELL_THEME: overrides ui.theme
//   - CHATSHELL_LOG_LEVEL: overrides logging.level
//   - CHATSHELL_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATSHELL_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("CHATSHELL_PROVIDER"); v != "" {
		c.Provider.Kind = v
	}
	if v := os.Getenv("CHATSHELL_OLLAMA_URL"); v != "" {
		c.Provider.Ollama.URL = v
	}
	if v := os.Getenv("CHATSHELL_OFFLINE"); v != "" {
		c.Provider.Ollama.OfflineOnly = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("CHATSHELL_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Provider.RequestTimeoutSecs = n
		}
	}
	if v := os.Getenv("CHATSHELL_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Provider.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("CHATSHELL_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATSHELL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHATSHELL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation over the TOML key
// names (e.g., "provider.ollama.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type; lists take comma-separated items.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag is name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if strings.EqualFold(tag, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("expected an integer, got %q", s)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", s)
			}
			field.SetBool(b)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(s, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
		return fmt.Errorf("cannot set %s from a string", field.Type())
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || !rv.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
	field.Set(rv)
	return nil
}

// GetAllKeys returns every settable dot-notation key.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, prefix+name+".", keys)
			continue
		}
		*keys = append(*keys, prefix+name)
	}
}

// =============================================================================
// COPY AND DISPLAY
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c

	clone.Models = make([]string, len(c.Models))
	copy(clone.Models, c.Models)

	if c.Provider.Ollama.ModelMap != nil {
		clone.Provider.Ollama.ModelMap = make(map[string]string, len(c.Provider.Ollama.ModelMap))
		for k, v := range c.Provider.Ollama.ModelMap {
			clone.Provider.Ollama.ModelMap[k] = v
		}
	}

	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
