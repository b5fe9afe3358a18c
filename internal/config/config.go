// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the hook configuration: the scheduler's own config
// file (JSON or YAML), CRONICLE_* path overrides and the SPRYKER_* deployment
// variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spryker/cronicle-hook/internal/security"
)

// Config is the effective hook configuration.
type Config struct {
	// UID is the user the scheduler runs as. When set the hook must start
	// as root and drops to this user once the store is open.
	UID       string          `mapstructure:"uid" yaml:"uid,omitempty"`
	Language  string          `mapstructure:"language" yaml:"language"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"Storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
}

// StorageConfig selects and configures the storage engine.
type StorageConfig struct {
	Engine       string           `mapstructure:"engine" yaml:"engine"`
	ListPageSize int              `mapstructure:"list_page_size" yaml:"list_page_size"`
	Debug        bool             `mapstructure:"debug" yaml:"debug,omitempty"`
	Filesystem   FilesystemConfig `mapstructure:"filesystem" yaml:"Filesystem"`
	SQLite       SQLiteConfig     `mapstructure:"sqlite" yaml:"SQLite"`
	SQL          SQLConfig        `mapstructure:"sql" yaml:"SQL,omitempty"`
	S3           S3Config         `mapstructure:"s3" yaml:"S3,omitempty"`
}

type FilesystemConfig struct {
	BaseDir       string `mapstructure:"base_dir" yaml:"base_dir"`
	KeyNamespaces bool   `mapstructure:"key_namespaces" yaml:"key_namespaces"`
	RawFilePaths  bool   `mapstructure:"raw_file_paths" yaml:"raw_file_paths,omitempty"`
}

type SQLiteConfig struct {
	BaseDir  string `mapstructure:"base_dir" yaml:"base_dir"`
	Filename string `mapstructure:"filename" yaml:"filename"`
}

// SQLConfig is used by the "SQL" engine. Type is one of sqlite, postgres, mysql.
// MySQL DSNs need parseTime=true.
type SQLConfig struct {
	Type string `mapstructure:"type" yaml:"type,omitempty"`
	DSN  string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

type S3Config struct {
	Region         string `mapstructure:"region" yaml:"region,omitempty"`
	Bucket         string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	KeyPrefix      string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`
}

// SchedulerConfig describes the deployment the hook provisions for.
type SchedulerConfig struct {
	// Name is the current scheduler; it doubles as API key and server group id.
	Name          string          `mapstructure:"name" yaml:"name"`
	EnabledStores []string        `mapstructure:"enabled_stores" yaml:"enabled_stores"`
	ProjectRoot   string          `mapstructure:"project_root" yaml:"project_root"`
	Console       string          `mapstructure:"console" yaml:"console"`
	ExportTimeout time.Duration   `mapstructure:"export_timeout" yaml:"export_timeout"`
	Username      string          `mapstructure:"username" yaml:"username"`
	Password      security.Secret `mapstructure:"password" yaml:"password"`
	Email         string          `mapstructure:"email" yaml:"email"`
	APIKey        security.Secret `mapstructure:"api_key" yaml:"api_key"`
	APIKeyOwner   string          `mapstructure:"api_key_owner" yaml:"api_key_owner"`
}

// Defaults are applied before any file, env var or flag.
var Defaults = map[string]any{
	"language":                          "en",
	"storage.engine":                    "Filesystem",
	"storage.list_page_size":            50,
	"storage.filesystem.base_dir":       "data",
	"storage.filesystem.key_namespaces": true,
	"storage.sqlite.base_dir":           "data",
	"storage.sqlite.filename":           "storage.sqlite",
	"scheduler.name":                    "cronicle",
	"scheduler.enabled_stores":          []string{},
	"scheduler.project_root":            "/data",
	"scheduler.console":                 "vendor/bin/console",
	"scheduler.export_timeout":          "10m",
	"scheduler.username":                "spryker",
	"scheduler.password":                "secret",
	"scheduler.email":                   "admin@spryker.local",
	"scheduler.api_key_owner":           "admin",
}

// EnvBindings maps config keys to the deployment's environment variables.
var EnvBindings = map[string]string{
	"scheduler.name":           "SPRYKER_CURRENT_SCHEDULER",
	"scheduler.enabled_stores": "SPRYKER_ENABLED_SCHEDULER_STORES",
	"scheduler.project_root":   "SPRYKER_PROJECT_ROOT",
	"scheduler.username":       "SPRYKER_SCHEDULER_USERNAME",
	"scheduler.password":       "SPRYKER_SCHEDULER_PASSWORD",
	"scheduler.email":          "SPRYKER_SCHEDULER_EMAIL",
	"scheduler.api_key":        "SPRYKER_SCHEDULER_API_KEY",
}

// OverridePrefix marks env vars that override arbitrary config paths:
// CRONICLE_Storage__Filesystem__base_dir=/var/data sets storage.filesystem.base_dir.
const OverridePrefix = "CRONICLE_"

// FlagBindings maps config keys to command line flags.
var FlagBindings = map[string]string{
	"storage.debug": "debug",
	"language":      "lang",
}

// Options drive LoadConfig.
type Options struct {
	Defaults       map[string]any
	EnvBindings    map[string]string
	FlagBindings   map[string]string
	OverridePrefix string
	// ConfigFile, when set, is the only file read.
	ConfigFile string
	// SearchPaths are tried for config.{json,yaml,yml} when ConfigFile is empty.
	SearchPaths []string
	// Environ defaults to os.Environ().
	Environ []string
}

// DefaultSearchPaths are tried in order when no --config is given.
var DefaultSearchPaths = []string{"conf", "/opt/cronicle/conf"}

// Load reads the hook Config with the package defaults and bindings.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	cfg, err := LoadConfig[Config](cmd, Options{
		Defaults:       Defaults,
		EnvBindings:    EnvBindings,
		FlagBindings:   FlagBindings,
		OverridePrefix: OverridePrefix,
		ConfigFile:     configFile,
		SearchPaths:    DefaultSearchPaths,
	})
	if err != nil {
		return cfg, err
	}
	cfg.Scheduler.Username = strings.ToLower(cfg.Scheduler.Username)
	return cfg, nil
}

// LoadConfig builds a private viper instance from opts and decodes it into T.
// A missing config file is not an error.
func LoadConfig[T any](cmd *cobra.Command, opts Options) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	// 2. Config file
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	// 3. Environment
	for key, env := range opts.EnvBindings {
		if err := v.BindEnv(key, env); err != nil {
			return c, err
		}
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	if opts.OverridePrefix != "" {
		applyEnvOverrides(v, opts.OverridePrefix, environ)
	}

	// 4. Flags that were set explicitly
	if cmd != nil {
		if err := bindChangedFlags(v, cmd.Flags(), opts.FlagBindings); err != nil {
			return c, err
		}
	}

	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		StringToSliceHook(),
		StringToSecretHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&c, hooks); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// bindChangedFlags binds the flags of bindings that were set on the command
// line. Unset flags keep their defaults out of the way of files and env vars.
func bindChangedFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides sets every PREFIX<path> variable on v. Path segments are
// separated by a double underscore; values "true", "false" and numbers are
// converted to their types.
func applyEnvOverrides(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		p := strings.Trim(strings.TrimSpace(strings.TrimPrefix(name, prefix)), "_")
		if p == "" {
			continue
		}
		v.Set(strings.ReplaceAll(p, "__", "."), typedEnvValue(value))
	}
}

func typedEnvValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// StringToSliceHook decodes a string into a []string. JSON arrays are parsed
// as such, anything else is split on commas.
func StringToSliceHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return []string{}, nil
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, fmt.Errorf("invalid JSON list %q: %w", s, err)
			}
			return out, nil
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}

// StringToSecretHook decodes strings into security.Secret.
func StringToSecretHook() mapstructure.DecodeHookFuncType {
	secretType := reflect.TypeOf(security.Secret{})
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != secretType {
			return data, nil
		}
		return security.FromString(data.(string)), nil
	}
}

// WriteConfigFile marshals c as YAML to path, creating parent directories.
// Secrets are written redacted.
func WriteConfigFile[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}

// Marshal renders c as YAML.
func Marshal[T any](c *T) ([]byte, error) {
	return yaml.Marshal(c)
}
