/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	ProjectDir     string `yaml:"project_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// StorageConfig controls the local search index and the optional Postgres mirror.
type StorageConfig struct {
	IndexEnabled bool   `yaml:"index_enabled"`
	PostgresDSN  string `yaml:"postgres_dsn" validate:"omitempty,url"`
}

// ExportConfig selects where Save hands the generated export document.
// The S3 secret key is not stored on disk; it lives in the OS keychain.
type ExportConfig struct {
	Sink        string `yaml:"sink" validate:"oneof=none file s3"`
	Dir         string `yaml:"dir"`
	S3Bucket    string `yaml:"s3_bucket" validate:"required_if=Sink s3"`
	S3Region    string `yaml:"s3_region" validate:"required_if=Sink s3"`
	S3Endpoint  string `yaml:"s3_endpoint" validate:"omitempty,url"`
	S3PathStyle bool   `yaml:"s3_path_style"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3KeyPrefix string `yaml:"s3_key_prefix"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version" validate:"min=1"`
	General       GeneralConfig `yaml:"general"`
	Logging       LoggingConfig `yaml:"logging"`
	Storage       StorageConfig `yaml:"storage"`
	Export        ExportConfig  `yaml:"export"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Storage:       StorageConfig{IndexEnabled: true},
		Export:        ExportConfig{Sink: "file"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "BF_CONFIG_FILE"
	EnvTelemetryOptIn = "BF_TELEMETRY_OPT_IN"
	EnvProjectDir     = "BF_PROJECT_DIR"
	EnvLogLevel       = "BF_LOG_LEVEL"
	EnvLogFormat      = "BF_LOG_FORMAT"
	EnvLogSource      = "BF_LOG_SOURCE"
	EnvLogFile        = "BF_LOG_FILE"
	EnvIndexEnabled   = "BF_INDEX_ENABLED"
	EnvPostgresDSN    = "BF_PG_DSN"
	EnvExportSink     = "BF_EXPORT_SINK"
	EnvExportDir      = "BF_EXPORT_DIR"
	EnvS3Bucket       = "BF_S3_BUCKET"
	EnvS3Region       = "BF_S3_REGION"
	EnvS3Endpoint     = "BF_S3_ENDPOINT"
	EnvS3PathStyle    = "BF_S3_PATH_STYLE"
	EnvS3AccessKey    = "BF_S3_ACCESS_KEY"
	EnvS3SecretKey    = "BF_S3_SECRET_KEY"
)

// Service/keys for OS keyring.
const (
	keyringService = "BlockFactory"
	keyringSecret  = "s3_secret_key"
)

// SecretStore abstracts the keyring so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// secretStore is the package-level store; tests swap it.
var secretStore SecretStore = osKeyring{}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. BF_CONFIG_FILE wins when set.
func ConfigPath() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigFile)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "BlockFactory")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "BlockFactory")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "blockfactory")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "blockfactory")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, merges environment overrides
// and validates the result. The S3 secret is returned separately: BF_S3_SECRET_KEY first, then
// the keyring. A malformed file is reported but the defaults plus env are still returned.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	secret := strings.TrimSpace(os.Getenv(EnvS3SecretKey))
	if secret == "" {
		secret, _ = secretStore.Get(keyringService, keyringSecret)
	}
	if fileErr != nil {
		return cfg, secret, fileErr
	}
	return cfg, secret, Validate(cfg)
}

// Save validates and writes the user config YAML and persists the secret into the OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if secret != "" {
		if err := secretStore.Set(keyringService, keyringSecret, secret); err != nil {
			return fmt.Errorf("store secret: %w", err)
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks the struct-tag constraints of cfg.
func Validate(cfg AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if s := strings.TrimSpace(src.General.ProjectDir); s != "" {
		dst.General.ProjectDir = s
	}
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
	dst.Storage.IndexEnabled = src.Storage.IndexEnabled
	if s := strings.TrimSpace(src.Storage.PostgresDSN); s != "" {
		dst.Storage.PostgresDSN = s
	}
	if s := strings.TrimSpace(src.Export.Sink); s != "" {
		dst.Export.Sink = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Export.Dir); s != "" {
		dst.Export.Dir = s
	}
	if s := strings.TrimSpace(src.Export.S3Bucket); s != "" {
		dst.Export.S3Bucket = s
	}
	if s := strings.TrimSpace(src.Export.S3Region); s != "" {
		dst.Export.S3Region = s
	}
	if s := strings.TrimSpace(src.Export.S3Endpoint); s != "" {
		dst.Export.S3Endpoint = s
	}
	dst.Export.S3PathStyle = src.Export.S3PathStyle
	if s := strings.TrimSpace(src.Export.S3AccessKey); s != "" {
		dst.Export.S3AccessKey = s
	}
	if s := strings.TrimSpace(src.Export.S3KeyPrefix); s != "" {
		dst.Export.S3KeyPrefix = s
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	str := func(env string, dst *string, lower bool) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			if lower {
				v = strings.ToLower(v)
			}
			*dst = v
		}
	}
	boolean := func(env string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = envBool(v)
		}
	}
	boolean(EnvTelemetryOptIn, &cfg.General.TelemetryOptIn)
	str(EnvProjectDir, &cfg.General.ProjectDir, false)
	str(EnvLogLevel, &cfg.Logging.Level, true)
	str(EnvLogFormat, &cfg.Logging.Format, true)
	boolean(EnvLogSource, &cfg.Logging.Source)
	str(EnvLogFile, &cfg.Logging.File, false)
	boolean(EnvIndexEnabled, &cfg.Storage.IndexEnabled)
	str(EnvPostgresDSN, &cfg.Storage.PostgresDSN, false)
	str(EnvExportSink, &cfg.Export.Sink, true)
	str(EnvExportDir, &cfg.Export.Dir, false)
	str(EnvS3Bucket, &cfg.Export.S3Bucket, false)
	str(EnvS3Region, &cfg.Export.S3Region, false)
	str(EnvS3Endpoint, &cfg.Export.S3Endpoint, false)
	boolean(EnvS3PathStyle, &cfg.Export.S3PathStyle)
	str(EnvS3AccessKey, &cfg.Export.S3AccessKey, false)
}

var envKeys = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.project_dir":      EnvProjectDir,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
	"storage.index_enabled":    EnvIndexEnabled,
	"storage.postgres_dsn":     EnvPostgresDSN,
	"export.sink":              EnvExportSink,
	"export.dir":               EnvExportDir,
	"export.s3_bucket":         EnvS3Bucket,
	"export.s3_region":         EnvS3Region,
	"export.s3_endpoint":       EnvS3Endpoint,
	"export.s3_path_style":     EnvS3PathStyle,
	"export.s3_access_key":     EnvS3AccessKey,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
