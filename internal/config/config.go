// Package config loads the yaam.toml app config, its environment overrides and the addon
// declaration files kept in the data directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/remote"
)

// ErrConfigLoad wraps every failure to obtain the host install location or the declarations.
// It is the only condition that aborts a whole run.
var ErrConfigLoad = errors.New("config load failed")

var (
	osReadFile      = os.ReadFile
	osStat          = os.Stat
	osUserConfigDir = os.UserConfigDir
	homedirExpand   = homedir.Expand
)

// Config is the decoded yaam.toml plus environment overrides.
type Config struct {
	Host    HostConfig    `toml:"host"`
	Paths   PathsConfig   `toml:"paths"`
	Network NetworkConfig `toml:"network"`
	Update  UpdateConfig  `toml:"update"`

	// NoNetwork is only set from YAAM_NO_NETWORK.
	NoNetwork bool `toml:"-"`

	variant addon.Variant
}

// HostConfig locates the host application.
type HostConfig struct {
	InstallDir string   `toml:"install_dir"`
	Executable string   `toml:"executable"`
	Variant    string   `toml:"variant"`
	Args       []string `toml:"args"`
}

// PathsConfig holds yaam's own directories.
type PathsConfig struct {
	DataDir string `toml:"data_dir"`
}

// NetworkConfig tunes the HTTP gateway.
type NetworkConfig struct {
	Timeout          Duration `toml:"timeout"`
	DownloadTimeout  Duration `toml:"download_timeout"`
	MaxDownloadBytes int64    `toml:"max_download_bytes"`
	GitHubUser       string   `toml:"github_user"`
	GitHubToken      string   `toml:"github_token"`
}

// UpdateConfig tunes the update pass.
type UpdateConfig struct {
	Preload     *bool `toml:"preload"`
	Concurrency int   `toml:"concurrency"`
}

// Duration is a time.Duration decoded from strings like "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf(messages.ConfigInvalidDurationFmt, raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// envOverrides are the YAAM_* variables that win over yaam.toml.
type envOverrides struct {
	GitHubUser  string `env:"YAAM_GITHUB_USER"`
	GitHubToken string `env:"YAAM_GITHUB_TOKEN"`
	DataDir     string `env:"YAAM_DATA_DIR"`
	Variant     string `env:"YAAM_VARIANT"`
	NoNetwork   bool   `env:"YAAM_NO_NETWORK"`
}

// DefaultVariant is used when neither yaam.toml nor YAAM_VARIANT names one.
const DefaultVariant = addon.VariantD3D11

// DefaultPath returns the default yaam.toml location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := osUserConfigDir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigDefaultDirFmt, err)
	}
	return filepath.Join(dir, "yaam", "yaam.toml"), nil
}

// Load reads path, applies environment overrides and defaults, and validates the host location.
// Every failure wraps ErrConfigLoad.
func Load(path string) (*Config, error) {
	data, err := osReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigMissingFileFmt, ErrConfigLoad, path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates config TOML data. source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigInvalidConfigFmt, ErrConfigLoad, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt+" "+messages.ConfigValidationGuidance, ErrConfigLoad, source, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	if err := cfg.finalize(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	return &cfg, nil
}

// decodeStrict re-decodes the TOML data with strict unknown-field rejection.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf(messages.ConfigInvalidEnvFmt, err)
	}
	if o.GitHubUser != "" {
		c.Network.GitHubUser = o.GitHubUser
	}
	if o.GitHubToken != "" {
		c.Network.GitHubToken = o.GitHubToken
	}
	if o.DataDir != "" {
		c.Paths.DataDir = o.DataDir
	}
	if o.Variant != "" {
		c.Host.Variant = o.Variant
	}
	c.NoNetwork = o.NoNetwork
	return nil
}

func (c *Config) finalize(source string) error {
	c.variant = DefaultVariant
	if raw := strings.TrimSpace(c.Host.Variant); raw != "" {
		if err := c.SetVariant(raw); err != nil {
			return fmt.Errorf(messages.ConfigInvalidVariantFmt, source, raw)
		}
	}
	if c.Network.MaxDownloadBytes < 0 {
		return fmt.Errorf(messages.ConfigNegativeFmt, source, "network.max_download_bytes")
	}
	if c.Update.Concurrency < 0 {
		return fmt.Errorf(messages.ConfigNegativeFmt, source, "update.concurrency")
	}

	installDir := strings.TrimSpace(c.Host.InstallDir)
	if installDir == "" {
		return fmt.Errorf(messages.ConfigInstallDirRequiredFmt, source)
	}
	installDir, err := expandPath(installDir)
	if err != nil {
		return err
	}
	info, err := osStat(installDir)
	if err != nil {
		return fmt.Errorf(messages.ConfigInstallDirMissingFmt, installDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.ConfigInstallDirNotDirFmt, installDir)
	}
	c.Host.InstallDir = installDir

	dataDir := strings.TrimSpace(c.Paths.DataDir)
	if dataDir == "" {
		dataDir = filepath.Join(installDir, "yaam")
	}
	if c.Paths.DataDir, err = expandPath(dataDir); err != nil {
		return err
	}
	return nil
}

func expandPath(raw string) (string, error) {
	expanded, err := homedirExpand(raw)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, raw, err)
	}
	return filepath.Abs(expanded)
}

// SetVariant overrides the selected variant. raw accepts any alias.
func (c *Config) SetVariant(raw string) error {
	v, ok := addon.ParseVariant(raw)
	if !ok || v == addon.VariantNone {
		return fmt.Errorf(messages.ConfigInvalidVariantFmt, "variant", raw)
	}
	c.variant = v
	c.Host.Variant = v.String()
	return nil
}

// Variant returns the selected variant for the run.
func (c *Config) Variant() addon.Variant {
	return c.variant
}

// ExecutablePath returns the absolute host executable path, or "" when none is configured.
func (c *Config) ExecutablePath() string {
	exe := strings.TrimSpace(c.Host.Executable)
	if exe == "" {
		return ""
	}
	if filepath.IsAbs(exe) {
		return exe
	}
	return filepath.Join(c.Host.InstallDir, exe)
}

// MetadataDir is where per-addon metadata files live.
func (c *Config) MetadataDir() string {
	return filepath.Join(c.Paths.DataDir, "metadata")
}

// StateDir holds run state such as the last-run snapshot.
func (c *Config) StateDir() string {
	return filepath.Join(c.Paths.DataDir, "state")
}

// LockPath is the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "yaam.lock")
}

// Preload reports whether the preload phase runs. It defaults to true.
func (c *Config) Preload() bool {
	return c.Update.Preload == nil || *c.Update.Preload
}

// RemoteOptions converts the network section into gateway options.
func (c *Config) RemoteOptions(userAgent string) remote.Options {
	return remote.Options{
		Timeout:          time.Duration(c.Network.Timeout),
		DownloadTimeout:  time.Duration(c.Network.DownloadTimeout),
		MaxDownloadBytes: c.Network.MaxDownloadBytes,
		UserAgent:        userAgent,
		GitHubUser:       c.Network.GitHubUser,
		GitHubToken:      c.Network.GitHubToken,
	}
}
