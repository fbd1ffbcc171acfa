package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/PizzaHomicide/kava/internal/analytics"
)

var (
	ErrInvalidPartnerID = errors.New("analytics.partner_id must be a positive integer")
	ErrInvalidBaseURL   = errors.New("analytics.base_url must be an absolute http(s) URL")
	ErrInvalidRetries   = errors.New("transport.retry_attempts must not be negative")
)

// Config represents the application configuration
type Config struct {
	Analytics AnalyticsConfig `yaml:"analytics,omitempty"`
	Transport TransportConfig `yaml:"transport,omitempty"`
	Player    PlayerConfig    `yaml:"player,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// AnalyticsConfig identifies the analytics account beacons are reported to
type AnalyticsConfig struct {
	PartnerID       int           `yaml:"partner_id,omitempty"`
	BaseURL         string        `yaml:"base_url,omitempty"`
	Referrer        string        `yaml:"referrer,omitempty"`       // base64 encoded, as sent
	ApplicationID   string        `yaml:"application_id,omitempty"` // used to build the referrer when none is set
	DVRThreshold    time.Duration `yaml:"dvr_threshold,omitempty"`
	PlaybackContext string        `yaml:"playback_context,omitempty"`
	CustomVar1      string        `yaml:"custom_var1,omitempty"`
	CustomVar2      string        `yaml:"custom_var2,omitempty"`
	CustomVar3      string        `yaml:"custom_var3,omitempty"`
	KS              string        `yaml:"ks,omitempty"`
	UIConfID        int           `yaml:"ui_conf_id,omitempty"`
}

// TransportConfig controls beacon delivery
type TransportConfig struct {
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	RetryAttempts int           `yaml:"retry_attempts,omitempty"`
	RetryDelay    time.Duration `yaml:"retry_delay,omitempty"`
	RetryMaxDelay time.Duration `yaml:"retry_max_delay,omitempty"`
}

// PlayerConfig contains media player settings
type PlayerConfig struct {
	Type string `yaml:"type,omitempty"` // "mpv", "custom"
	Path string `yaml:"path,omitempty"`
	Args string `yaml:"args,omitempty"`
}

// MetricsConfig contains the prometheus endpoint settings.  An empty Addr disables the endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	Format   string `yaml:"format,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  Dynamic properties are those that are determined at runtime, for example log file location which is different per OS.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	cfg := createBaseDefaultConfig()

	configPath, err := Path()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// If there is an error saving the default config, then still let the application startup using the defaults.
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	if err := applyEnvVarOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every problem that would stop beacons from being delivered
func (c *Config) Validate() error {
	var errs []error
	if c.Analytics.PartnerID <= 0 {
		errs = append(errs, ErrInvalidPartnerID)
	}
	if u, err := url.Parse(c.Analytics.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Analytics.BaseURL))
	}
	if c.Transport.RetryAttempts < 0 {
		errs = append(errs, ErrInvalidRetries)
	}
	return errors.Join(errs...)
}

// TrackerConfig converts the analytics section into what the tracker consumes
func (c *Config) TrackerConfig() analytics.Config {
	a := c.Analytics
	referrer := a.Referrer
	if referrer == "" && a.ApplicationID != "" {
		referrer = analytics.DefaultReferrer(a.ApplicationID)
	}
	return analytics.Config{
		PartnerID:       a.PartnerID,
		BaseURL:         a.BaseURL,
		Referrer:        referrer,
		DVRThreshold:    a.DVRThreshold,
		PlaybackContext: a.PlaybackContext,
		CustomVar1:      a.CustomVar1,
		CustomVar2:      a.CustomVar2,
		CustomVar3:      a.CustomVar3,
		KS:              a.KS,
		UIConfID:        a.UIConfID,
	}
}

// applyDynamicDefaults sets runtime-determined default values for any properties that haven't been explicitly configured.
// Unlike static defaults, these values might change between runs based on the environment or system configuration.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// Path returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func Path() (string, error) {
	configPath := os.Getenv("KAVA_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "kava", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all default values.  The partner id has no sensible default and
// must be configured.
func createBaseDefaultConfig() *Config {
	return &Config{
		Analytics: AnalyticsConfig{
			BaseURL:       analytics.DefaultBaseURL,
			ApplicationID: analytics.DefaultApplicationID,
			DVRThreshold:  analytics.DefaultDVRThreshold,
		},
		Transport: TransportConfig{
			Timeout:       10 * time.Second,
			RetryAttempts: 2,
			RetryDelay:    500 * time.Millisecond,
			RetryMaxDelay: 5 * time.Second,
		},
		Player: PlayerConfig{
			Type: "mpv",
			Path: "mpv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "kava.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\kava\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "kava", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "kava", "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/kava
		basePath = filepath.Join(homedir, "Library", "Logs", "kava")
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "kava", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "kava", "logs")
		}
	}

	return filepath.Join(basePath, "kava.log")
}
