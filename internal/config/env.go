package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvVar documents one supported environment variable override
type EnvVar struct {
	Name  string
	Desc  string
	apply func(*Config, string) error
}

var supportedEnvVars = []EnvVar{
	{
		// Only here for documentation purposes.  Does not override any values in the config as this environment variable
		// points to where the config should be loaded.  It is handled prior to loading the config.
		Name:  "KAVA_CONFIG_PATH",
		Desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) error { return nil },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_PARTNER_ID",
		Desc:  "Sets the analytics partner id.  Required.  Default: None",
		apply: func(c *Config, s string) error { return setInt(&c.Analytics.PartnerID, s) },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_BASE_URL",
		Desc:  "Sets the analytics endpoint.  Default: https://analytics.kaltura.com/api_v3/index.php",
		apply: func(c *Config, s string) error { c.Analytics.BaseURL = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_REFERRER",
		Desc:  "Sets the base64 encoded referrer.  Default: derived from the application id",
		apply: func(c *Config, s string) error { c.Analytics.Referrer = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_DVR_THRESHOLD",
		Desc:  "Sets how far behind the live edge counts as DVR, e.g. 2m.  Default: 2m",
		apply: func(c *Config, s string) error { return setDuration(&c.Analytics.DVRThreshold, s) },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_KS",
		Desc:  "Sets the access signature sent with every beacon.  Default: None",
		apply: func(c *Config, s string) error { c.Analytics.KS = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_ANALYTICS_UI_CONF_ID",
		Desc:  "Sets the UI configuration id sent with every beacon.  Default: None",
		apply: func(c *Config, s string) error { return setInt(&c.Analytics.UIConfID, s) },
	},
	{
		Name:  "KAVA_CONFIG_TRANSPORT_TIMEOUT",
		Desc:  "Sets the per request beacon timeout.  Default: 10s",
		apply: func(c *Config, s string) error { return setDuration(&c.Transport.Timeout, s) },
	},
	{
		Name:  "KAVA_CONFIG_TRANSPORT_RETRY_ATTEMPTS",
		Desc:  "Sets how many times a failed beacon is retried.  Default: 2",
		apply: func(c *Config, s string) error { return setInt(&c.Transport.RetryAttempts, s) },
	},
	{
		Name:  "KAVA_CONFIG_PLAYER_PATH",
		Desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) error { c.Player.Path = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_PLAYER_ARGS",
		Desc:  "Sets extra arguments passed to mpv.  Default: None",
		apply: func(c *Config, s string) error { c.Player.Args = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_METRICS_ADDR",
		Desc:  "Sets the listen address of the prometheus endpoint.  Default: disabled",
		apply: func(c *Config, s string) error { c.Metrics.Addr = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_LOGGING_LEVEL",
		Desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) error { c.Logging.Level = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_LOGGING_FORMAT",
		Desc:  "Sets the logging format.  One of: json, text.  Default: json",
		apply: func(c *Config, s string) error { c.Logging.Format = s; return nil },
	},
	{
		Name:  "KAVA_CONFIG_LOGGING_FILE_PATH",
		Desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) error { c.Logging.FilePath = s; return nil },
	},
}

// SupportedEnvVars lists every environment variable override, for documentation
func SupportedEnvVars() []EnvVar {
	return append([]EnvVar(nil), supportedEnvVars...)
}

func applyEnvVarOverrides(c *Config) error {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.Name); value != "" {
			if err := envVar.apply(c, value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar.Name, err)
			}
		}
	}
	return nil
}

func setInt(dst *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
