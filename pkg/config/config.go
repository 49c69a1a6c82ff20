// Package config provides configuration loading and validation for commitviz.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidChartSize   = errors.New("chart width and height must be positive")
	ErrInvalidRadius      = errors.New("chart radius range must satisfy 0 <= min <= max")
	ErrInvalidLocation    = errors.New("unknown chart location")
	ErrInvalidTheme       = errors.New("site theme must be light or dark")
	ErrInvalidTopFiles    = errors.New("site top files must not be negative")
	ErrInvalidLogLevel    = errors.New("unknown logging level")
	ErrInvalidLogFormat   = errors.New("logging format must be text or json")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
)

// Config holds all configuration for commitviz.
type Config struct {
	Data          DataConfig          `mapstructure:"data"`
	Chart         ChartConfig         `mapstructure:"chart"`
	Site          SiteConfig          `mapstructure:"site"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// DataConfig locates and parses the commit log.
type DataConfig struct {
	// Source is a file path or an http(s) URL.
	Source    string `mapstructure:"source"`
	URLPrefix string `mapstructure:"url_prefix"`
	// Strict rejects commits whose lines disagree on author or timestamp.
	Strict         bool          `mapstructure:"strict"`
	DetectLanguage bool          `mapstructure:"detect_language"`
	CacheEnabled   bool          `mapstructure:"cache_enabled"`
	CacheDir       string        `mapstructure:"cache_dir"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
}

// ChartConfig sizes the scatter plot.
type ChartConfig struct {
	Width     float64 `mapstructure:"width"`
	Height    float64 `mapstructure:"height"`
	MinRadius float64 `mapstructure:"min_radius"`
	MaxRadius float64 `mapstructure:"max_radius"`
	// Location is an IANA zone name. Empty keeps each commit's own offset.
	Location string `mapstructure:"location"`
}

// SiteConfig controls the static build.
type SiteConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Theme       string `mapstructure:"theme"`
	OutDir      string `mapstructure:"out_dir"`
	DataFile    string `mapstructure:"data_file"`
	TopFiles    int    `mapstructure:"top_files"`
	Overview    bool   `mapstructure:"overview"`
	WASM        bool   `mapstructure:"wasm"`
	AssetDir    string `mapstructure:"asset_dir"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	// OTLPEndpoint is the collector address. Empty disables export.
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint"`
	OTLPHeaders     string        `mapstructure:"otlp_headers"`
	OTLPInsecure    bool          `mapstructure:"otlp_insecure"`
	ServiceName     string        `mapstructure:"service_name"`
	Environment     string        `mapstructure:"environment"`
	SampleRatio     float64       `mapstructure:"sample_ratio"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/commitviz")
	}

	viperCfg.SetEnvPrefix("COMMITVIZ")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Location resolves Chart.Location. A nil location means each commit keeps
// its recorded offset.
func (c *Config) Location() (*time.Location, error) {
	if c.Chart.Location == "" {
		return nil, nil //nolint:nilnil // nil selects the commit's own offset.
	}

	l, err := time.LoadLocation(c.Chart.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, c.Chart.Location)
	}

	return l, nil
}

func setDefaults(viperCfg *viper.Viper) {
	// Data defaults.
	viperCfg.SetDefault("data.source", DefaultDataSource)
	viperCfg.SetDefault("data.url_prefix", "")
	viperCfg.SetDefault("data.strict", false)
	viperCfg.SetDefault("data.detect_language", DefaultDetectLanguage)
	viperCfg.SetDefault("data.cache_enabled", DefaultCacheEnabled)
	viperCfg.SetDefault("data.cache_dir", DefaultCacheDir)
	viperCfg.SetDefault("data.http_timeout", DefaultHTTPTimeout)

	// Chart defaults.
	viperCfg.SetDefault("chart.width", DefaultChartWidth)
	viperCfg.SetDefault("chart.height", DefaultChartHeight)
	viperCfg.SetDefault("chart.min_radius", DefaultChartMinRadius)
	viperCfg.SetDefault("chart.max_radius", DefaultChartMaxRadius)
	viperCfg.SetDefault("chart.location", "")

	// Site defaults.
	viperCfg.SetDefault("site.title", DefaultSiteTitle)
	viperCfg.SetDefault("site.description", "")
	viperCfg.SetDefault("site.theme", DefaultSiteTheme)
	viperCfg.SetDefault("site.out_dir", DefaultSiteOutDir)
	viperCfg.SetDefault("site.data_file", DefaultSiteDataFile)
	viperCfg.SetDefault("site.top_files", DefaultSiteTopFiles)
	viperCfg.SetDefault("site.overview", DefaultSiteOverview)
	viperCfg.SetDefault("site.wasm", false)
	viperCfg.SetDefault("site.asset_dir", "")

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	// Observability defaults.
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.service_name", DefaultServiceName)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", 0)
	viperCfg.SetDefault("observability.shutdown_timeout", DefaultShutdownTimeout)
}

func validateConfig(config *Config) error {
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidChartSize, config.Chart.Width, config.Chart.Height)
	}

	if config.Chart.MinRadius < 0 || config.Chart.MinRadius > config.Chart.MaxRadius {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidRadius, config.Chart.MinRadius, config.Chart.MaxRadius)
	}

	_, locErr := config.Location()
	if locErr != nil {
		return locErr
	}

	switch strings.ToLower(config.Site.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTheme, config.Site.Theme)
	}

	if config.Site.TopFiles < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopFiles, config.Site.TopFiles)
	}

	_, levelErr := ParseLevel(config.Logging.Level)
	if levelErr != nil {
		return levelErr
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Observability.SampleRatio)
	}

	if config.Data.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: data.http_timeout=%s", ErrInvalidTimeout, config.Data.HTTPTimeout)
	}

	if config.Observability.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: observability.shutdown_timeout=%s", ErrInvalidTimeout, config.Observability.ShutdownTimeout)
	}

	return nil
}
