package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"vizkit/domain/chart"
	domainStats "vizkit/domain/stats"
	"vizkit/internal"
	"vizkit/internal/analysis"
	"vizkit/internal/errors"
	"vizkit/internal/events"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel   string
	Chart      ChartConfig
	Processing ProcessingConfig
	Events     EventsConfig
}

// ChartConfig holds the defaults applied to charts that leave them unset
type ChartConfig struct {
	Width             float64
	Height            float64
	RealtimeInterval  time.Duration
	RealtimeMaxPoints int
}

// ProcessingConfig holds data processing settings
type ProcessingConfig struct {
	Outliers      analysis.OutlierPolicy
	HistogramBins int
}

// EventsConfig holds event bus settings
type EventsConfig struct {
	MaxEmitDepth int
}

// Load reads configuration from environment variables and validates it.
// Callers that want a .env file load it first.
func Load() (*Config, error) {
	config := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
		Chart:    *loadChartConfig(),
		Events: EventsConfig{
			MaxEmitDepth: getEnvIntOrDefault("VIZ_MAX_EMIT_DEPTH", events.DefaultMaxDepth),
		},
	}

	processing, err := loadProcessingConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load processing configuration")
	}
	config.Processing = *processing

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadChartConfig() *ChartConfig {
	dims := chart.DefaultDimensions()
	return &ChartConfig{
		Width:             getEnvFloatOrDefault("VIZ_WIDTH", dims.Width),
		Height:            getEnvFloatOrDefault("VIZ_HEIGHT", dims.Height),
		RealtimeInterval:  getEnvDurationOrDefault("VIZ_REALTIME_INTERVAL", chart.DefaultRealtimeInterval),
		RealtimeMaxPoints: getEnvIntOrDefault("VIZ_REALTIME_MAX_POINTS", chart.DefaultRealtimeMaxPoints),
	}
}

func loadProcessingConfig() (*ProcessingConfig, error) {
	policy := analysis.DefaultOutlierPolicy()
	if raw := os.Getenv("VIZ_OUTLIER_METHOD"); raw != "" {
		method, ok := domainStats.ParseOutlierMethod(raw)
		if !ok {
			return nil, errors.ConfigInvalid("VIZ_OUTLIER_METHOD must be iqr, zscore or percentile, got " + strconv.Quote(raw))
		}
		policy.Method = method
	}
	policy.IQRMultiplier = getEnvFloatOrDefault("VIZ_IQR_MULTIPLIER", policy.IQRMultiplier)
	policy.ZScoreMultiplier = getEnvFloatOrDefault("VIZ_ZSCORE_MULTIPLIER", policy.ZScoreMultiplier)
	policy.PercentileTail = getEnvFloatOrDefault("VIZ_PERCENTILE_TAIL", policy.PercentileTail)

	return &ProcessingConfig{
		Outliers:      policy,
		HistogramBins: getEnvIntOrDefault("VIZ_HISTOGRAM_BINS", analysis.DefaultBins),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return errors.ConfigInvalid("chart width and height must be positive")
	}
	if config.Chart.RealtimeInterval <= 0 {
		return errors.ConfigInvalid("realtime interval must be positive")
	}
	if config.Chart.RealtimeMaxPoints <= 0 {
		return errors.ConfigInvalid("realtime window must hold at least one point")
	}
	if config.Processing.HistogramBins <= 0 {
		return errors.ConfigInvalid("histogram bins must be positive")
	}
	if config.Events.MaxEmitDepth <= 0 {
		return errors.ConfigInvalid("max emit depth must be positive")
	}
	policy, err := config.Processing.Outliers.Validate()
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	config.Processing.Outliers = policy
	return nil
}

// Apply fills the parts of cfg the chart file left unset
func (c ChartConfig) Apply(cfg chart.Config) chart.Config {
	if cfg.Dimensions.Width == 0 && cfg.Dimensions.Height == 0 {
		margin := cfg.Dimensions.Margin
		cfg.Dimensions = chart.DefaultDimensions()
		cfg.Dimensions.Width, cfg.Dimensions.Height = c.Width, c.Height
		if margin != (chart.Margin{}) {
			cfg.Dimensions.Margin = margin
		}
	}
	if cfg.Realtime.Interval == 0 {
		cfg.Realtime.Interval = c.RealtimeInterval
	}
	if cfg.Realtime.MaxPoints == 0 {
		cfg.Realtime.MaxPoints = c.RealtimeMaxPoints
	}
	return cfg
}

// LoadChartFile decodes a TOML chart config. A file without tooltip, legend
// or grid keys keeps them enabled. Unknown keys are logged, not rejected.
func LoadChartFile(path string, logger *internal.Logger) (chart.Config, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	cfg := chart.NewConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return chart.Config{}, errors.IOError("chart config not found: "+path, err)
		}
		return chart.Config{}, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse %s", path))
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		logger.Warn("[Config] %s: ignoring unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
