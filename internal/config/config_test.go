package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizkit/domain/chart"
	domainStats "vizkit/domain/stats"
	"vizkit/internal"
	"vizkit/internal/analysis"
	"vizkit/internal/errors"
	"vizkit/internal/events"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 800.0, cfg.Chart.Width)
	assert.Equal(t, 400.0, cfg.Chart.Height)
	assert.Equal(t, chart.DefaultRealtimeInterval, cfg.Chart.RealtimeInterval)
	assert.Equal(t, chart.DefaultRealtimeMaxPoints, cfg.Chart.RealtimeMaxPoints)
	assert.Equal(t, analysis.DefaultOutlierPolicy(), cfg.Processing.Outliers)
	assert.Equal(t, analysis.DefaultBins, cfg.Processing.HistogramBins)
	assert.Equal(t, events.DefaultMaxDepth, cfg.Events.MaxEmitDepth)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VIZ_WIDTH", "640")
	t.Setenv("VIZ_HEIGHT", "480")
	t.Setenv("VIZ_OUTLIER_METHOD", "zscore")
	t.Setenv("VIZ_ZSCORE_MULTIPLIER", "2.5")
	t.Setenv("VIZ_HISTOGRAM_BINS", "20")
	t.Setenv("VIZ_REALTIME_INTERVAL", "250ms")
	t.Setenv("VIZ_REALTIME_MAX_POINTS", "10")
	t.Setenv("VIZ_MAX_EMIT_DEPTH", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 640.0, cfg.Chart.Width)
	assert.Equal(t, 480.0, cfg.Chart.Height)
	assert.Equal(t, domainStats.OutlierZScore, cfg.Processing.Outliers.Method)
	assert.Equal(t, 2.5, cfg.Processing.Outliers.Threshold())
	assert.Equal(t, 20, cfg.Processing.HistogramBins)
	assert.Equal(t, 250*time.Millisecond, cfg.Chart.RealtimeInterval)
	assert.Equal(t, 10, cfg.Chart.RealtimeMaxPoints)
	assert.Equal(t, 4, cfg.Events.MaxEmitDepth)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unknown method", func(t *testing.T) {
		t.Setenv("VIZ_OUTLIER_METHOD", "mad")
		_, err := Load()
		assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	})
	t.Run("percentile tail", func(t *testing.T) {
		t.Setenv("VIZ_OUTLIER_METHOD", "percentile")
		t.Setenv("VIZ_PERCENTILE_TAIL", "60")
		_, err := Load()
		assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	})
	t.Run("width", func(t *testing.T) {
		t.Setenv("VIZ_WIDTH", "-1")
		_, err := Load()
		assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	})
}

func TestApplyKeepsExplicitValues(t *testing.T) {
	defaults := ChartConfig{Width: 300, Height: 200, RealtimeInterval: time.Minute, RealtimeMaxPoints: 5}

	cfg := defaults.Apply(chart.Config{})
	assert.Equal(t, 300.0, cfg.Dimensions.Width)
	assert.Equal(t, 200.0, cfg.Dimensions.Height)
	assert.Equal(t, chart.DefaultMargin(), cfg.Dimensions.Margin)
	assert.Equal(t, time.Minute, cfg.Realtime.Interval)
	assert.Equal(t, 5, cfg.Realtime.MaxPoints)

	explicit := chart.Config{Dimensions: chart.Dimensions{Width: 100, Height: 50}}
	explicit.Realtime.MaxPoints = 9
	cfg = defaults.Apply(explicit)
	assert.Equal(t, 100.0, cfg.Dimensions.Width)
	assert.Equal(t, 9, cfg.Realtime.MaxPoints)
}

func TestLoadChartFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.toml")
	content := `
type = " Bar "
title = "Sales by region"
legend = false
colour = "red"

[fields]
x = "region"
y = "sales"

[visual]
sort_direction = "desc"
corner_radius = 3

[realtime]
interval = "500ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var buf bytes.Buffer
	cfg, err := LoadChartFile(path, internal.NewLoggerTo(&buf, internal.LogLevelWarn))
	require.NoError(t, err)

	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "Sales by region", cfg.Title)
	assert.Equal(t, chart.FieldMapping{X: "region", Y: "sales"}, cfg.Fields)
	assert.Equal(t, chart.SortDescending, cfg.Visual.SortDirection)
	assert.Equal(t, 3.0, cfg.Visual.CornerRadius)
	assert.Equal(t, 500*time.Millisecond, cfg.Realtime.Interval)
	assert.False(t, cfg.Legend)
	assert.True(t, cfg.Tooltip)
	assert.True(t, cfg.Grid)
	assert.Contains(t, buf.String(), "colour")
}

func TestLoadChartFileErrors(t *testing.T) {
	_, err := LoadChartFile(filepath.Join(t.TempDir(), "none.toml"), internal.Discard())
	assert.True(t, errors.HasCode(err, errors.CodeIOError))

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("type = "), 0o644))
	_, err = LoadChartFile(path, internal.Discard())
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
