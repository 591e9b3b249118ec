package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	rwerrors "github.com/vnykmshr/rwflow/pkg/common/errors"
	"github.com/vnykmshr/rwflow/pkg/transform/compress"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RWFLOW_LOG_LEVEL", "debug")
	t.Setenv("RWFLOW_LOG_DEV", "true")
	t.Setenv("RWFLOW_BUFFER_SIZE", "65536")
	t.Setenv("RWFLOW_COMPRESSION_LEVEL", "best")
	t.Setenv("RWFLOW_METRICS_ENABLED", "false")
	t.Setenv("RWFLOW_METRICS_NAMESPACE", "ingest")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDevelopment)
	assert.Equal(t, 65536, cfg.BufferSize)
	assert.Equal(t, "best", cfg.Compression)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "ingest", cfg.MetricsNamespace)

	level, err := cfg.CompressionLevel()
	require.NoError(t, err)
	assert.Equal(t, compress.Best, level)

	bc := cfg.BufferedConfig()
	assert.Equal(t, 65536, bc.ReadSize)
	assert.Equal(t, 65536, bc.WriteSize)

	assert.Nil(t, cfg.MetricsRegistry(prometheus.NewRegistry()))

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name       string
		key, value string
		validation bool
	}{
		{"log level", "RWFLOW_LOG_LEVEL", "chatty", true},
		{"buffer size", "RWFLOW_BUFFER_SIZE", "0", true},
		{"buffer size not a number", "RWFLOW_BUFFER_SIZE", "big", false},
		{"compression level", "RWFLOW_COMPRESSION_LEVEL", "tiny", true},
		{"metrics flag", "RWFLOW_METRICS_ENABLED", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.validation, rwerrors.IsValidationError(err))
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("RWFLOW_BUFFER_SIZE", "-1")
	assert.Equal(t, Default(), LoadOrDefault())
}

func TestMetricsRegistryEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Default().MetricsRegistry(reg)
	require.NotNil(t, m)

	m.ObserveWrite("config", 10, nil)
	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "rwflow_stream_bytes_written_total")
}
