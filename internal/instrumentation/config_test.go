package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "prometheus without tracing",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSampleRatio: 0.1},
		},
		{
			name:   "otlp with endpoint",
			config: Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318", TraceSampleRatio: 1},
		},
		{
			name:    "sample ratio too high",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSampleRatio: 1.5},
			wantErr: "sample ratio",
		},
		{
			name:    "negative sample ratio",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSampleRatio: -0.1},
			wantErr: "sample ratio",
		},
		{
			name:    "empty metrics exporter",
			config:  Config{TracingExporter: ExporterNone},
			wantErr: "unknown metrics exporter",
		},
		{
			name:    "tracing to prometheus",
			config:  Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterPrometheus},
			wantErr: "unknown tracing exporter",
		},
		{
			name:    "otlp metrics without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterNone},
			wantErr: "needs an endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
