package telemetry

// Config groups the telemetry settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	// Format is console or json.
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	// Output is stdout, stderr or a file path.
	Output string `yaml:"output"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Listen is the address served by ListenAndServe, e.g. ":9090".
	Listen    string `yaml:"listen" validate:"required_if=Enabled true"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is stdout or none.
	Exporter     string  `yaml:"exporter" validate:"omitempty,oneof=stdout none"`
	SamplingRate float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Path:      "/metrics",
			Namespace: "quarkxr",
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			SamplingRate: 1.0,
		},
	}
}
