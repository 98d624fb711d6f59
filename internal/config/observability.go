package config

// TracingConfig holds OTLP trace export configuration.
//
// Spans from Genkit model and embedding calls are exported over OTLP
// HTTP to a local collector/agent, which handles authentication and
// forwarding. See internal/app for the exporter wiring.
type TracingConfig struct {
	// Enabled turns span export on. Default: false.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP endpoint (default: localhost:4318).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev).
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the reported service name (default: folio).
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
