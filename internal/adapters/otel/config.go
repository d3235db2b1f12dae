package otel

// Config holds OTLP exporter settings.
type Config struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" envconfig:"ENABLED"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" envconfig:"ENDPOINT"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure" envconfig:"INSECURE"`
}

// Active reports whether the exporter should be started.
func (c Config) Active() bool {
	return c.Enabled && c.Endpoint != ""
}
