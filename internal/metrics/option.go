package metrics

// Provider selects a metric reader.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "customOtelCollector"
)

// NewOtelCollectorConfig describes an OTLP/gRPC metric collector.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
	}
}

// Config collects the readers and the service resource name.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// ProviderCfg configures one reader.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

// WithProviderConfig adds a reader; it may be given more than once.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(c Config) Config {
		c.Provider = append(c.Provider, provider)
		return c
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(c Config) Config {
		c.ServiceName = serviceName
		return c
	}
}

// PromServerConfig configures the scrape server.
type PromServerConfig struct {
	port string
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

func WithPort(port string) PromOptionFn {
	return func(c PromServerConfig) PromServerConfig {
		c.port = port
		return c
	}
}
