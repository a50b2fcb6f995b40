package asyncweb

import (
	"context"
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"time"

	"github.com/viant/afs"
	"github.com/viant/asyncweb/service/client"
	"github.com/viant/asyncweb/service/meta"
	"github.com/viant/asyncweb/service/work"
	"github.com/viant/asyncweb/service/worker"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML; fields left out keep the DefaultConfig values.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Work    WorkConfig    `json:"work" yaml:"work"`
	Pool    worker.Config `json:"pool" yaml:"pool"`
	Client  ClientConfig  `json:"client" yaml:"client"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

type ServerConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

type WorkConfig struct {
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// ClientConfig configures loopback calls. An empty BaseURL targets
// http://localhost:<port>.
type ClientConfig struct {
	BaseURL string        `json:"baseURL" yaml:"baseURL"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// TracingConfig enables OpenTelemetry tracing. Without OutputFile spans are
// written to stdout.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile" yaml:"outputFile"`
}

const (
	defaultPort            = 8080
	defaultShutdownTimeout = 10 * time.Second
	defaultServiceName     = "asyncweb"
)

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            defaultPort,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Work:   WorkConfig{Delay: work.DefaultDelay},
		Pool:   worker.DefaultConfig(),
		Client: ClientConfig{Timeout: client.DefaultTimeout},
		Tracing: TracingConfig{
			ServiceName: defaultServiceName,
		},
	}
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within 0..65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdownTimeout must be >= 0")
	}
	if c.Work.Delay < 0 {
		return fmt.Errorf("work.delay must be >= 0")
	}
	if c.Pool.WorkerCount <= 0 {
		return fmt.Errorf("pool.workers must be > 0")
	}
	if c.Pool.QueueBuffer < 0 {
		return fmt.Errorf("pool.queueBuffer must be >= 0")
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must be >= 0")
	}
	if c.Client.BaseURL != "" {
		u, err := neturl.Parse(c.Client.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("client.baseURL is not an absolute URL: %q", c.Client.BaseURL)
		}
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// BaseURL returns the target of loopback calls
func (c *Config) BaseURL() string {
	if c.Client.BaseURL != "" {
		return c.Client.BaseURL
	}
	return loopbackURL(c.Server.Port)
}

func loopbackURL(port int) string {
	return "http://localhost:" + strconv.Itoa(port)
}

// LoadConfig reads a YAML config from URL (any afs supported location) on top
// of DefaultConfig. ${env.KEY} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if err := meta.New(afs.New(), "").Load(ctx, URL, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}
