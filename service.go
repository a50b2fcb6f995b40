package asyncweb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/viant/asyncweb/service/client"
	"github.com/viant/asyncweb/service/endpoint"
	"github.com/viant/asyncweb/service/work"
	"github.com/viant/asyncweb/service/worker"
	"github.com/viant/asyncweb/tracing"
)

const readHeaderTimeout = 10 * time.Second

// Service represents the asyncweb service
type Service struct {
	config      *Config
	baseURL     string
	httpClient  *http.Client
	tracingInit func() error
	fixedURL    bool

	work     *work.Service
	pool     *worker.Service
	client   *client.Client
	endpoint *endpoint.Service
	server   *http.Server

	mu        sync.RWMutex
	startOnce sync.Once
	startErr  error
}

// New creates a service. The worker pool starts with the first call to
// Handler, Serve or Start.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.tracingInit == nil && s.config.Tracing.Enabled {
		tc := s.config.Tracing
		s.tracingInit = func() error { return tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.OutputFile) }
	}
	if s.tracingInit != nil {
		if err := s.tracingInit(); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	s.work = work.New(work.WithDelay(s.config.Work.Delay))
	pool, err := worker.New(worker.WithConfig(s.config.Pool))
	if err != nil {
		return err
	}
	s.pool = pool
	s.fixedURL = s.baseURL != "" || s.config.Client.BaseURL != ""
	if s.baseURL == "" {
		s.baseURL = s.config.BaseURL()
	}
	s.bind(s.baseURL)
	s.server = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return nil
}

// bind points the loopback client, and the endpoint group using it, at baseURL.
func (s *Service) bind(baseURL string) {
	options := []client.Option{client.WithTimeout(s.config.Client.Timeout)}
	if s.httpClient != nil {
		options = append(options, client.WithHTTPClient(s.httpClient))
	}
	loopback := client.New(baseURL, options...)
	group := endpoint.New(s.work, s.pool, loopback)
	s.mu.Lock()
	s.baseURL = baseURL
	s.client = loopback
	s.endpoint = group
	s.mu.Unlock()
}

func (s *Service) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	group := s.endpoint
	s.mu.RUnlock()
	group.ServeHTTP(w, r)
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// BaseURL returns the current target of loopback calls
func (s *Service) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// Pool returns the worker pool
func (s *Service) Pool() *worker.Service {
	return s.pool
}

// Handler returns the http handler serving the endpoint group
func (s *Service) Handler() http.Handler {
	if err := s.startPool(); err != nil {
		log.Printf("[asyncweb] %v", err)
	}
	return s.server.Handler
}

func (s *Service) startPool() error {
	s.startOnce.Do(func() {
		if err := s.pool.Start(context.Background()); err != nil {
			s.startErr = fmt.Errorf("failed to start worker pool: %w", err)
		}
	})
	return s.startErr
}

// Serve accepts connections on ln until Shutdown is called. Unless a base URL
// was configured explicitly, loopback calls target the listener's port.
func (s *Service) Serve(ln net.Listener) error {
	if err := s.startPool(); err != nil {
		return err
	}
	if !s.fixedURL {
		if addr, ok := ln.Addr().(*net.TCPAddr); ok && addr.Port != s.config.Server.Port {
			s.bind(loopbackURL(addr.Port))
		}
	}
	log.Printf("[asyncweb] listening on %v (loopback %v)", ln.Addr(), s.BaseURL())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves in the background.
func (s *Service) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %v: %w", s.server.Addr, err)
	}
	if err = s.startPool(); err != nil {
		_ = ln.Close()
		return err
	}
	go func() {
		if err := s.Serve(ln); err != nil {
			log.Printf("[asyncweb] server stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests, then stops the worker pool. Jobs still
// queued are rejected.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.pool.Shutdown()
	log.Printf("[asyncweb] stopped: %v", s.pool.Progress())
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
