package endpoint

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/viant/asyncweb/service/client"
	"github.com/viant/asyncweb/service/future"
	"github.com/viant/asyncweb/service/work"
)

const (
	// CompletablePath is the route called back by the loopback routes.
	CompletablePath = "/asyncCompletable"

	prefixLength = 4
	contentType  = "text/plain; charset=utf-8"
)

// Service serves the endpoint group
type Service struct {
	work     *work.Service
	executor future.Executor
	client   *client.Client
	router   *mux.Router
	handler  http.Handler
}

// New creates the endpoint group. executor runs the work of the async
// routes; client targets this very process for the loopback routes.
func New(workService *work.Service, executor future.Executor, loopback *client.Client) *Service {
	s := &Service{
		work:     workService,
		executor: executor,
		client:   loopback,
		router:   mux.NewRouter(),
	}
	s.routes()
	s.handler = chain(s.router, recovery, traced, logged)
	return s
}

// Handler returns the http handler with middleware applied
func (s *Service) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) routes() {
	s.router.HandleFunc("/sync", s.sync).Methods(http.MethodGet).Name("sync")
	s.router.HandleFunc("/asyncDeferred", s.asyncDeferred).Methods(http.MethodGet).Name("asyncDeferred")
	s.router.HandleFunc(CompletablePath, s.asyncCompletable).Methods(http.MethodGet).Name("asyncCompletable")
	s.router.HandleFunc("/asyncCompletableComposed", s.asyncCompletableComposed).Methods(http.MethodGet).Name("asyncCompletableComposed")
	s.router.HandleFunc("/asyncMono", s.asyncMono).Methods(http.MethodGet).Name("asyncMono")
	s.router.HandleFunc("/syncMono", s.syncMono).Methods(http.MethodGet).Name("syncMono")
	s.router.HandleFunc("/mock", s.mock).Methods(http.MethodGet, http.MethodPost).Name("mock")
}

// sync performs the work on the handler goroutine.
func (s *Service) sync(w http.ResponseWriter, r *http.Request) {
	log.Printf("[endpoint] sync request received")
	id, err := s.work.Process(r.Context())
	s.respond(w, r, id, err)
}

// asyncDeferred hands a deferred result to a pool worker and parks until the
// worker settles it.
func (s *Service) asyncDeferred(w http.ResponseWriter, r *http.Request) {
	log.Printf("[endpoint] asyncDeferred request received")
	ctx := r.Context()
	deferred := future.New[string]()
	run := func(ctx context.Context) {
		id, err := s.work.Process(ctx)
		if err != nil {
			deferred.Fail(err)
			return
		}
		deferred.Complete(id)
	}
	reject := func(err error) { deferred.Fail(err) }
	if err := s.executor.Submit(ctx, "asyncDeferred", run, reject); err != nil {
		deferred.Fail(err)
	}
	log.Printf("[endpoint] asyncDeferred handler released")
	s.await(w, r, deferred)
}

func (s *Service) asyncCompletable(w http.ResponseWriter, r *http.Request) {
	log.Printf("[endpoint] asyncCompletable request received")
	result := future.Supply(r.Context(), s.executor, "asyncCompletable", s.work.Process)
	log.Printf("[endpoint] asyncCompletable handler released")
	s.await(w, r, result)
}

// asyncCompletableComposed chains a reverse step, run on the pool, after the
// supplied work settles.
func (s *Service) asyncCompletableComposed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := future.Supply(ctx, s.executor, "asyncCompletableComposed", s.work.Process)
	reversed := future.ThenAsync(ctx, id, s.executor, "reverse", func(ctx context.Context, value string) (string, error) {
		return s.work.Reverse(ctx, value), nil
	})
	s.await(w, r, reversed)
}

// asyncMono calls the completable route without occupying a pool worker and
// keeps only the prefix of the response.
func (s *Service) asyncMono(w http.ResponseWriter, r *http.Request) {
	log.Printf("[endpoint] asyncMono request received")
	body := s.client.GetAsync(r.Context(), CompletablePath)
	prefix := future.Then(body, func(value string) (string, error) {
		return client.Prefix(value, prefixLength)
	})
	log.Printf("[endpoint] asyncMono handler released")
	value, err := prefix.Get(r.Context())
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	s.respond(w, r, value, err)
}

func (s *Service) syncMono(w http.ResponseWriter, r *http.Request) {
	log.Printf("[endpoint] syncMono request received")
	value, err := s.fetchPrefix(r.Context())
	log.Printf("[endpoint] syncMono handler released")
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	s.respond(w, r, value, err)
}

func (s *Service) fetchPrefix(ctx context.Context) (string, error) {
	body, err := s.client.Get(ctx, CompletablePath)
	if err != nil {
		return "", err
	}
	return client.Prefix(body, prefixLength)
}

func (s *Service) mock(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "OK", nil)
}

// await writes the value of f once it settles. Only the request context can
// abandon the wait.
func (s *Service) await(w http.ResponseWriter, r *http.Request, f *future.Future[string]) {
	value, err := f.Get(r.Context())
	s.respond(w, r, value, err)
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, value string, err error) {
	if err != nil {
		code := statusCode(err)
		log.Printf("[endpoint] %v %v failed: %v", r.Method, r.URL.Path, err)
		http.Error(w, err.Error(), code)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, value)
}
