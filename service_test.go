package asyncweb

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/asyncweb/internal/idgen"
	"github.com/viant/asyncweb/service/work"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func get(t *testing.T, URL string) (int, string) {
	t.Helper()
	resp, err := http.Get(URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		options   []Option
		expectErr bool
	}{
		{name: "default"},
		{name: "workers", options: []Option{WithWorkers(2), WithDelay(time.Millisecond)}},
		{name: "no workers", options: []Option{WithWorkers(0)}, expectErr: true},
		{name: "negative delay", options: []Option{WithDelay(-time.Second)}, expectErr: true},
		{name: "invalid base URL config", options: []Option{WithConfig(&Config{Pool: DefaultConfig().Pool, Client: ClientConfig{BaseURL: "::"}})}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, err := New(tc.options...)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080", srv.BaseURL())
		})
	}
}

func TestService_Handler(t *testing.T) {
	ts := httptest.NewUnstartedServer(nil)
	srv, err := New(WithDelay(10*time.Millisecond), WithWorkers(2), WithBaseURL("http://"+ts.Listener.Addr().String()), WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	require.NoError(t, err)
	ts.Config.Handler = srv.Handler()
	ts.Start()
	defer func() {
		ts.Close()
		require.NoError(t, srv.Shutdown(context.Background()))
	}()

	status, body := get(t, ts.URL+"/asyncCompletableComposed")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 36)

	status, body = get(t, ts.URL+"/asyncMono")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 4)
}

func TestService_Serve(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	srv, err := New(WithDelay(10*time.Millisecond), WithWorkers(4), WithTracingExporter("asyncweb-test", "0.0.1", exporter))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	eventually(t, func() bool { return srv.BaseURL() == "http://localhost:"+strconv.Itoa(port) })
	baseURL := "http://" + ln.Addr().String()

	status, body := get(t, baseURL+"/asyncDeferred")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, idgen.Valid(body))

	status, body = get(t, baseURL+"/mock")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	exporter.Reset()
	status, body = get(t, baseURL+"/syncMono")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 4)

	// the loopback call continues the trace of the inbound request
	var outer, client, inner tracetest.SpanStub
	eventually(t, func() bool {
		for _, span := range exporter.GetSpans() {
			switch {
			case span.Name == "GET /syncMono" && span.SpanKind == trace.SpanKindServer:
				outer = span
			case span.Name == "GET /asyncCompletable" && span.SpanKind == trace.SpanKindClient:
				client = span
			case span.Name == "GET /asyncCompletable" && span.SpanKind == trace.SpanKindServer:
				inner = span
			}
		}
		return outer.Name != "" && client.Name != "" && inner.Name != ""
	})
	traceID := outer.SpanContext.TraceID()
	assert.Equal(t, traceID, client.SpanContext.TraceID())
	assert.Equal(t, traceID, inner.SpanContext.TraceID())
	assert.Equal(t, client.SpanContext.SpanID(), inner.Parent.SpanID())

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
	assert.True(t, srv.Pool().IsClosed())
	assert.GreaterOrEqual(t, srv.Pool().Progress().CompletedJobs, 2)
}

func TestService_Start(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	cfg.Client.BaseURL = "http://127.0.0.1:" + strconv.Itoa(port)
	srv, err := New(WithConfig(cfg), WithDelay(10*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, work.DefaultDelay, cfg.Work.Delay)
	require.NoError(t, srv.Start(context.Background()))

	status, body := get(t, cfg.Client.BaseURL+"/syncMono")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 4)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, err = http.Get(cfg.Client.BaseURL + "/mock")
	assert.Error(t, err)
}
