package endpoint

import (
	"errors"
	"net/http"

	"github.com/viant/asyncweb/service/worker"
)

// ErrUpstream wraps failures of loopback calls.
var ErrUpstream = errors.New("endpoint: upstream call failed")

func statusCode(err error) int {
	switch {
	case errors.Is(err, worker.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
