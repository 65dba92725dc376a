// Package circuitbreaker wraps outbound HTTP calls in a gobreaker circuit.
package circuitbreaker

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

var errServerStatus = errors.New("upstream returned server error")

// ErrOpen is returned (wrapped) when the circuit rejects a call.
var ErrOpen = errors.New("circuit breaker is open")

type Options struct {
	Name string
	// ConsecutiveFailures trips the circuit. Zero means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the circuit stays open. Zero means 30s.
	OpenTimeout time.Duration
	// CountServerErrors makes 5xx responses count as failures. The response
	// is still returned to the caller.
	CountServerErrors bool
	OnStateChange     func(name string, from, to gobreaker.State)
}

type Transport struct {
	base              http.RoundTripper
	cb                *gobreaker.CircuitBreaker[*http.Response]
	countServerErrors bool
}

func NewTransport(base http.RoundTripper, opts Options) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	failures := opts.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	timeout := opts.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: opts.OnStateChange,
	})

	return &Transport{base: base, cb: cb, countServerErrors: opts.CountServerErrors}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if t.countServerErrors && resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%s: %w", t.cb.Name(), ErrOpen)
	}
	return resp, err
}

func (t *Transport) State() gobreaker.State {
	return t.cb.State()
}
