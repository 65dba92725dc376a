package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDoer struct {
	err error
}

func (f failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func newRouter(h *ProxyHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(CORSMiddleware)
	Mount(r, h)
	return r
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestForward_PassesUpstreamBodyThrough(t *testing.T) {
	var received []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"products":[{"id":1,"title":"Lamp","price":1500}]}`))
	}))
	defer upstream.Close()

	h := NewProxyHandler(upstream.URL, upstream.Client(), 5*time.Second, 1<<20, logger.Discard())
	router := newRouter(h)

	for _, path := range []string{"/api/proxy", "/.netlify/functions/proxy"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"action":"getProducts","vendorEmail":"a@shop.test"}`))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"action":"getProducts","vendorEmail":"a@shop.test"}`, string(received))
			assert.Equal(t, `{"success":true,"products":[{"id":1,"title":"Lamp","price":1500}]}`, rec.Body.String())
			assertCORS(t, rec)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestForward_UpstreamErrorStatusStillRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid login"}`))
	}))
	defer upstream.Close()

	h := NewProxyHandler(upstream.URL, upstream.Client(), 5*time.Second, 1<<20, logger.Discard())
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{"action":"loginVendor"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid login"}`, rec.Body.String())
}

func TestForward_EmptyBodyBecomesEmptyObject(t *testing.T) {
	var received []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer upstream.Close()

	h := NewProxyHandler(upstream.URL, upstream.Client(), 5*time.Second, 1<<20, logger.Discard())
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/.netlify/functions/proxy", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", string(received))
}

func TestForward_FetchFailureReturns500Envelope(t *testing.T) {
	h := NewProxyHandler("http://upstream.invalid", failingDoer{err: errors.New("dial tcp: connection refused")},
		5*time.Second, 1<<20, logger.Discard())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{"action":"placeOrder"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)

	var body failureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "connection refused")
}

func TestForward_NonJSONUpstreamReturns500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>Script error</html>`))
	}))
	defer upstream.Close()

	h := NewProxyHandler(upstream.URL, upstream.Client(), 5*time.Second, 1<<20, logger.Discard())
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), "non-JSON")
}

func TestForward_InvalidRequestJSONReturns500(t *testing.T) {
	h := NewProxyHandler("http://upstream.invalid", failingDoer{err: errors.New("must not be called")},
		5*time.Second, 1<<20, logger.Discard())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{"action":`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not valid JSON")
}

func TestForward_BodyTooLarge(t *testing.T) {
	h := NewProxyHandler("http://upstream.invalid", failingDoer{err: errors.New("must not be called")},
		5*time.Second, 8, logger.Discard())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{"action":"addProduct"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "read request body")
}

func TestPreflight(t *testing.T) {
	h := NewProxyHandler("http://upstream.invalid", failingDoer{}, time.Second, 1<<20, logger.Discard())

	for _, path := range []string{"/api/proxy", "/.netlify/functions/proxy"} {
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assertCORS(t, rec)
	}
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(requestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestForward_EnvelopeTokenReachesUpstream(t *testing.T) {
	var received map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"success":true,"vendors":[]}`))
	}))
	defer upstream.Close()

	h := NewProxyHandler(upstream.URL, upstream.Client(), 5*time.Second, 1<<20, logger.Discard())
	req := httptest.NewRequest(http.MethodPost, "/api/proxy", strings.NewReader(`{"action":"fetchAllVendors","token":"admin-token"}`))
	rec := httptest.NewRecorder()

	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-token", received["token"])
}

func TestRespondJSON_EncodeFailureUsesGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{Service: "relay-service"})
	rec := httptest.NewRecorder()

	respondJSON(rec, log, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Contains(t, buf.String(), "failed to encode response")
	assert.Contains(t, buf.String(), `"service":"relay-service"`)
}
