package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ProxyHandler struct {
	upstreamURL string
	client      Doer
	timeout     time.Duration
	maxBodySize int64
	log         *slog.Logger
}

func NewProxyHandler(upstreamURL string, client Doer, timeout time.Duration, maxBodySize int64, log *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		upstreamURL: upstreamURL,
		client:      client,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		log:         log,
	}
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Preflight answers OPTIONS with an empty 200. CORS headers come from the
// middleware.
func (h *ProxyHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Forward relays the JSON body to the upstream and writes back its JSON.
func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		h.fail(w, r, fmt.Errorf("read request body: %w", err))
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		h.fail(w, r, errors.New("request body is not valid JSON"))
		return
	}

	data, err := h.callUpstream(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

func (h *ProxyHandler) callUpstream(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.upstreamURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, fmt.Errorf("upstream returned non-JSON response (status %d)", resp.StatusCode)
	}
	return data, nil
}

func (h *ProxyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WarnContext(r.Context(), "relay failed", slog.Any("error", err))
	respondJSON(w, h.log, http.StatusInternalServerError, failureResponse{Success: false, Message: err.Error()})
}

func respondJSON(w http.ResponseWriter, log *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}
