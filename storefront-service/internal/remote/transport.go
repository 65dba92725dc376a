package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Call describes one backend operation in terms both transports understand.
type Call struct {
	// Action names the operation in the envelope transport.
	Action string
	// Method, Path and Query address the operation in the REST transport.
	Method string
	Path   string
	Query  url.Values
	// Body is the JSON payload. The envelope transport merges its fields
	// into the envelope.
	Body any
	// Params are envelope-only fields that REST carries in Path or Query.
	Params map[string]any
	// Token, when set, is sent as a bearer token, and as the envelope's
	// token field by the envelope transport.
	Token string
}

// Transport executes a Call and decodes the JSON answer into out.
type Transport interface {
	Do(ctx context.Context, call Call, out any) error
}

const (
	ModeAction = "action"
	ModeREST   = "rest"
)

// NewTransport picks the transport for the configured backend mode.
func NewTransport(mode, baseURL string, client Doer) (Transport, error) {
	switch strings.ToLower(mode) {
	case ModeAction, "":
		return NewActionTransport(baseURL, client), nil
	case ModeREST:
		return NewRESTTransport(baseURL, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func send(client Doer, req *http.Request, endpoint, token string, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("API %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("API %s returned invalid JSON: %w", endpoint, err)
	}
	return nil
}
