package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RESTTransport issues conventional resource calls against a base URL.
type RESTTransport struct {
	baseURL string
	client  Doer
}

func NewRESTTransport(baseURL string, client Doer) *RESTTransport {
	return &RESTTransport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *RESTTransport) Do(ctx context.Context, call Call, out any) error {
	endpoint := call.Path
	if len(call.Query) > 0 {
		endpoint += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		raw, err := json.Marshal(call.Body)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", call.Path, err)
		}
		body = bytes.NewReader(raw)
	}

	method := call.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	return send(t.client, req, endpoint, call.Token, out)
}
