package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ActionTransport posts {action, token?, ...payload} to a single URL,
// normally the relay. The token is also sent as a bearer header.
type ActionTransport struct {
	url    string
	client Doer
}

func NewActionTransport(url string, client Doer) *ActionTransport {
	return &ActionTransport{url: url, client: client}
}

func (t *ActionTransport) Do(ctx context.Context, call Call, out any) error {
	body, err := envelope(call)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", call.Action, err)
	}
	return send(t.client, req, call.Action, call.Token, out)
}

func envelope(call Call) ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if call.Body != nil {
		raw, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", call.Action, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s payload must be a JSON object: %w", call.Action, err)
		}
	}

	for k, v := range call.Params {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s param %s: %w", call.Action, k, err)
		}
		fields[k] = raw
	}

	action, err := json.Marshal(call.Action)
	if err != nil {
		return nil, err
	}
	fields["action"] = action

	// The relay forwards only the body, so the token rides in the envelope.
	if call.Token != "" {
		token, err := json.Marshal(call.Token)
		if err != nil {
			return nil, err
		}
		fields["token"] = token
	}

	return json.Marshal(fields)
}
