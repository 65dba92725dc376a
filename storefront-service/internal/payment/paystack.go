package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const DefaultPaystackURL = "https://api.paystack.co"

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PaystackGate verifies the reference returned by the Paystack popup.
type PaystackGate struct {
	baseURL string
	secret  string
	client  Doer
	log     *slog.Logger
}

func NewPaystackGate(baseURL, secret string, client Doer, log *slog.Logger) *PaystackGate {
	if baseURL == "" {
		baseURL = DefaultPaystackURL
	}
	return &PaystackGate{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client:  client,
		log:     log,
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

func (g *PaystackGate) Confirm(ctx context.Context, req Request) (string, error) {
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		return "", ErrCancelled
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/transaction/verify/"+url.PathEscape(ref), nil)
	if err != nil {
		return "", fmt.Errorf("build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secret)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("verify payment %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrCancelled
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("verify payment %s failed: %d - %s", ref, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode verify response: %w", err)
	}
	if !body.Status {
		return "", fmt.Errorf("verify payment %s: %s", ref, body.Message)
	}

	switch body.Data.Status {
	case "success":
	case "abandoned", "":
		return "", ErrCancelled
	case "failed", "reversed":
		return "", ErrDeclined
	default:
		// ongoing, pending, queued
		return "", fmt.Errorf("%w: payment is %s", ErrCancelled, body.Data.Status)
	}

	want := MinorUnits(req.Amount)
	if body.Data.Amount != want {
		g.log.Warn("payment amount mismatch", "reference", ref, "paid", body.Data.Amount, "expected", want)
		return "", fmt.Errorf("%w: paid %d, expected %d", ErrAmountMismatch, body.Data.Amount, want)
	}
	if req.Currency != "" && !strings.EqualFold(body.Data.Currency, req.Currency) {
		return "", fmt.Errorf("%w: paid in %s, expected %s", ErrAmountMismatch, body.Data.Currency, req.Currency)
	}

	return body.Data.Reference, nil
}
