package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TranslatePath is the endpoint path the HTTP requester posts to.
const TranslatePath = "/api/translate"

// HTTPRequester sends batches to a remote translate endpoint.
type HTTPRequester struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPRequester creates a requester for baseURL. token, when set, is
// sent as a Bearer credential.
func NewHTTPRequester(baseURL, token string, timeout time.Duration) *HTTPRequester {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRequester{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Translate posts req. Any transport error or non-2xx status wraps
// ErrServiceUnavailable.
func (r *HTTPRequester) Translate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("translate request: marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+TranslatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrServiceUnavailable, err)
	}
	return &out, nil
}
