package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client forwards generateContent payloads to the Gemini API. It holds no
// per-request state; the API key is fixed for the process lifetime.
type Client struct {
	HTTP         *http.Client
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// Result is a successful upstream exchange. Body is the upstream response
// verbatim; the relay never inspects it.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
	LatencyMs   int64
}

// GenerateContent POSTs payload to {base}/v1beta/models/{model}:generateContent
// with the configured key. An empty model falls back to DefaultModel.
// Failures are returned as *Error with a Kind; on KindConfig no upstream
// call is attempted.
func (c *Client) GenerateContent(ctx context.Context, model string, payload json.RawMessage) (*Result, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, &Error{Kind: KindConfig, Err: errors.New("api key not configured")}
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = c.DefaultModel
	}
	upstreamURL, err := c.buildURL(m)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: err}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: err}
	}
	// headers: start clean, the client's own headers are never forwarded.
	req.Header.Set("Content-Type", "application/json")

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Err: redactKey(err, c.APIKey)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Err: redactKey(err, c.APIKey)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind: KindUpstream,
			Err:  fmt.Errorf("upstream returned %s for model %s", resp.Status, m),
		}
	}

	return &Result{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		LatencyMs:   time.Since(start).Milliseconds(),
	}, nil
}

func (c *Client) buildURL(model string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return "", errors.New("upstream base_url is empty")
	}
	q := url.Values{}
	q.Set("key", c.APIKey)
	return base + "/v1beta/models/" + url.PathEscape(model) + ":generateContent?" + q.Encode(), nil
}

// redactKey keeps the secret out of error details that end up in response
// bodies. net/url errors embed the full request URL, key included.
func redactKey(err error, key string) error {
	if err == nil || strings.TrimSpace(key) == "" {
		return err
	}
	s := err.Error()
	if !strings.Contains(s, key) {
		return err
	}
	return errors.New(strings.ReplaceAll(s, key, "REDACTED"))
}
