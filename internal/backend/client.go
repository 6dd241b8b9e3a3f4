package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/czy882/sanitary-pads-shop/internal/token"
	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
)

// maxResponseBody bounds how much of a backend response is read.
const maxResponseBody = 1 << 20

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the backend endpoints.
type Config struct {
	// CartBaseURL is the cart API root, e.g.
	// "https://shop.example/wp-json/cocart/v2".
	CartBaseURL string

	// StoreBaseURL is the read-only catalog API root, e.g.
	// "https://shop.example/wp-json/wc/store/v1".
	StoreBaseURL string
}

// Client talks to the remote commerce backend.
type Client struct {
	doer     Doer
	cartBase string
	store    string
	tokens   token.Source
	logger   *slog.Logger
}

// NewClient creates a backend client. tokens may yield "" for guest sessions.
func NewClient(doer Doer, cfg Config, tokens token.Source, logger *slog.Logger) *Client {
	return &Client{
		doer:     doer,
		cartBase: strings.TrimRight(cfg.CartBaseURL, "/"),
		store:    strings.TrimRight(cfg.StoreBaseURL, "/"),
		tokens:   tokens,
		logger:   logger,
	}
}

// FetchCart implements CartAPI.
func (c *Client) FetchCart(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, c.cartBase+"/cart", nil)
}

// AddItem implements CartAPI. The wire field for the catalog product id is
// "id"; the backend rejects any other name.
func (c *Client) AddItem(ctx context.Context, productID int64, quantity int) (json.RawMessage, error) {
	body := map[string]any{
		"id":       productID,
		"quantity": quantity,
	}
	return c.request(ctx, http.MethodPost, c.cartBase+"/cart/add-item", body)
}

// UpdateItem implements CartAPI.
func (c *Client) UpdateItem(ctx context.Context, itemKey string, quantity int) (json.RawMessage, error) {
	body := map[string]any{
		"quantity": quantity,
	}
	endpoint := c.cartBase + "/cart/item/" + url.PathEscape(itemKey)
	return c.request(ctx, http.MethodPost, endpoint, body)
}

// ClearCart implements CartAPI.
func (c *Client) ClearCart(ctx context.Context) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, c.cartBase+"/cart/clear", nil)
}

// request performs one backend call and returns the raw JSON payload.
func (c *Client) request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.TransportFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperrors.TransportFailure(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, c.rejectionError(resp.StatusCode, payload)
	}

	if !json.Valid(payload) {
		return nil, apperrors.TransportFailure(fmt.Errorf("malformed response body from %s", endpoint))
	}

	return json.RawMessage(payload), nil
}

// rejectionError turns a non-2xx backend response into a BackendRejected
// error, surfacing the backend's own message verbatim when one is present.
func (c *Client) rejectionError(status int, payload []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return apperrors.BackendRejected(status, body.Message)
		}
		if body.Error != "" {
			return apperrors.BackendRejected(status, body.Error)
		}
	}

	if status == http.StatusUnauthorized {
		return apperrors.Unauthorized("cart session is not authorized")
	}

	return apperrors.BackendRejected(status,
		fmt.Sprintf("request failed: %d %s", status, http.StatusText(status)))
}

// Ping probes backend reachability for readiness checks. Any HTTP response,
// including an error status, proves the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cartBase+"/cart", http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	_ = resp.Body.Close()
	return nil
}
