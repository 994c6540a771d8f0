package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/vfgl/storefront/pkg/errors"
	"github.com/vfgl/storefront/pkg/httpclient"

	"github.com/vfgl/storefront/internal/domain"
)

const serviceName = "commerce-api"

// maxBody bounds how much of an upstream response body is read.
const maxBody = 4 << 20 // 4 MB

// Client talks to the external commerce API. Reads go through the circuit
// breaker (retryable, idempotent); writes are submitted exactly once because
// the API issues no idempotency keys.
type Client struct {
	baseURL string
	reads   *httpclient.CircuitBreakerClient
	writes  *httpclient.Client
	logger  *slog.Logger
}

// NewClient creates a commerce API client rooted at baseURL.
func NewClient(baseURL string, reads *httpclient.CircuitBreakerClient, writes *httpclient.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		reads:   reads,
		writes:  writes,
		logger:  logger,
	}
}

// Login submits raw login credentials and returns the decoded session along
// with the verbatim upstream body for relay. Non-2xx responses come back as
// *httpclient.UpstreamError with the raw body preserved.
func (c *Client) Login(ctx context.Context, body []byte) (*domain.Session, []byte, error) {
	return c.postSession(ctx, "/auth/login", body)
}

// Register submits raw registration data; response handling matches Login.
func (c *Client) Register(ctx context.Context, body []byte) (*domain.Session, []byte, error) {
	return c.postSession(ctx, "/auth/register", body)
}

func (c *Client) postSession(ctx context.Context, path string, body []byte) (*domain.Session, []byte, error) {
	resp, err := c.writes.Post(ctx, c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("post %s: %w", path, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, nil, httpclient.NewUpstreamError(resp, serviceName)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", path, err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	return &session, raw, nil
}

// GetProducts returns the full product list.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var envelope struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/products", &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// GetProductByID returns a single product. A 404 resolves to ErrNotFound,
// which callers treat as absence rather than failure.
func (c *Client) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := c.reads.Get(ctx, c.baseURL+"/products/"+id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, apperrors.NotFound("product", id)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.NewUpstreamError(resp, serviceName)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read product %s: %w", id, err)
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &product, nil
}

// GetCategories returns the category list.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var envelope struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.getJSON(ctx, "/categories", &envelope); err != nil {
		return nil, err
	}
	return envelope.Categories, nil
}

// GetProductsByCategory returns the products in the named category.
func (c *Client) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var envelope struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/categories/"+category+"/products", &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// SubmitCheckout posts a checkout request. Submitted exactly once; a non-2xx
// response is returned as *httpclient.UpstreamError so the caller can extract
// the structured detail messages.
func (c *Client) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	resp, err := c.writes.Post(ctx, c.baseURL+"/checkout", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("post checkout: %w", err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.NewUpstreamError(resp, serviceName)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}

	var out domain.CheckoutResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	return &out, nil
}

// Forward relays a request to the commerce API verbatim and returns the
// upstream status and body unchanged, whatever the status was. Only a
// transport failure produces an error. Used by the proxy handlers.
func (c *Client) Forward(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.writes.Do(ctx, req)
	if err != nil {
		return 0, nil, fmt.Errorf("forward %s %s: %w", method, path, err)
	}

	raw, err := readBody(resp)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	return resp.StatusCode, raw, nil
}

// Ping reports whether the commerce API is reachable. Any HTTP response
// counts; only a transport failure is an error. Used by the readiness probe,
// bypassing the circuit breaker so a tripped breaker does not mask recovery.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/categories", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := c.writes.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping commerce api: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.reads.Get(ctx, c.baseURL+path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.NewUpstreamError(resp, serviceName)
	}

	raw, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}
