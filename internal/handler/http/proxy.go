package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vfgl/storefront/pkg/httpclient"
	"github.com/vfgl/storefront/pkg/validator"

	"github.com/vfgl/storefront/internal/auth"
	"github.com/vfgl/storefront/internal/commerce"
	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage"
)

// Proxy boundary error bodies. These exact shapes are part of the contract
// with the web client.
const (
	detailInvalidJSON   = "Invalid JSON body"
	detailInternalError = "An unexpected server error occurred."
)

// maxRequestBody bounds inbound proxy request bodies.
const maxRequestBody = 1 << 20 // 1 MB

// ProxyHandler forwards JSON requests to the commerce API, preserving
// request and response shapes exactly. Its only additions are light JSON
// validation on the way in and identity capture on successful auth.
type ProxyHandler struct {
	commerce *commerce.Client
	kv       storage.KV
	logger   *slog.Logger
}

// NewProxyHandler creates the pass-through handler for auth and checkout.
func NewProxyHandler(client *commerce.Client, kv storage.KV, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		commerce: client,
		kv:       kv,
		logger:   logger,
	}
}

// CheckoutProxyRequest mirrors the commerce API checkout body for shape
// validation; the original bytes are what gets forwarded.
type CheckoutProxyRequest struct {
	Items           []domain.CheckoutItem `json:"items" validate:"required,min=1"`
	ShippingAddress string                `json:"shipping_address" validate:"required"`
	Email           string                `json:"email" validate:"required,email"`
}

// Login handles POST /api/auth/login.
func (h *ProxyHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authProxy(w, r, h.commerce.Login)
}

// Register handles POST /api/auth/register.
func (h *ProxyHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authProxy(w, r, h.commerce.Register)
}

func (h *ProxyHandler) authProxy(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, body []byte) (*domain.Session, []byte, error)) {
	body, ok := h.readJSONBody(w, r)
	if !ok {
		return
	}

	session, raw, err := call(r.Context(), body)
	if err != nil {
		h.relayUpstream(w, r, "auth proxy failed", err)
		return
	}

	h.recordIdentity(r, session)
	relay(w, http.StatusOK, raw)
}

// Checkout handles POST /api/checkout: shape-validate, forward verbatim,
// relay the upstream status and body unchanged.
func (h *ProxyHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readJSONBody(w, r)
	if !ok {
		return
	}

	var req CheckoutProxyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	status, respBody, err := h.commerce.Forward(r.Context(), http.MethodPost, "/checkout", body)
	if err != nil {
		h.internalError(w, r, "checkout proxy failed", err)
		return
	}

	relay(w, status, respBody)
}

// readJSONBody reads and syntax-checks the inbound body. A malformed body is
// answered with the fixed 400 shape and ok=false.
func (h *ProxyHandler) readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.internalError(w, r, "read request body", err)
		return nil, false
	}
	if !json.Valid(body) {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return nil, false
	}
	return body, true
}

func (h *ProxyHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	writeDetail(w, http.StatusInternalServerError, detailInternalError)
}

// recordIdentity stores the freshly authenticated identity for the session,
// when the client sent one. Failure to record never fails the login itself.
func (h *ProxyHandler) recordIdentity(r *http.Request, session *domain.Session) {
	sid := r.Header.Get("X-Session-ID")
	if sid == "" || session == nil {
		return
	}

	store := auth.NewStore(r.Context(), sid, h.kv, h.logger)
	if err := store.Set(r.Context(), session.Token, session.User); err != nil {
		h.logger.WarnContext(r.Context(), "failed to record session identity",
			slog.String("error", err.Error()),
		)
	}
}

// writeDetail writes one of this process's own proxy error bodies.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ProxyError{Detail: detail})
}

// relay writes an upstream status and body through unchanged.
func relay(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// relayUpstream unwraps an *httpclient.UpstreamError and relays its captured
// status and body verbatim; any other error becomes the fixed 500 shape.
func (h *ProxyHandler) relayUpstream(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var upErr *httpclient.UpstreamError
	if errors.As(err, &upErr) {
		relay(w, upErr.Status, upErr.Body)
		return
	}
	h.internalError(w, r, msg, err)
}
