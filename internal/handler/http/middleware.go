package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vfgl/storefront/pkg/httputil"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// sessionIDKey is the context key for the storefront session ID.
const sessionIDKey contextKey = "session_id"

// SessionID is middleware that reads the X-Session-ID header — the durable
// per-client namespace for cart and identity state — and stores it in the
// request context. Routes that own session state reject requests without it.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get("X-Session-ID")
		if sid == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Session-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionIDFromContext extracts the session ID from the request context.
func sessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
