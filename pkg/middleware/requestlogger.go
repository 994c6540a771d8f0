package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vfgl/storefront/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger
// enriched with correlation_id, session_id, trace_id, and span_id, then
// stores it in context via logger.NewContext. Downstream handlers retrieve it
// with logger.FromContext(ctx).
//
// Mount AFTER RequestLogging (which sets correlation_id) and Tracing (which
// sets the span context).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sid := r.Header.Get("X-Session-ID"); sid != "" {
				ctx = logger.WithSessionID(ctx, sid)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
