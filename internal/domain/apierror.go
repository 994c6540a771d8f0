package domain

// ErrorDetail is one element of the commerce API's structured error body.
// Loc mixes strings and integers (field path segments), so it stays untyped.
type ErrorDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// APIError is the commerce API's error envelope: {"detail": [...]}.
type APIError struct {
	Detail []ErrorDetail `json:"detail"`
}

// FirstMessage returns the first structured detail message, or fallback when
// the body carried none.
func (e APIError) FirstMessage(fallback string) string {
	if len(e.Detail) > 0 && e.Detail[0].Msg != "" {
		return e.Detail[0].Msg
	}
	return fallback
}

// ProxyError is the envelope this process uses for failures it generates
// itself at the proxy boundary (as opposed to relayed upstream bodies).
type ProxyError struct {
	Detail string `json:"detail"`
}
