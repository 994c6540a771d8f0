package domain

// Identity is the authenticated user attached to a session.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session pairs an opaque commerce API token with the identity it belongs
// to. Owned by the auth store; required for checkout.
type Session struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}
