package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vfgl/storefront/internal/domain"
	"github.com/vfgl/storefront/internal/storage"
)

const keyPrefix = "identity:"

// Store owns the authenticated identity and session token for one session,
// mirrored to the KV the same way the cart is. A signed-out session simply
// has no value under its key.
type Store struct {
	sessionID string
	kv        storage.KV
	session   *domain.Session
	logger    *slog.Logger
}

// NewStore loads the session's identity from the KV. Absent or corrupt data
// means signed out, never a failure.
func NewStore(ctx context.Context, sessionID string, kv storage.KV, logger *slog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		kv:        kv,
		logger:    logger,
	}

	data, err := kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.Warn("identity load failed, treating as signed out",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return s
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("corrupt identity data, treating as signed out",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return s
	}

	s.session = &session
	return s
}

// Set records a fresh token and identity, persisting synchronously.
func (s *Store) Set(ctx context.Context, token string, user domain.Identity) error {
	session := domain.Session{Token: token, User: user}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+s.sessionID, data, 0); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.session = &session
	return nil
}

// Identity returns the authenticated user, or nil when signed out. Checkout
// gates on this.
func (s *Store) Identity() *domain.Identity {
	if s.session == nil {
		return nil
	}
	user := s.session.User
	return &user
}

// Token returns the opaque session token, or "" when signed out.
func (s *Store) Token() string {
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Clear signs the session out. Only an explicit call does this; auth
// failures never clear identity speculatively.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyPrefix+s.sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.session = nil
	return nil
}
