package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/horiachyir/sindipro-backend/internal/auth"
	"github.com/horiachyir/sindipro-backend/internal/httpx"
	"github.com/horiachyir/sindipro-backend/internal/store"
)

// SessionStore resolves session cookies to principals.
type SessionStore interface {
	GetSessionPrincipalByTokenHash(ctx context.Context, tokenHash string) (store.SessionPrincipal, error)
	TouchSession(ctx context.Context, sessionID uuid.UUID) error
}

type AuthMiddleware struct {
	Sessions   SessionStore
	CookieName string
	Logger     *slog.Logger
}

func (m AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.CookieName)
		if err != nil || cookie.Value == "" {
			httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}

		principal, err := m.Sessions.GetSessionPrincipalByTokenHash(r.Context(), auth.HashToken(cookie.Value))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Session is invalid", nil)
				return
			}
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load session", nil)
			return
		}

		if err := m.Sessions.TouchSession(r.Context(), principal.SessionID); err != nil && m.Logger != nil {
			m.Logger.Warn("session_touch_failed", "session_id", principal.SessionID, "error", err)
		}

		ctx := WithActor(r.Context(), Actor{
			SessionID:  principal.SessionID,
			UserID:     principal.UserID,
			TenantID:   principal.TenantID,
			Email:      principal.Email,
			FullName:   principal.FullName,
			TenantSlug: principal.TenantSlug,
			TenantName: principal.TenantName,
			CSRFToken:  principal.CsrfToken,
			ExpiresAt:  principal.ExpiresAt,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
