package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SessionPrincipal struct {
	SessionID  uuid.UUID
	UserID     uuid.UUID
	TenantID   uuid.UUID
	Email      string
	FullName   string
	TenantSlug string
	TenantName string
	CsrfToken  string
	ExpiresAt  time.Time
}

const getSessionPrincipalByTokenHash = `
SELECT s.id, u.id, t.id, u.email, u.full_name, t.slug, t.name, s.csrf_token, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id AND u.tenant_id = s.tenant_id
JOIN tenants t ON t.id = s.tenant_id
WHERE s.token_hash = $1
	AND s.revoked_at IS NULL
	AND s.expires_at > now()
	AND u.is_active
`

func (q *Queries) GetSessionPrincipalByTokenHash(ctx context.Context, tokenHash string) (SessionPrincipal, error) {
	var p SessionPrincipal
	err := q.db.QueryRow(ctx, getSessionPrincipalByTokenHash, tokenHash).Scan(
		&p.SessionID, &p.UserID, &p.TenantID, &p.Email, &p.FullName,
		&p.TenantSlug, &p.TenantName, &p.CsrfToken, &p.ExpiresAt,
	)
	if err != nil {
		return SessionPrincipal{}, notFound(err)
	}
	return p, nil
}

const touchSession = `
UPDATE sessions SET last_seen_at = now() WHERE id = $1
`

func (q *Queries) TouchSession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := q.db.Exec(ctx, touchSession, sessionID)
	return err
}

type CreateSessionParams struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	CsrfToken string
	ExpiresAt time.Time
}

const createSession = `
INSERT INTO sessions (tenant_id, user_id, token_hash, csrf_token, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, createSession, arg.TenantID, arg.UserID, arg.TokenHash, arg.CsrfToken, arg.ExpiresAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

type UserHasPermissionParams struct {
	UserID     uuid.UUID
	TenantID   uuid.UUID
	Permission string
}

const userHasPermission = `
SELECT EXISTS (
	SELECT 1
	FROM user_roles ur
	JOIN role_permissions rp ON rp.role_id = ur.role_id
	JOIN permissions p ON p.id = rp.permission_id
	WHERE ur.user_id = $1 AND ur.tenant_id = $2 AND p.name = $3
)
`

func (q *Queries) UserHasPermission(ctx context.Context, arg UserHasPermissionParams) (bool, error) {
	var has bool
	if err := q.db.QueryRow(ctx, userHasPermission, arg.UserID, arg.TenantID, arg.Permission).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}
