package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/horiachyir/sindipro-backend/internal/auth"
	"github.com/horiachyir/sindipro-backend/internal/db"
	"github.com/horiachyir/sindipro-backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	email := envOrDefault("SEED_ADMIN_EMAIL", "admin@local.sindipro")
	password := envOrDefault("SEED_ADMIN_PASSWORD", "Admin12345!")
	fullName := envOrDefault("SEED_ADMIN_NAME", "Local Admin")
	tenantSlug := envOrDefault("SEED_TENANT_SLUG", "local-dev")
	tenantName := envOrDefault("SEED_TENANT_NAME", "Local Dev Condominium")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	var tenantID uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO tenants (slug, name)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, tenantSlug, tenantName).Scan(&tenantID); err != nil {
		log.Fatalf("upsert tenant: %v", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (tenant_id, email, full_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT DO NOTHING
	`, tenantID, email, fullName, passwordHash)
	if err != nil {
		log.Fatalf("insert user: %v", err)
	}

	var userID uuid.UUID
	var storedHash string
	if err := tx.QueryRow(ctx, `
		SELECT id, password_hash FROM users WHERE tenant_id = $1 AND lower(email) = lower($2)
	`, tenantID, email).Scan(&userID, &storedHash); err != nil {
		log.Fatalf("find user: %v", err)
	}
	// Re-runs keep an existing admin; refresh the hash only when the seed password changed.
	if ok, err := auth.VerifyPassword(password, storedHash); err != nil || !ok || auth.NeedsRehash(storedHash) {
		if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash); err != nil {
			log.Fatalf("update admin password: %v", err)
		}
	}

	permissionDescriptions := map[string]string{
		"units.read":   "List building units",
		"units.import": "Create and update units from spreadsheets",
		"units.export": "Download unit spreadsheets and templates",
	}
	for perm, description := range permissionDescriptions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO permissions (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		`, perm, description); err != nil {
			log.Fatalf("insert permission: %v", err)
		}
	}

	roles := map[string]struct {
		description string
		permissions []string
	}{
		"admin": {
			description: "Condominium administrator",
			permissions: []string{"units.read", "units.import", "units.export"},
		},
		"viewer": {
			description: "Read-only access to units",
			permissions: []string{"units.read", "units.export"},
		},
	}

	roleIDs := make(map[string]uuid.UUID, len(roles))
	for roleName, role := range roles {
		var roleID uuid.UUID
		if err := tx.QueryRow(ctx, `
			INSERT INTO roles (tenant_id, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (tenant_id, name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id
		`, tenantID, roleName, role.description).Scan(&roleID); err != nil {
			log.Fatalf("upsert role %s: %v", roleName, err)
		}
		roleIDs[roleName] = roleID

		for _, perm := range role.permissions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, p.id FROM permissions p WHERE p.name = $2
				ON CONFLICT DO NOTHING
			`, roleID, perm); err != nil {
				log.Fatalf("insert role permission: %v", err)
			}
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, tenant_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, userID, roleIDs["admin"], tenantID); err != nil {
		log.Fatalf("insert user role: %v", err)
	}

	q := store.New(pool).WithTx(tx)
	buildingID, err := seedBuilding(ctx, tx, q, tenantID)
	if err != nil {
		log.Fatalf("seed building: %v", err)
	}

	creds, err := auth.NewSessionCredentials(time.Now(), 24*time.Hour)
	if err != nil {
		log.Fatalf("issue session: %v", err)
	}
	if _, err := q.CreateSession(ctx, store.CreateSessionParams{
		TenantID:  tenantID,
		UserID:    userID,
		TokenHash: creds.TokenHash,
		CsrfToken: creds.CSRFToken,
		ExpiresAt: creds.ExpiresAt,
	}); err != nil {
		log.Fatalf("create session: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit tx: %v", err)
	}

	fmt.Printf("Seed completed. Tenant=%s, admin=%s, password=%s\n", tenantSlug, email, password)
	fmt.Printf("Building=%s\n", buildingID)
	fmt.Printf("Session cookie sp_sess=%s\nX-CSRF-Token: %s\n", creds.Token, creds.CSRFToken)
}

// seedBuilding reuses the tenant's demo building when it already exists.
func seedBuilding(ctx context.Context, tx pgx.Tx, q *store.Queries, tenantID uuid.UUID) (uuid.UUID, error) {
	const name = "Residencial Aurora"
	var buildingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM buildings WHERE tenant_id = $1 AND name = $2`, tenantID, name).Scan(&buildingID)
	if errors.Is(err, pgx.ErrNoRows) {
		building, err := q.CreateBuilding(ctx, tenantID, name, "Rua das Flores, 100 - Sao Paulo")
		if err != nil {
			return uuid.Nil, err
		}
		buildingID = building.ID
	} else if err != nil {
		return uuid.Nil, fmt.Errorf("find building: %w", err)
	}

	for _, tower := range []string{"Tower A", "Tower B"} {
		if _, err := q.CreateTower(ctx, buildingID, tower); err != nil {
			return uuid.Nil, err
		}
	}
	return buildingID, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
