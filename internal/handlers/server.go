package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/horiachyir/sindipro-backend/internal/audit"
	"github.com/horiachyir/sindipro-backend/internal/config"
	"github.com/horiachyir/sindipro-backend/internal/httpx"
	"github.com/horiachyir/sindipro-backend/internal/middleware"
	"github.com/horiachyir/sindipro-backend/internal/store"
	"github.com/horiachyir/sindipro-backend/internal/units"
)

// Store is the persistence the unit endpoints need.
type Store interface {
	units.UnitStore
	GetBuildingForTenant(ctx context.Context, tenantID, buildingID uuid.UUID) (units.Building, error)
	ListTowersByBuilding(ctx context.Context, buildingID uuid.UUID) ([]units.Tower, error)
	ListUnits(ctx context.Context, buildingID uuid.UUID) ([]units.Unit, error)
}

type AuditLogger interface {
	Log(ctx context.Context, entry audit.Entry) error
}

type Server struct {
	Config   config.Config
	Store    Store
	Audit    AuditLogger
	Logger   *slog.Logger
	Importer *units.Importer
}

func NewServer(cfg config.Config, st Store, auditLogger AuditLogger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Config:   cfg,
		Store:    st,
		Audit:    auditLogger,
		Logger:   logger,
		Importer: units.NewImporter(st, logger, cfg.ImportBatchSize, cfg.ImportMaxRows),
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requireActorIDs(w http.ResponseWriter, r *http.Request) (middleware.Actor, uuid.UUID, uuid.UUID, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return middleware.Actor{}, uuid.Nil, uuid.Nil, false
	}
	if actor.TenantID == uuid.Nil || actor.UserID == uuid.Nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid actor", nil)
		return middleware.Actor{}, uuid.Nil, uuid.Nil, false
	}
	return actor, actor.TenantID, actor.UserID, true
}

// loadBuilding writes the error response itself and reports false when the
// building is missing or belongs to another tenant.
func (s *Server) loadBuilding(w http.ResponseWriter, r *http.Request, tenantID, buildingID uuid.UUID) (units.Building, bool) {
	building, err := s.Store.GetBuildingForTenant(r.Context(), tenantID, buildingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, r, http.StatusNotFound, "building_not_found", "Building was not found", nil)
			return units.Building{}, false
		}
		s.Logger.Error("building_lookup_failed", "building_id", buildingID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load building", nil)
		return units.Building{}, false
	}
	return building, true
}

func (s *Server) audit(r *http.Request, entry audit.Entry) {
	if s.Audit == nil {
		return
	}
	entry.RequestID = httpx.RequestIDFromContext(r.Context())
	if err := s.Audit.Log(r.Context(), entry); err != nil {
		s.Logger.Warn("audit_log_failed", "action", entry.Action, "error", err)
	}
}
