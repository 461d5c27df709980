// Package audit records who did what to which entity.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/horiachyir/sindipro-backend/internal/store"
)

const (
	ActionUnitsImported  = "units.imported"
	ActionUnitsValidated = "units.import_validated"
	ActionUnitsExported  = "units.exported"

	EntityBuilding = "building"
)

type Writer interface {
	InsertAuditLog(ctx context.Context, arg store.InsertAuditLogParams) error
}

type Logger struct {
	w Writer
}

func NewLogger(w Writer) *Logger {
	return &Logger{w: w}
}

type Entry struct {
	TenantID   uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	RequestID  string
	Metadata   map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) error {
	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = encoded
	}

	params := store.InsertAuditLogParams{
		TenantID:   entry.TenantID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
	}
	if entry.RequestID != "" {
		params.RequestID = &entry.RequestID
	}

	if err := l.w.InsertAuditLog(ctx, params); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
