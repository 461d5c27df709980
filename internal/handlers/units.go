package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/horiachyir/sindipro-backend/internal/httpx"
	"github.com/horiachyir/sindipro-backend/internal/units"
)

type unitResponse struct {
	ID              uuid.UUID       `json:"id"`
	BuildingID      uuid.UUID       `json:"building_id"`
	BuildingName    string          `json:"building_name,omitempty"`
	TowerID         *uuid.UUID      `json:"tower_id"`
	TowerName       string          `json:"tower_name,omitempty"`
	Number          string          `json:"number"`
	Floor           int             `json:"floor"`
	Area            decimal.Decimal `json:"area"`
	IdealFraction   decimal.Decimal `json:"ideal_fraction"`
	Identification  string          `json:"identification"`
	Status          string          `json:"status"`
	Owner           string          `json:"owner"`
	OwnerPhone      string          `json:"owner_phone"`
	ParkingSpaces   int             `json:"parking_spaces"`
	KeyDelivery     string          `json:"key_delivery"`
	DepositLocation string          `json:"deposit_location"`
	HasDeposit      string          `json:"has_deposit"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

func mapUnit(building units.Building, u units.Unit) unitResponse {
	resp := unitResponse{
		ID:              u.ID,
		BuildingID:      building.ID,
		BuildingName:    building.Name,
		TowerID:         u.TowerID,
		TowerName:       u.TowerName,
		Number:          u.Number,
		Floor:           u.Floor,
		Area:            u.Area.Round(2),
		IdealFraction:   u.IdealFraction.Round(6),
		Identification:  string(u.Identification),
		Status:          string(u.Status),
		Owner:           u.Owner,
		OwnerPhone:      u.OwnerPhone,
		ParkingSpaces:   u.ParkingSpaces,
		KeyDelivery:     u.KeyDelivery,
		DepositLocation: u.DepositLocation,
		HasDeposit:      u.HasDeposit,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.UTC()
		resp.CreatedAt = &created
	}
	if !u.UpdatedAt.IsZero() {
		updated := u.UpdatedAt.UTC()
		resp.UpdatedAt = &updated
	}
	return resp
}

func mapUnits(building units.Building, list []units.Unit) []unitResponse {
	out := make([]unitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, mapUnit(building, u))
	}
	return out
}

// ListBuildingUnits returns the building's units in export order.
func (s *Server) ListBuildingUnits(w http.ResponseWriter, r *http.Request, buildingID uuid.UUID) {
	_, tenantID, _, ok := requireActorIDs(w, r)
	if !ok {
		return
	}
	building, ok := s.loadBuilding(w, r, tenantID, buildingID)
	if !ok {
		return
	}

	list, err := s.Store.ListUnits(r.Context(), building.ID)
	if err != nil {
		s.Logger.Error("unit_list_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to list units", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"units": mapUnits(building, list)})
}
