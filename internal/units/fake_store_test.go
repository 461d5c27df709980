package units

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// memoryStore is an in-memory UnitStore that enforces the unique unit number
// per building like the database does.
type memoryStore struct {
	units      map[uuid.UUID]Unit
	bulkErr    error
	createErrs map[string]error
	updateErrs map[string]error
	listErr    error

	bulkCalls, createCalls, updateCalls int
	lastBulk                            []UnitFields
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		units:      map[uuid.UUID]Unit{},
		createErrs: map[string]error{},
		updateErrs: map[string]error{},
	}
}

func (s *memoryStore) ListUnitNumbers(_ context.Context, buildingID uuid.UUID) (map[string]uuid.UUID, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := map[string]uuid.UUID{}
	for _, u := range s.units {
		if u.BuildingID == buildingID {
			out[u.Number] = u.ID
		}
	}
	return out, nil
}

func (s *memoryStore) exists(buildingID uuid.UUID, number string) bool {
	for _, u := range s.units {
		if u.BuildingID == buildingID && u.Number == number {
			return true
		}
	}
	return false
}

func (s *memoryStore) BulkCreateUnits(_ context.Context, buildingID uuid.UUID, fields []UnitFields) ([]Unit, error) {
	s.bulkCalls++
	s.lastBulk = fields
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	for _, f := range fields {
		if s.exists(buildingID, f.Number) {
			return nil, fmt.Errorf("bulk insert: %w", ErrDuplicateKey)
		}
		if err := s.createErrs[f.Number]; err != nil {
			return nil, fmt.Errorf("bulk insert: %w", err)
		}
	}
	out := make([]Unit, 0, len(fields))
	for _, f := range fields {
		out = append(out, s.insert(buildingID, f))
	}
	return out, nil
}

func (s *memoryStore) CreateUnit(_ context.Context, buildingID uuid.UUID, f UnitFields) (Unit, error) {
	s.createCalls++
	if err := s.createErrs[f.Number]; err != nil {
		return Unit{}, err
	}
	if s.exists(buildingID, f.Number) {
		return Unit{}, fmt.Errorf("insert unit: %w", ErrDuplicateKey)
	}
	return s.insert(buildingID, f), nil
}

func (s *memoryStore) UpdateUnit(_ context.Context, buildingID, unitID uuid.UUID, f UnitFields) (Unit, error) {
	s.updateCalls++
	if err := s.updateErrs[f.Number]; err != nil {
		return Unit{}, err
	}
	u, ok := s.units[unitID]
	if !ok || u.BuildingID != buildingID {
		return Unit{}, ErrNotFound
	}
	u.UnitFields = f
	s.units[unitID] = u
	return u, nil
}

func (s *memoryStore) insert(buildingID uuid.UUID, f UnitFields) Unit {
	u := Unit{ID: uuid.New(), BuildingID: buildingID, UnitFields: f}
	s.units[u.ID] = u
	return u
}

func (s *memoryStore) sorted() []Unit {
	out := make([]Unit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
