package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/horiachyir/sindipro-backend/internal/units"
)

const getBuildingForTenant = `
SELECT id, tenant_id, name, address
FROM buildings
WHERE id = $1 AND tenant_id = $2
`

// GetBuildingForTenant hides buildings of other tenants behind ErrNotFound.
func (q *Queries) GetBuildingForTenant(ctx context.Context, tenantID, buildingID uuid.UUID) (units.Building, error) {
	var b units.Building
	err := q.db.QueryRow(ctx, getBuildingForTenant, buildingID, tenantID).Scan(&b.ID, &b.TenantID, &b.Name, &b.Address)
	if err != nil {
		return units.Building{}, notFound(err)
	}
	return b, nil
}

const createBuilding = `
INSERT INTO buildings (tenant_id, name, address)
VALUES ($1, $2, $3)
RETURNING id
`

func (q *Queries) CreateBuilding(ctx context.Context, tenantID uuid.UUID, name, address string) (units.Building, error) {
	b := units.Building{TenantID: tenantID, Name: name, Address: address}
	if err := q.db.QueryRow(ctx, createBuilding, tenantID, name, address).Scan(&b.ID); err != nil {
		return units.Building{}, fmt.Errorf("insert building: %w", err)
	}
	return b, nil
}

const listTowersByBuilding = `
SELECT id, name
FROM towers
WHERE building_id = $1
ORDER BY name
`

func (q *Queries) ListTowersByBuilding(ctx context.Context, buildingID uuid.UUID) ([]units.Tower, error) {
	rows, err := q.db.Query(ctx, listTowersByBuilding, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list towers: %w", err)
	}
	defer rows.Close()

	var out []units.Tower
	for rows.Next() {
		var t units.Tower
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tower: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const createTower = `
INSERT INTO towers (building_id, name)
VALUES ($1, $2)
ON CONFLICT (building_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`

func (q *Queries) CreateTower(ctx context.Context, buildingID uuid.UUID, name string) (units.Tower, error) {
	t := units.Tower{Name: name}
	if err := q.db.QueryRow(ctx, createTower, buildingID, name).Scan(&t.ID); err != nil {
		return units.Tower{}, fmt.Errorf("upsert tower: %w", err)
	}
	return t, nil
}
