package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/horiachyir/sindipro-backend/internal/units"
)

// Decimal columns travel as text so no driver-side numeric codec is involved.
const unitInsertColumns = `building_id, tower_id, number, floor, area, ideal_fraction, identification,
	status, owner, owner_phone, parking_spaces, key_delivery, deposit_location, has_deposit`

const unitInsertArity = 14

const listUnitNumbers = `
SELECT number, id
FROM units
WHERE building_id = $1
`

func (q *Queries) ListUnitNumbers(ctx context.Context, buildingID uuid.UUID) (map[string]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listUnitNumbers, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list unit numbers: %w", err)
	}
	defer rows.Close()

	out := map[string]uuid.UUID{}
	for rows.Next() {
		var number string
		var id uuid.UUID
		if err := rows.Scan(&number, &id); err != nil {
			return nil, fmt.Errorf("scan unit number: %w", err)
		}
		out[number] = id
	}
	return out, rows.Err()
}

const listUnits = `
SELECT u.id, u.building_id, u.tower_id, COALESCE(t.name, ''), u.number, u.floor,
	u.area::text, u.ideal_fraction::text, u.identification, u.status, u.owner, u.owner_phone,
	u.parking_spaces, u.key_delivery, u.deposit_location, COALESCE(u.has_deposit, ''),
	u.created_at, u.updated_at
FROM units u
LEFT JOIN towers t ON t.id = u.tower_id
WHERE u.building_id = $1
ORDER BY t.name NULLS LAST, u.floor, u.number
`

// ListUnits returns the building's units ordered by tower name, floor and number.
func (q *Queries) ListUnits(ctx context.Context, buildingID uuid.UUID) ([]units.Unit, error) {
	rows, err := q.db.Query(ctx, listUnits, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var out []units.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUnit(row pgx.Row) (units.Unit, error) {
	var (
		u                   units.Unit
		area, fraction      string
		identification, sts string
	)
	err := row.Scan(
		&u.ID, &u.BuildingID, &u.TowerID, &u.TowerName, &u.Number, &u.Floor,
		&area, &fraction, &identification, &sts, &u.Owner, &u.OwnerPhone,
		&u.ParkingSpaces, &u.KeyDelivery, &u.DepositLocation, &u.HasDeposit,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return units.Unit{}, fmt.Errorf("scan unit: %w", err)
	}
	if u.Area, err = decimal.NewFromString(area); err != nil {
		return units.Unit{}, fmt.Errorf("unit %s area: %w", u.Number, err)
	}
	if u.IdealFraction, err = decimal.NewFromString(fraction); err != nil {
		return units.Unit{}, fmt.Errorf("unit %s ideal fraction: %w", u.Number, err)
	}
	u.Identification = units.Identification(identification)
	u.Status = units.Status(sts)
	return u, nil
}

// BulkCreateUnits inserts every unit in one statement, so the batch either
// lands whole or not at all.
func (q *Queries) BulkCreateUnits(ctx context.Context, buildingID uuid.UUID, fields []units.UnitFields) ([]units.Unit, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO units (" + unitInsertColumns + ") VALUES ")
	args := make([]any, 0, len(fields)*unitInsertArity)
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(unitValuesTuple(len(args)))
		args = append(args, unitArgs(buildingID, f)...)
	}
	sb.WriteString(" RETURNING id, number, created_at, updated_at")

	rows, err := q.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, writeError("bulk insert units", err)
	}
	defer rows.Close()

	byNumber := make(map[string]units.UnitFields, len(fields))
	for _, f := range fields {
		byNumber[f.Number] = f
	}
	out := make([]units.Unit, 0, len(fields))
	for rows.Next() {
		var (
			id                   uuid.UUID
			number               string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &number, &createdAt, &updatedAt); err != nil {
			return nil, writeError("bulk insert units", err)
		}
		out = append(out, units.Unit{
			ID:         id,
			BuildingID: buildingID,
			UnitFields: byNumber[number],
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, writeError("bulk insert units", err)
	}
	return out, nil
}

func (q *Queries) CreateUnit(ctx context.Context, buildingID uuid.UUID, f units.UnitFields) (units.Unit, error) {
	sql := "INSERT INTO units (" + unitInsertColumns + ") VALUES " + unitValuesTuple(0) +
		" RETURNING id, created_at, updated_at"

	u := units.Unit{BuildingID: buildingID, UnitFields: f}
	if err := q.db.QueryRow(ctx, sql, unitArgs(buildingID, f)...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return units.Unit{}, writeError("insert unit", err)
	}
	return u, nil
}

const updateUnit = `
UPDATE units SET
	tower_id = $3,
	number = $4,
	floor = $5,
	area = $6::text::numeric,
	ideal_fraction = $7::text::numeric,
	identification = $8,
	status = $9,
	owner = $10,
	owner_phone = $11,
	parking_spaces = $12,
	key_delivery = $13,
	deposit_location = $14,
	has_deposit = $15,
	updated_at = now()
WHERE id = $1 AND building_id = $2
RETURNING created_at, updated_at
`

// UpdateUnit overwrites every column except the building reference.
func (q *Queries) UpdateUnit(ctx context.Context, buildingID, unitID uuid.UUID, f units.UnitFields) (units.Unit, error) {
	args := append([]any{unitID}, unitArgs(buildingID, f)...)
	u := units.Unit{ID: unitID, BuildingID: buildingID, UnitFields: f}
	if err := q.db.QueryRow(ctx, updateUnit, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return units.Unit{}, writeError("update unit", err)
	}
	return u, nil
}

// unitValuesTuple renders one VALUES tuple whose placeholders start after offset.
func unitValuesTuple(offset int) string {
	parts := make([]string, unitInsertArity)
	for i := range parts {
		n := offset + i + 1
		switch i {
		case 4, 5:
			parts[i] = fmt.Sprintf("$%d::text::numeric", n)
		default:
			parts[i] = fmt.Sprintf("$%d", n)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func unitArgs(buildingID uuid.UUID, f units.UnitFields) []any {
	var hasDeposit *string
	if f.HasDeposit != "" {
		hasDeposit = &f.HasDeposit
	}
	return []any{
		buildingID,
		f.TowerID,
		f.Number,
		f.Floor,
		f.Area.StringFixed(units.AreaPlaces),
		f.IdealFraction.StringFixed(units.IdealFractionPlaces),
		string(f.Identification),
		string(f.Status),
		f.Owner,
		f.OwnerPhone,
		f.ParkingSpaces,
		f.KeyDelivery,
		f.DepositLocation,
		hasDeposit,
	}
}
