package units

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// Decimal precision of the stored columns.
	AreaPlaces          int32 = 2
	IdealFractionPlaces int32 = 6

	MaxNumberLen          = 20
	MaxOwnerLen           = 200
	MaxOwnerPhoneLen      = 20
	MaxKeyDeliveryLen     = 3
	MaxDepositLocationLen = 200
)

// Write failures reported by a UnitStore. Implementations wrap their driver
// errors with these so the reconciler can classify them.
var (
	ErrFieldTooLong  = errors.New("field too long")
	ErrEncoding      = errors.New("encoding error")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrNotFound      = errors.New("not found")
	ErrEmptyBuilding = errors.New("building id is required")
)

type Building struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Address  string
}

type Tower struct {
	ID   uuid.UUID
	Name string
}

// UnitFields holds every writable unit column except the building reference.
type UnitFields struct {
	TowerID         *uuid.UUID
	TowerName       string
	Number          string         `validate:"required,max=20"`
	Floor           int            `validate:"min=0"`
	Area            decimal.Decimal
	IdealFraction   decimal.Decimal
	Identification  Identification `validate:"oneof=residential commercial"`
	Status          Status         `validate:"oneof=vacant occupied"`
	Owner           string         `validate:"max=200"`
	OwnerPhone      string         `validate:"max=20"`
	ParkingSpaces   int            `validate:"min=0"`
	KeyDelivery     string         `validate:"max=3"`
	DepositLocation string         `validate:"max=200"`
	HasDeposit      string         `validate:"oneof=yes no"`
}

type Unit struct {
	ID         uuid.UUID
	BuildingID uuid.UUID
	UnitFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParsedRow is one validated spreadsheet row, ready to become a unit write.
type ParsedRow struct {
	Row    int
	Fields UnitFields
}

// RowError is a parse failure for a single sheet row (1-based, as shown in Excel).
type RowError struct {
	Row     int
	Message string
}

type SaveErrorKind string

const (
	SaveErrorFieldTooLong SaveErrorKind = "field_too_long"
	SaveErrorEncoding     SaveErrorKind = "encoding_error"
	SaveErrorDuplicateKey SaveErrorKind = "duplicate_key"
	SaveErrorGeneric      SaveErrorKind = "error"
)

// SaveError is a store failure for a single unit number.
type SaveError struct {
	Number  string
	Kind    SaveErrorKind
	Message string
}

type ImportOutcome struct {
	TotalProcessed int
	Created        int
	Updated        int
	ParseErrors    []RowError
	SaveErrors     []SaveError
	Units          []Unit
	DryRun         bool
}

// Succeeded reports whether at least one unit was written (or would be, on a dry run).
func (o ImportOutcome) Succeeded() bool {
	return o.Created+o.Updated > 0
}
