package units

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

const DefaultBatchSize = 10

// UnitStore is the persistence the reconciler writes through. Write methods
// wrap driver failures with ErrFieldTooLong, ErrEncoding or ErrDuplicateKey
// when they apply.
type UnitStore interface {
	ListUnitNumbers(ctx context.Context, buildingID uuid.UUID) (map[string]uuid.UUID, error)
	BulkCreateUnits(ctx context.Context, buildingID uuid.UUID, fields []UnitFields) ([]Unit, error)
	CreateUnit(ctx context.Context, buildingID uuid.UUID, fields UnitFields) (Unit, error)
	UpdateUnit(ctx context.Context, buildingID, unitID uuid.UUID, fields UnitFields) (Unit, error)
}

type Reconciler struct {
	store     UnitStore
	logger    *slog.Logger
	batchSize int
}

func NewReconciler(store UnitStore, logger *slog.Logger, batchSize int) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reconciler{store: store, logger: logger, batchSize: batchSize}
}

type ApplyOptions struct {
	// DryRun counts what would be created or updated without writing.
	DryRun bool
}

// Apply writes parsed rows into the building keyed by unit number: existing
// numbers are updated in place, new ones created. Row-level failures are
// collected in the outcome. The returned error is reserved for failures that
// prevent the import from starting.
//
// Writes are detached from ctx cancellation so a started import runs to the
// end; each batch commits on its own.
func (r *Reconciler) Apply(ctx context.Context, buildingID uuid.UUID, rows []ParsedRow, opts ApplyOptions) (ImportOutcome, error) {
	out := ImportOutcome{DryRun: opts.DryRun}
	if buildingID == uuid.Nil {
		return out, ErrEmptyBuilding
	}

	existing, err := r.store.ListUnitNumbers(ctx, buildingID)
	if err != nil {
		return out, fmt.Errorf("list unit numbers: %w", err)
	}
	if existing == nil {
		existing = map[string]uuid.UUID{}
	}

	ctx = context.WithoutCancel(ctx)
	run := &applyRun{
		r:          r,
		buildingID: buildingID,
		existing:   existing,
		dryRun:     opts.DryRun,
		out:        &out,
		listed:     make(map[string]int, len(rows)),
	}
	for start := 0; start < len(rows); start += r.batchSize {
		end := min(start+r.batchSize, len(rows))
		run.batch(ctx, rows[start:end])
	}
	return out, nil
}

type applyRun struct {
	r          *Reconciler
	buildingID uuid.UUID
	existing   map[string]uuid.UUID
	dryRun     bool
	out        *ImportOutcome
	// listed maps a unit number to its position in out.Units.
	listed map[string]int
}

// record lists unit once; a later write to the same number replaces the entry.
func (a *applyRun) record(unit Unit) {
	if i, ok := a.listed[unit.Number]; ok {
		a.out.Units[i] = unit
		return
	}
	a.listed[unit.Number] = len(a.out.Units)
	a.out.Units = append(a.out.Units, unit)
}

func (a *applyRun) batch(ctx context.Context, rows []ParsedRow) {
	var creates, repeats []ParsedRow
	pending := make(map[string]bool, len(rows))

	for _, row := range rows {
		number := row.Fields.Number
		if id, ok := a.existing[number]; ok {
			a.update(ctx, id, row)
			continue
		}
		if pending[number] {
			// Same new number twice in one batch: apply after the first is created.
			repeats = append(repeats, row)
			continue
		}
		pending[number] = true
		creates = append(creates, row)
	}

	a.createAll(ctx, creates)

	for _, row := range repeats {
		if id, ok := a.existing[row.Fields.Number]; ok {
			a.update(ctx, id, row)
			continue
		}
		a.createOne(ctx, row)
	}
}

func (a *applyRun) update(ctx context.Context, id uuid.UUID, row ParsedRow) {
	fields := canonical(row.Fields)
	if a.dryRun {
		a.out.Updated++
		a.record(Unit{ID: id, BuildingID: a.buildingID, UnitFields: fields})
		return
	}
	unit, err := a.r.store.UpdateUnit(ctx, a.buildingID, id, fields)
	if err != nil {
		a.saveError(fields.Number, err)
		return
	}
	a.out.Updated++
	a.record(unit)
}

func (a *applyRun) createAll(ctx context.Context, rows []ParsedRow) {
	if len(rows) == 0 {
		return
	}
	if a.dryRun {
		for _, row := range rows {
			a.createOne(ctx, row)
		}
		return
	}

	fields := make([]UnitFields, len(rows))
	for i, row := range rows {
		fields[i] = canonical(row.Fields)
	}
	created, err := a.r.store.BulkCreateUnits(ctx, a.buildingID, fields)
	if err == nil {
		for _, unit := range created {
			a.existing[unit.Number] = unit.ID
			a.out.Created++
			a.record(unit)
		}
		return
	}

	a.r.logger.Warn("unit_import_batch_fallback",
		"building_id", a.buildingID.String(),
		"rows", len(rows),
		"error", err,
	)
	for _, row := range rows {
		a.createOne(ctx, row)
	}
}

func (a *applyRun) createOne(ctx context.Context, row ParsedRow) {
	fields := canonical(row.Fields)
	if a.dryRun {
		a.existing[fields.Number] = uuid.Nil
		a.out.Created++
		a.record(Unit{BuildingID: a.buildingID, UnitFields: fields})
		return
	}
	unit, err := a.r.store.CreateUnit(ctx, a.buildingID, fields)
	if err != nil {
		a.saveError(fields.Number, err)
		return
	}
	a.existing[unit.Number] = unit.ID
	a.out.Created++
	a.record(unit)
}

func (a *applyRun) saveError(number string, err error) {
	kind := ClassifySaveError(err)
	a.out.SaveErrors = append(a.out.SaveErrors, SaveError{
		Number:  number,
		Kind:    kind,
		Message: saveErrorMessage(kind, err),
	})
}

// ClassifySaveError buckets a store failure for reporting.
func ClassifySaveError(err error) SaveErrorKind {
	switch {
	case errors.Is(err, ErrFieldTooLong):
		return SaveErrorFieldTooLong
	case errors.Is(err, ErrEncoding):
		return SaveErrorEncoding
	case errors.Is(err, ErrDuplicateKey):
		return SaveErrorDuplicateKey
	default:
		return SaveErrorGeneric
	}
}

func saveErrorMessage(kind SaveErrorKind, err error) string {
	switch kind {
	case SaveErrorFieldTooLong:
		return "a value is longer than its column allows"
	case SaveErrorEncoding:
		return "text contains characters that cannot be stored"
	case SaveErrorDuplicateKey:
		return "unit number already exists in this building"
	default:
		return err.Error()
	}
}

func canonical(f UnitFields) UnitFields {
	f.Area = f.Area.Round(AreaPlaces)
	f.IdealFraction = f.IdealFraction.Round(IdealFractionPlaces)
	return f
}
