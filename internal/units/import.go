package units

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Importer runs the whole import pipeline for one uploaded sheet.
type Importer struct {
	reconciler *Reconciler
	parseOpts  ParseOptions
	logger     *slog.Logger
}

func NewImporter(store UnitStore, logger *slog.Logger, batchSize, maxRows int) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		reconciler: NewReconciler(store, logger, batchSize),
		parseOpts:  ParseOptions{MaxRows: maxRows},
		logger:     logger,
	}
}

// Import parses sheet against the building's towers and reconciles the valid
// rows. TotalProcessed counts every data row read, valid or not.
func (im *Importer) Import(ctx context.Context, buildingID uuid.UUID, towers []Tower, sheet Sheet, opts ApplyOptions) (ImportOutcome, error) {
	start := time.Now()

	rows, rowErrs := ParseSheet(sheet, NewTowerIndex(towers), im.parseOpts)
	out, err := im.reconciler.Apply(ctx, buildingID, rows, opts)
	if err != nil {
		return ImportOutcome{}, err
	}
	out.ParseErrors = rowErrs
	out.TotalProcessed = len(rows) + len(rowErrs)

	im.logger.Info("unit_import_completed",
		"building_id", buildingID.String(),
		"total_processed", out.TotalProcessed,
		"created", out.Created,
		"updated", out.Updated,
		"parse_errors", len(out.ParseErrors),
		"save_errors", len(out.SaveErrors),
		"dry_run", out.DryRun,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ValidationWarnings formats parse failures by sheet row.
func (o ImportOutcome) ValidationWarnings() []string {
	if len(o.ParseErrors) == 0 {
		return nil
	}
	out := make([]string, len(o.ParseErrors))
	for i, e := range o.ParseErrors {
		out[i] = fmt.Sprintf("Row %d: %s", e.Row, e.Message)
	}
	return out
}

// Warnings formats store failures by unit number.
func (o ImportOutcome) Warnings() []string {
	if len(o.SaveErrors) == 0 {
		return nil
	}
	out := make([]string, len(o.SaveErrors))
	for i, e := range o.SaveErrors {
		out[i] = fmt.Sprintf("Unit %s: %s", e.Number, e.Message)
	}
	return out
}

// Message is the one-line summary shown to the uploader.
func (o ImportOutcome) Message() string {
	verb := "Imported"
	if o.DryRun {
		verb = "Validated"
	}
	msg := fmt.Sprintf("%s %d units: %d created, %d updated", verb, o.Created+o.Updated, o.Created, o.Updated)
	if skipped := len(o.ParseErrors) + len(o.SaveErrors); skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", skipped)
	}
	return msg
}
