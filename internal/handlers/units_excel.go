package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/horiachyir/sindipro-backend/internal/audit"
	"github.com/horiachyir/sindipro-backend/internal/httpx"
	"github.com/horiachyir/sindipro-backend/internal/observability/metrics"
	"github.com/horiachyir/sindipro-backend/internal/units"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type appError struct {
	Status  int
	Code    string
	Message string
	Details any
}

type importSummary struct {
	TotalProcessed int `json:"total_processed"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
}

type importResponse struct {
	Message            string         `json:"message"`
	Summary            importSummary  `json:"summary"`
	Warnings           []string       `json:"warnings,omitempty"`
	ValidationWarnings []string       `json:"validation_warnings,omitempty"`
	Units              []unitResponse `json:"units"`
	DryRun             bool           `json:"dry_run,omitempty"`
}

type uploadedWorkbook struct {
	filename string
	data     []byte
}

// ImportUnitsExcel creates or updates the building's units from an uploaded
// spreadsheet. Row problems are reported back; the call only fails as a whole
// for bad input or when no row could be saved.
func (s *Server) ImportUnitsExcel(w http.ResponseWriter, r *http.Request, buildingID uuid.UUID) {
	start := time.Now()
	result := metrics.ResultError
	defer func() { metrics.ObserveImport(result, time.Since(start)) }()

	_, tenantID, userID, ok := requireActorIDs(w, r)
	if !ok {
		result = metrics.ResultRejected
		return
	}

	dryRun, err := parseDryRun(r)
	if err != nil {
		result = metrics.ResultRejected
		httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "dry_run must be a boolean", nil)
		return
	}

	upload, appErr := parseUnitUpload(r, s.Config.ImportMaxFileBytes)
	if appErr != nil {
		result = metrics.ResultRejected
		httpx.WriteError(w, r, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	building, ok := s.loadBuilding(w, r, tenantID, buildingID)
	if !ok {
		result = metrics.ResultRejected
		return
	}

	towers, err := s.Store.ListTowersByBuilding(r.Context(), building.ID)
	if err != nil {
		s.Logger.Error("tower_list_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load towers", nil)
		return
	}

	sheet, err := units.OpenWorkbook(upload.filename, upload.data)
	if err != nil {
		result = metrics.ResultRejected
		if errors.Is(err, units.ErrUnsupportedFormat) {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_file_type", "Only .xlsx and .xls files are supported", nil)
			return
		}
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_workbook", "The file could not be read as a spreadsheet", nil)
		return
	}

	out, err := s.Importer.Import(r.Context(), building.ID, towers, sheet, units.ApplyOptions{DryRun: dryRun})
	if err != nil {
		s.Logger.Error("unit_import_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Import failed unexpectedly", nil)
		return
	}

	metrics.AddImportRows(metrics.RowsCreated, out.Created)
	metrics.AddImportRows(metrics.RowsUpdated, out.Updated)
	metrics.AddImportRows(metrics.RowsParseError, len(out.ParseErrors))
	metrics.AddImportRows(metrics.RowsSaveError, len(out.SaveErrors))

	action := audit.ActionUnitsImported
	if dryRun {
		action = audit.ActionUnitsValidated
	}
	entityID := building.ID
	s.audit(r, audit.Entry{
		TenantID:   tenantID,
		UserID:     &userID,
		Action:     action,
		EntityType: audit.EntityBuilding,
		EntityID:   &entityID,
		Metadata: map[string]any{
			"filename":        upload.filename,
			"total_processed": out.TotalProcessed,
			"created":         out.Created,
			"updated":         out.Updated,
			"parse_errors":    len(out.ParseErrors),
			"save_errors":     len(out.SaveErrors),
		},
	})

	summary := importSummary{TotalProcessed: out.TotalProcessed, Created: out.Created, Updated: out.Updated}
	if !out.Succeeded() {
		result = metrics.ResultFailed
		httpx.WriteError(w, r, http.StatusBadRequest, "import_failed", "No valid units found in the spreadsheet", map[string]any{
			"summary":             summary,
			"warnings":            out.Warnings(),
			"validation_warnings": out.ValidationWarnings(),
		})
		return
	}

	result = metrics.ResultSuccess
	httpx.WriteJSON(w, http.StatusCreated, importResponse{
		Message:            out.Message(),
		Summary:            summary,
		Warnings:           out.Warnings(),
		ValidationWarnings: out.ValidationWarnings(),
		Units:              mapUnits(building, out.Units),
		DryRun:             out.DryRun,
	})
}

// ExportUnitsExcel downloads the building's units in the import layout.
func (s *Server) ExportUnitsExcel(w http.ResponseWriter, r *http.Request, buildingID uuid.UUID) {
	start := time.Now()
	result := metrics.ResultError
	defer func() { metrics.ObserveExport(result, time.Since(start)) }()

	_, tenantID, userID, ok := requireActorIDs(w, r)
	if !ok {
		result = metrics.ResultRejected
		return
	}
	building, ok := s.loadBuilding(w, r, tenantID, buildingID)
	if !ok {
		result = metrics.ResultRejected
		return
	}

	list, err := s.Store.ListUnits(r.Context(), building.ID)
	if err != nil {
		s.Logger.Error("unit_list_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to list units", nil)
		return
	}

	data, err := units.BuildReport(building, list, units.ReportOptions{MaxColumnWidth: s.Config.ExportMaxColumnWidth})
	if err != nil {
		s.Logger.Error("unit_export_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to build spreadsheet", nil)
		return
	}

	filename := exportFilename("units", building.Name, start)
	entityID := building.ID
	s.audit(r, audit.Entry{
		TenantID:   tenantID,
		UserID:     &userID,
		Action:     audit.ActionUnitsExported,
		EntityType: audit.EntityBuilding,
		EntityID:   &entityID,
		Metadata:   map[string]any{"filename": filename, "units": len(list)},
	})
	s.Logger.Info("unit_export_completed",
		"building_id", building.ID.String(),
		"units", len(list),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	result = metrics.ResultSuccess
	httpx.WriteFile(w, xlsxContentType, filename, data)
}

// GetUnitsImportTemplate downloads an empty sheet in the import layout.
func (s *Server) GetUnitsImportTemplate(w http.ResponseWriter, r *http.Request, buildingID uuid.UUID) {
	_, tenantID, _, ok := requireActorIDs(w, r)
	if !ok {
		return
	}
	building, ok := s.loadBuilding(w, r, tenantID, buildingID)
	if !ok {
		return
	}

	data, err := units.BuildTemplate(building, units.ReportOptions{MaxColumnWidth: s.Config.ExportMaxColumnWidth})
	if err != nil {
		s.Logger.Error("unit_template_failed", "building_id", building.ID.String(), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to build template", nil)
		return
	}
	httpx.WriteFile(w, xlsxContentType, exportFilename("units_template", building.Name, time.Now()), data)
}

func parseDryRun(r *http.Request) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("dry_run"))
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func parseUnitUpload(r *http.Request, maxBytes int64) (uploadedWorkbook, *appError) {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return uploadedWorkbook{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_multipart",
			Message: "Content-Type must be multipart/form-data",
		}
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return uploadedWorkbook{}, fileTooLarge(maxBytes)
		}
		return uploadedWorkbook{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_multipart",
			Message: "Failed to parse multipart form",
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return uploadedWorkbook{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "missing_file",
			Message: "No file provided",
		}
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !units.SupportedExtension(filename) {
		return uploadedWorkbook{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_file_type",
			Message: "Only .xlsx and .xls files are supported",
			Details: map[string]string{"filename": filename},
		}
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return uploadedWorkbook{}, fileTooLarge(maxBytes)
	}

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return uploadedWorkbook{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_multipart",
			Message: "Failed to read uploaded file",
		}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return uploadedWorkbook{}, fileTooLarge(maxBytes)
	}
	return uploadedWorkbook{filename: filename, data: data}, nil
}

func fileTooLarge(maxBytes int64) *appError {
	return &appError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "file_too_large",
		Message: fmt.Sprintf("File exceeds the %d byte limit", maxBytes),
		Details: map[string]int64{"maxBytes": maxBytes},
	}
}

// exportFilename builds "<prefix>_<building>_<yyyymmdd>.xlsx" from filename-safe characters.
func exportFilename(prefix, buildingName string, at time.Time) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(buildingName) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		name = "building"
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, name, at.UTC().Format("20060102"))
}
