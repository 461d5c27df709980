package app

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/horiachyir/sindipro-backend/internal/audit"
	"github.com/horiachyir/sindipro-backend/internal/config"
	"github.com/horiachyir/sindipro-backend/internal/handlers"
	"github.com/horiachyir/sindipro-backend/internal/httpx"
	"github.com/horiachyir/sindipro-backend/internal/middleware"
	"github.com/horiachyir/sindipro-backend/internal/store"
)

const (
	PermUnitsRead   = "units.read"
	PermUnitsImport = "units.import"
	PermUnitsExport = "units.export"

	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

//go:embed openapi.yaml
var openapiDoc []byte

func NewRouter(cfg config.Config, q *store.Queries, logger *slog.Logger) (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiDoc)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathSuffix: "/units/import/excel", MaxBytes: cfg.ImportMaxFileBytes + multipartOverhead},
	}))

	r.Handle("/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		// Uploads are checked by the handler; parameters are still validated.
		Options: openapi3filter.Options{ExcludeRequestBody: true},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	auditLogger := audit.NewLogger(q)
	h := handlers.NewServer(cfg, q, auditLogger, logger)

	authMW := middleware.AuthMiddleware{Sessions: q, CookieName: cfg.SessionCookieName, Logger: logger}
	importLimiter := middleware.NewIPRateLimiterWithMaxEntries(cfg.ImportRateLimitPerMin, time.Minute, cfg.RateLimitMaxIPs)

	api.Get("/health", h.GetHealth)

	api.Group(func(protected chi.Router) {
		protected.Use(authMW.RequireAuth)

		protected.With(
			middleware.RequirePermission(q, PermUnitsRead),
		).Get("/buildings/{buildingId}/units", withBuildingID(h.ListBuildingUnits))

		protected.With(
			middleware.RequirePermission(q, PermUnitsExport),
		).Get("/buildings/{buildingId}/units/export/excel", withBuildingID(h.ExportUnitsExcel))

		protected.With(
			middleware.RequirePermission(q, PermUnitsExport),
		).Get("/buildings/{buildingId}/units/import/template", withBuildingID(h.GetUnitsImportTemplate))

		protected.With(
			importLimiter.Middleware("Too many imports, try again in a minute"),
			middleware.RequirePermission(q, PermUnitsImport),
			middleware.EnforceCSRF(cfg.CSRFEnforce),
		).Post("/buildings/{buildingId}/units/import/excel", withBuildingID(h.ImportUnitsExcel))
	})

	r.Mount("/api", api)
	return r, nil
}

func withBuildingID(fn func(http.ResponseWriter, *http.Request, uuid.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buildingID openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", "buildingId", chi.URLParam(r, "buildingId"), &buildingID, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_path_param", "buildingId must be a UUID", nil)
			return
		}
		fn(w, r, buildingID)
	}
}
