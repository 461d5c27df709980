package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"IMPORT_MAX_FILE_MB", "IMPORT_MAX_ROWS", "IMPORT_BATCH_SIZE", "EXPORT_MAX_COLUMN_WIDTH", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.ImportMaxFileBytes != 10*1024*1024 {
		t.Fatalf("expected 10MB import limit, got %d", cfg.ImportMaxFileBytes)
	}
	if cfg.ImportMaxRows != 1000 {
		t.Fatalf("expected 1000 max rows, got %d", cfg.ImportMaxRows)
	}
	if cfg.ImportBatchSize != 10 {
		t.Fatalf("expected batch size 10, got %d", cfg.ImportBatchSize)
	}
	if cfg.ExportMaxColumnWidth != 50 {
		t.Fatalf("expected max column width 50, got %v", cfg.ExportMaxColumnWidth)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvOverridesAndBadValues(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "25")
	t.Setenv("IMPORT_MAX_ROWS", "lots")
	t.Setenv("EXPORT_MAX_COLUMN_WIDTH", "-3")
	t.Setenv("API_WRITE_TIMEOUT_SEC", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , ,https://admin.example.com")
	t.Setenv("CSRF_ENFORCE", "nope")

	cfg := FromEnv()
	if cfg.ImportBatchSize != 25 {
		t.Fatalf("expected batch size 25, got %d", cfg.ImportBatchSize)
	}
	if cfg.ImportMaxRows != 1000 {
		t.Fatalf("expected malformed value to fall back to 1000, got %d", cfg.ImportMaxRows)
	}
	if cfg.ExportMaxColumnWidth != 50 {
		t.Fatalf("expected negative width to fall back to 50, got %v", cfg.ExportMaxColumnWidth)
	}
	if cfg.WriteTimeout != 45*time.Second {
		t.Fatalf("expected 45s write timeout, got %v", cfg.WriteTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.CSRFEnforce {
		t.Fatal("expected malformed CSRF_ENFORCE to keep the default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}
