package middleware

import (
	"net/http"
	"strings"
)

// BodyLimitOverride raises or lowers the limit for paths ending in PathSuffix.
type BodyLimitOverride struct {
	PathSuffix string
	MaxBytes   int64
}

func LimitBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return LimitBodyBytesWithOverrides(maxBytes, nil)
}

func LimitBodyBytesWithOverrides(defaultMax int64, overrides []BodyLimitOverride) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			maxBytes := defaultMax
			path := strings.TrimSuffix(r.URL.Path, "/")
			for _, override := range overrides {
				if override.PathSuffix == "" || override.MaxBytes <= 0 {
					continue
				}
				if strings.HasSuffix(path, override.PathSuffix) {
					maxBytes = override.MaxBytes
					break
				}
			}
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
