package metrics

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "sindipro_"

	ResultSuccess  = "success"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
	ResultError    = "error"

	RowsCreated    = "created"
	RowsUpdated    = "updated"
	RowsParseError = "parse_error"
	RowsSaveError  = "save_error"
)

var (
	registerOnce sync.Once

	importRequests *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importLatency  *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the unit import/export metrics and, when pool is non-nil,
// connection pool gauges. Safe to call more than once.
func Init(pool *pgxpool.Pool) {
	registerOnce.Do(func() {
		importRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unit_import_requests_total",
				Help: "Total unit spreadsheet imports by result",
			},
			[]string{"result"},
		)
		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unit_import_rows_total",
				Help: "Imported spreadsheet rows by outcome",
			},
			[]string{"outcome"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "unit_import_latency_seconds",
				Help:    "Unit import latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unit_export_total",
				Help: "Total unit spreadsheet exports by result",
			},
			[]string{"result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "unit_export_latency_seconds",
				Help:    "Unit export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(importRequests, importRows, importLatency, exportTotal, exportLatency)
		if pool != nil {
			registerPoolMetrics(pool)
		}
	})
}

func registerPoolMetrics(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "db_pool_acquired_conns",
			Help: "Connections currently checked out of the pool",
		}, func() float64 { return float64(pool.Stat().AcquiredConns()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "db_pool_idle_conns",
			Help: "Idle connections in the pool",
		}, func() float64 { return float64(pool.Stat().IdleConns()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "db_pool_total_conns",
			Help: "Total connections owned by the pool",
		}, func() float64 { return float64(pool.Stat().TotalConns()) }),
	)
}

// ObserveImport records one import request.
func ObserveImport(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if importRequests != nil {
		importRequests.WithLabelValues(result).Inc()
	}
	if importLatency != nil {
		importLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddImportRows counts rows by outcome.
func AddImportRows(outcome string, count int) {
	if count <= 0 || importRows == nil {
		return
	}
	importRows.WithLabelValues(outcome).Add(float64(count))
}

// ObserveExport records one export request.
func ObserveExport(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}
