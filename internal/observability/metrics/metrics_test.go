package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name, labelValue string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if importRequests != nil {
		t.Skip("metrics already registered in this process")
	}
	ObserveImport(ResultSuccess, time.Millisecond)
	AddImportRows(RowsCreated, 3)
	ObserveExport("", time.Millisecond)
}

func TestImportAndExportCounters(t *testing.T) {
	Init(nil)
	Init(nil)

	before := counterValue(t, "sindipro_unit_import_requests_total", ResultFailed)
	ObserveImport(ResultFailed, 20*time.Millisecond)
	require.Equal(t, before+1, counterValue(t, "sindipro_unit_import_requests_total", ResultFailed))

	rowsBefore := counterValue(t, "sindipro_unit_import_rows_total", RowsUpdated)
	AddImportRows(RowsUpdated, 4)
	AddImportRows(RowsUpdated, 0)
	require.Equal(t, rowsBefore+4, counterValue(t, "sindipro_unit_import_rows_total", RowsUpdated))

	exportBefore := counterValue(t, "sindipro_unit_export_total", ResultSuccess)
	ObserveExport("", 5*time.Millisecond)
	require.Equal(t, exportBefore+1, counterValue(t, "sindipro_unit_export_total", ResultSuccess))
}
