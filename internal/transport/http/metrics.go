package httptransport

import "expvar"

var (
	metricTablesCreated  = expvar.NewInt("tables_created_total")
	metricTablesEnded    = expvar.NewInt("tables_ended_total")
	metricTablesArchived = expvar.NewInt("tables_archived_total")

	metricBuyInsRecorded     = expvar.NewInt("buyins_recorded_total")
	metricChipCountsRecorded = expvar.NewInt("chip_counts_recorded_total")
	metricReconcileTotal     = expvar.NewInt("reconcile_total")

	metricAPIErrors = expvar.NewMap("api_errors_total")
)
