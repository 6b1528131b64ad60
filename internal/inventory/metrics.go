package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chione_inventory_jobs_started_total",
		Help: "Inventory-retrieval jobs initiated at the provider",
	})
	jobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chione_inventory_jobs_completed_total",
		Help: "Inventory jobs observed as completed",
	})
	jobsLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chione_inventory_jobs_lost_total",
		Help: "Inventory jobs the provider no longer knew about",
	})
	outputFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chione_inventory_output_fetches_total",
		Help: "Job outputs downloaded from the provider",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chione_inventory_cache_hits_total",
		Help: "Inventory requests answered from the stored archive list",
	})
	providerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chione_inventory_provider_errors_total",
		Help: "Failed provider calls by operation",
	}, []string{"op"})
)
