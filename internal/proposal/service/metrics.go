package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dealdesk_proposal_recompute_total",
		Help: "Number of proposal aggregate recompute runs.",
	})
	recomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dealdesk_proposal_recompute_failures_total",
		Help: "Number of proposal aggregate recompute runs that failed to persist.",
	})
)
