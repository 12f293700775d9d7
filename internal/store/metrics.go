package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskcal_store_mutations_total",
			Help: "Total number of task store mutations by operation and outcome",
		},
		[]string{"op", "status"},
	)

	taskCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskcal_store_tasks",
			Help: "Number of tasks held by the most recently mutated store",
		},
	)
)
