// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "caffito",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	FacturasEmitidas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "facturas_emitidas_total",
		Help:      "Finalized invoices by comprobante type.",
	}, []string{"tipo"})

	FacturasAnuladas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "facturas_anuladas_total",
		Help:      "Cancelled invoices.",
	})

	Escaneos = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "pos_escaneos_total",
		Help:      "Register scans by result (exacto, pesable, candidatos, sin_resultados).",
	}, []string{"resultado"})

	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "jobs_total",
		Help:      "Background jobs by type and result (ok, error, dlq).",
	}, []string{"tipo", "resultado"})

	DLQRedrive = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caffito",
		Name:      "dlq_redrive_total",
		Help:      "Jobs moved from a dead letter queue back to their queue.",
	}, []string{"queue"})

	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "caffito",
		Name:      "print_bridge_circuit_state",
		Help:      "Print bridge breaker state: 0 closed, 1 open, 2 half-open.",
	})
)
