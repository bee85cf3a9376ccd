package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	dispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "gateway",
		Name:      "requests_dispatched_total",
		Help:      "ApiRequests dispatched to a provider, by provider and outcome.",
	}, []string{"provider", "outcome"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "gateway",
		Name:      "rate_limited_ticks_total",
		Help:      "Driver ticks that skipped a provider because a rate window was saturated.",
	}, []string{"provider"})

	reaped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "gateway",
		Name:      "reaped_requests_total",
		Help:      "ApiRequests rescued from a stale processing claim.",
	})
)

func init() {
	prometheus.MustRegister(dispatched, rateLimited, reaped)
}
