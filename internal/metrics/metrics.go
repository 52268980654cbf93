// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the service so tests and multiple servers in one
// process do not collide on the global default registry.
var Registry = prometheus.NewRegistry()

var (
	AuthAttempts = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "museum",
		Name:      "auth_attempts_total",
		Help:      "Sign-in and sign-up attempts by operation and outcome.",
	}, []string{"op", "outcome"})

	FavoriteToggles = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "museum",
		Name:      "favorite_toggles_total",
		Help:      "Favorite toggles by kind and resulting state.",
	}, []string{"kind", "state"})

	CatalogRequests = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "museum",
		Name:      "catalog_requests_total",
		Help:      "Catalog reads by route.",
	}, []string{"route"})

	CacheLookups = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "museum",
		Name:      "response_cache_lookups_total",
		Help:      "Response cache lookups by result (hit or miss).",
	}, []string{"result"})

	EventsPublished = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "museum",
		Name:      "activity_events_total",
		Help:      "Activity events handed to the broker by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
