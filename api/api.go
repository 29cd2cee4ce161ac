// Package api serves the strategy list and its registries over a read-only
// HTTP interface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/farmkit/stratreg/log"
	"github.com/farmkit/stratreg/metrics"
	"github.com/farmkit/stratreg/registry"
	"github.com/farmkit/stratreg/strategies"
)

const (
	moduleName = "api"
)

// ListSource yields the strategy list to serve. strategies.Current
// satisfies it.
type ListSource func() (*strategies.List, error)

// StrategyAPI is the HTTP API over the strategy list.
type StrategyAPI struct {
	router  *chi.Mux
	list    ListSource
	tokens  *registry.Registry
	addrs   *registry.Registry
	logger  *log.Logger
	metrics metrics.RequestMetrics
}

// NewStrategyAPI creates a new API. Requests running longer than
// requestTimeout are cancelled.
func NewStrategyAPI(list ListSource, tokens, addrs *registry.Registry, requestTimeout time.Duration, l *log.Logger) *StrategyAPI {
	a := &StrategyAPI{
		router:  chi.NewRouter(),
		list:    list,
		tokens:  tokens,
		addrs:   addrs,
		logger:  l.WithModule(moduleName),
		metrics: metrics.NewDefaultRequestMetrics("stratreg_api"),
	}

	r := a.router
	r.Use(MetricsMiddleware(a.metrics, a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(CorsMiddleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		HumanReadableJsonErrorHandler(w, r, ErrNotFound)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", a.ListStrategies)
			r.Get("/{name}", a.GetStrategy)
		})
		r.Route("/registries/{chain}", func(r chi.Router) {
			r.Get("/tokens", a.ListTokens)
			r.Get("/addresses", a.ListAddresses)
		})
		r.Get("/names", a.GenerateName)
	})

	return a
}

// Router gets the router for this API.
func (a *StrategyAPI) Router() *chi.Mux {
	return a.router
}
