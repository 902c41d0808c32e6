// Package middleware provides net/http middleware for the vtree preview
// server: Prometheus request metrics, OpenTelemetry server spans and
// structured request logging.
//
// All three label requests with the chi route pattern they matched.
//
//	r := chi.NewRouter()
//	r.Use(middleware.Logger(logger))
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
package middleware
