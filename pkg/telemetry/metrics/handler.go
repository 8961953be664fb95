package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
// It exposes all registered metrics in the standard exposition format
// and should be mounted at the configured metrics path.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// Serve starts a metrics HTTP server on addr, mounting the handler at
// path. It blocks until the server fails, so callers run it in a
// goroutine.
func (c *Collector) Serve(addr, path string) error {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, c.Handler())
	return http.ListenAndServe(addr, mux)
}
