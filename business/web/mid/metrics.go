package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requests holds the http counters registered with the default registry.
var requests = struct {
	total  *prometheus.CounterVec
	errors prometheus.Counter
	panics prometheus.Counter
}{
	total: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powchain",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of requests handled by method.",
	}, []string{"method"}),
	errors: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powchain",
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error.",
	}),
	panics: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powchain",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Number of requests that panicked.",
	}),
}

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			requests.total.WithLabelValues(r.Method).Inc()
			if err != nil {
				requests.errors.Inc()
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
