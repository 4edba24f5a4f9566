package mid

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/ardanlabs/powchain/foundation/web"
)

// Methods and headers served by the node to browser clients.
var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = "Origin, Accept, Content-Type, Content-Length, Accept-Encoding"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// A "*" in origins allows any origin, otherwise the request origin must be
// listed and is echoed back.
func Cors(origins ...string) web.Middleware {
	allowAll := slices.Contains(origins, "*")

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			switch origin := r.Header.Get("Origin"); {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			default:
				return handler(ctx, w, r)
			}

			w.Header().Set("Access-Control-Allow-Methods", corsMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
