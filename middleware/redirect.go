package middleware

import (
	"errors"
	"net/http"

	cylink "github.com/cylink-sh/cylink-go"
	"github.com/gorilla/mux"
)

// Redirect resolves the {code} route variable and issues an immediate 302
// to the destination. Resolution failures map onto plain-text HTTP errors;
// click recording never delays the response.
func Redirect(engine *cylink.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		code := mux.Vars(r)["code"]
		res, err := engine.Resolve(r.Context(), code)
		if err != nil {
			writeResolveError(w, err)
			return
		}

		// Found redirects stay uncached so click counts keep accruing.
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, res.OriginalURL, http.StatusFound)
	})
}

// Register mounts the redirect and interstitial routes on the given router.
func Register(r *mux.Router, engine *cylink.Engine) {
	r.Handle("/r/{code}", Visitor(Redirect(engine))).Methods(http.MethodGet)
	r.Handle("/i/{code}", Visitor(Interstitial(engine, DefaultCountdownSeconds))).Methods(http.MethodGet)
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cylink.ErrLinkNotFound), errors.Is(err, cylink.ErrInvalidShortCode):
		http.Error(w, "link not found", http.StatusNotFound)
	case errors.Is(err, cylink.ErrResolveRateLimited):
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	case errors.Is(err, cylink.ErrLookupUnavailable):
		http.Error(w, "service unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
