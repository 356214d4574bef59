package middleware

import (
	"encoding/json"
	"net/http"

	cylink "github.com/cylink-sh/cylink-go"
	"github.com/gorilla/mux"
)

// DefaultCountdownSeconds matches the countdown the interstitial page
// renders when no override is configured.
const DefaultCountdownSeconds = 10

// interstitialState is the JSON payload the countdown page polls once on
// load to seed its controller.
type interstitialState struct {
	ShortCode   string `json:"short_code"`
	Destination string `json:"destination"`
	Seconds     int    `json:"seconds"`
}

// Interstitial resolves the {code} route variable and returns the countdown
// page's initial state as JSON instead of redirecting. Repeat loads by the
// same visitor are absorbed by click dedup, not by caching.
func Interstitial(engine *cylink.Engine, seconds int) http.Handler {
	if seconds <= 0 {
		seconds = DefaultCountdownSeconds
	}

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

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		json.NewEncoder(w).Encode(interstitialState{
			ShortCode:   res.ShortCode,
			Destination: res.OriginalURL,
			Seconds:     seconds,
		})
	})
}
