// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new   → start a fresh session whose secret is today's word
//   - GET  /daily/today → the UTC date key the daily word is derived from
//
// Guesses for a daily session go through POST /game/guess like any other.
// Starting a new game on a daily session redraws the same word until the
// UTC date changes.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shash-786/wordle-engine/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	sel := daily.Selector{Salt: s.opts.DailySalt}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", func(w http.ResponseWriter, r *http.Request) {
			s.startSession(w, r, sel)
		})
		r.Get("/today", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"date": daily.DateKey(time.Now())})
		})
	})
}
