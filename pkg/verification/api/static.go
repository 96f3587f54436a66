package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed login.html
var loginPage []byte

// StaticRoutes serves the browser login page. The page drives the JSON
// endpoints and renders the challenge screen from the ChallengeView
// fields only.
func StaticRoutes(r chi.Router) {
	r.Get("/login", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(loginPage)
	})
}
