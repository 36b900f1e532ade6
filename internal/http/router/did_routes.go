package router

import (
	"github.com/go-chi/chi/v5"

	didctl "github.com/idryos/idryos-auth/internal/http/controllers/did"
)

func registerDIDRoutes(r chi.Router, c *didctl.DIDController) {
	r.Route("/did", func(r chi.Router) {
		r.Post("/create", c.Create)
		r.Get("/resolve/{did}", c.Resolve)
	})
}
