package categories

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/tree", h.Tree)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Post("/{id}/reactivate", h.Reactivate)
	r.Post("/{id}/move", h.Move)
}
