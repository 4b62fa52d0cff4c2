package settlement

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/events", h.RegisterEvent)
	r.Delete("/events/{eventID}", h.DeleteEvent)
}
