package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the roadmap API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roadmap", h.HandleGetRoadmap)
}

// RegisterPage registers the dashboard page at the router root
func (h *Handler) RegisterPage(r chi.Router) {
	r.Get("/", h.HandlePage)
}
