// Package handlers provides HTTP handlers for the roadmap dashboard.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/modules/roadmap"
	"github.com/aristath/roadmap/pkg/embedded"
)

// ViewBuilder builds roadmap views. *roadmap.Service satisfies it.
type ViewBuilder interface {
	Build(ctx context.Context, opts roadmap.ViewOptions) (*roadmap.View, error)
}

// Options controls what visitors may see.
type Options struct {
	// Title is shown in the page heading.
	Title string
	// Filter applies to every request.
	Filter roadmap.FilterOptions
	// AllowPrivate lets requests opt into the private view with
	// ?view=private and include non-public records with ?only_public=false.
	AllowPrivate bool
}

// Handler handles roadmap HTTP requests
type Handler struct {
	service ViewBuilder
	opts    Options
	page    *template.Template
	log     zerolog.Logger
}

// NewHandler creates a new roadmap handler
func NewHandler(service ViewBuilder, opts Options, log zerolog.Logger) (*Handler, error) {
	if opts.Title == "" {
		opts.Title = "Roadmap"
	}

	page, err := template.New("roadmap.html").
		Funcs(template.FuncMap{"badgeStyle": badgeStyle}).
		ParseFS(embedded.Files, embedded.RoadmapTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roadmap template: %w", err)
	}

	return &Handler{
		service: service,
		opts:    opts,
		page:    page,
		log:     log.With().Str("handler", "roadmap").Logger(),
	}, nil
}

// Badge colors come from the stage table, not from records.
func badgeStyle(color string) template.CSS {
	return template.CSS("background-color: " + color)
}

// HandlePage handles GET /
// Renders the dashboard
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"Title": h.opts.Title,
		"View":  view,
	}
	if err := h.page.Execute(&buf, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to render roadmap page")
		http.Error(w, "Failed to render roadmap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error().Err(err).Msg("Failed to write roadmap page")
	}
}

// HandleGetRoadmap handles GET /api/roadmap
// Returns the partitioned roadmap as JSON
func (h *Handler) HandleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"data": view,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// build resolves request options and builds the view, writing an error
// response on failure.
func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*roadmap.View, bool) {
	opts := h.viewOptions(r)

	view, err := h.service.Build(r.Context(), opts)
	if err != nil {
		if roadmap.IsConfigError(err) {
			// Needs an operator to update the period table.
			h.log.Error().Err(err).Msg("Roadmap period table is out of date")
			http.Error(w, "Roadmap is misconfigured", http.StatusInternalServerError)
			return nil, false
		}
		h.log.Error().Err(err).Bool("private", opts.Private).Msg("Failed to build roadmap")
		http.Error(w, "Failed to load roadmap", http.StatusBadGateway)
		return nil, false
	}
	return view, true
}

func (h *Handler) viewOptions(r *http.Request) roadmap.ViewOptions {
	opts := roadmap.ViewOptions{Filter: h.opts.Filter}
	if !h.opts.AllowPrivate {
		return opts
	}

	q := r.URL.Query()
	opts.Private = q.Get("view") == "private"
	if v := q.Get("only_public"); v != "" {
		if onlyPublic, err := strconv.ParseBool(v); err == nil {
			opts.Filter.OnlyPublic = onlyPublic
		}
	}
	return opts
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
