package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sind-data/insecurity-dashboard/internal/filter"
	"github.com/sind-data/insecurity-dashboard/internal/taxonomy"
)

// Handler exposes the board's data contracts as a JSON API for the browser
// frontend. Every request parses its own selection and triggers one full
// synchronous recompute.
type Handler struct {
	board *Board
}

// NewRouter builds the chi router for the dashboard API.
func NewRouter(board *Board, allowedOrigins []string) http.Handler {
	h := &Handler{board: board}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/taxonomy", h.taxonomy)
		r.Get("/dashboard", h.dashboard)
		r.Get("/records", h.records)
		r.Get("/buckets", h.buckets)
		r.Get("/summary", h.summary)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) taxonomy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tree":           taxonomy.Tree(),
		"default_leaves": taxonomy.Leaves(),
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.board.Recompute(sel))
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	markers := h.board.Markers(sel)

	if raw := r.URL.Query().Get("bbox"); raw != "" {
		bounds, err := parseBBox(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		markers = markersInBounds(markers, bounds)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markers": markers,
		"count":   len(markers),
	})
}

func (h *Handler) buckets(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.board.Recompute(sel)
	writeJSON(w, http.StatusOK, map[string]any{
		"buckets":           res.Buckets,
		"granularity":       res.Granularity,
		"active_categories": res.ActiveCategories,
		"summary":           res.Summary,
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.board.Recompute(sel)
	writeJSON(w, http.StatusOK, res.Summary)
}

// parseSelection builds the filter selection from query parameters. Missing
// date bounds default to the dataset's full range; a missing leaves parameter
// means everything is selected, while an explicitly empty one selects
// nothing.
func (h *Handler) parseSelection(r *http.Request) (filter.Selection, error) {
	def := h.board.DefaultSelection()
	q := r.URL.Query()

	start := def.Start
	end := def.End
	var err error
	if raw := q.Get("start"); raw != "" {
		if start, err = time.ParseInLocation("2006-01-02", raw, time.UTC); err != nil {
			return filter.Selection{}, eris.New("invalid start date: " + raw)
		}
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = time.ParseInLocation("2006-01-02", raw, time.UTC); err != nil {
			return filter.Selection{}, eris.New("invalid end date: " + raw)
		}
	}

	if !q.Has("leaves") {
		return filter.NewSelection(start, end, taxonomy.Leaves()), nil
	}
	var leaves []string
	for _, raw := range q["leaves"] {
		for _, l := range strings.Split(raw, ",") {
			if l = strings.TrimSpace(l); l != "" {
				leaves = append(leaves, l)
			}
		}
	}
	return filter.NewSelection(start, end, leaves), nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat" into bounds.
func parseBBox(raw string) (*geom.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, eris.New("bbox must be minLon,minLat,maxLon,maxLat")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, eris.New("invalid bbox coordinate: " + p)
		}
		vals[i] = v
	}
	return geom.NewBounds(geom.XY).Set(vals[0], vals[1], vals[2], vals[3]), nil
}

// markersInBounds keeps markers whose point falls inside the viewport.
func markersInBounds(markers []Marker, bounds *geom.Bounds) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if bounds.OverlapsPoint(geom.XY, geom.Coord{m.Longitude, m.Latitude}) {
			out = append(out, m)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("dashboard: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
