package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pricewatch/pricewatch/pkg/engine"
	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// Server provides the read API, on-demand checks and metrics endpoints.
type Server struct {
	store     storage.Storage
	engine    *engine.Engine
	scheduler *engine.Scheduler
	mux       *http.ServeMux
	logger    *slog.Logger
}

// NewServer creates an API server.
func NewServer(store storage.Storage, eng *engine.Engine, sched *engine.Scheduler, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		engine:    eng,
		scheduler: sched,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/items", s.handleListItems)
	s.mux.HandleFunc("GET /api/v1/items/{id}", s.handleGetItem)
	s.mux.HandleFunc("POST /api/v1/items/{id}/check", s.handleCheckItem)
	s.mux.HandleFunc("GET /api/v1/items/{id}/history", s.handleHistory)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats := s.engine.Stats()
	if s.scheduler != nil {
		stats.SchedulerUp = s.scheduler.Running()
	}

	total, err := s.store.CountItems(ctx)
	if err != nil {
		s.logger.Error("count items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stats":       stats,
		"total_items": total,
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := storage.ItemFilter{
		OwnerID:    r.URL.Query().Get("owner"),
		Platform:   model.Platform(r.URL.Query().Get("platform")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	if filter.Platform != "" && !filter.Platform.Valid() {
		http.Error(w, "unknown platform", http.StatusBadRequest)
		return
	}

	items, err := s.store.ListItems(ctx, filter)
	if err != nil {
		s.logger.Error("list items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	item, err := s.store.GetItem(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		s.logger.Error("get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (s *Server) handleCheckItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	id := r.PathValue("id")
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		s.logger.Error("get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	checkErr := s.engine.CheckItem(ctx, item)

	// Re-read so the response carries the fresh quote, or on failure the
	// updated last_error and consecutive_errors fields.
	updated, err := s.store.GetItem(ctx, id)
	if err != nil {
		s.logger.Error("get updated item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if checkErr != nil {
		s.logger.Warn("on-demand check failed", "item_id", id, "error", checkErr)
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{
			"error": checkErr.Error(),
			"item":  updated,
		})
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := r.PathValue("id")
	if _, err := s.store.GetItem(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		s.logger.Error("get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	from, to, err := historyBounds(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	obs, err := s.store.ListObservations(ctx, id, from, to)
	if err != nil {
		s.logger.Error("list observations", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(obs)
}

// historyBounds parses optional from/to query params (RFC 3339 or
// YYYY-MM-DD). Default window is the last 30 days.
func historyBounds(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from timestamp")
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to timestamp")
		}
		to = t
	}
	return from, to, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
