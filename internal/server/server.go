// Package server exposes the reader over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"bibleread/internal/bible"
	"bibleread/internal/canon"
	"bibleread/internal/plan"
	"bibleread/internal/store"
)

// Options wires the server's collaborators.
type Options struct {
	Tracker    *plan.Tracker
	Bible      *bible.Dataset
	Highlights *store.Highlights
	Presets    []plan.Preset
	MaxResults int
	Logger     *zap.Logger
	Rand       *rand.Rand
}

// Server serves the reader API.
type Server struct {
	tracker    *plan.Tracker
	index      *canon.Index
	bible      *bible.Dataset
	highlights *store.Highlights
	presets    []plan.Preset
	maxResults int
	logger     *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(opts Options) *Server {
	s := &Server{
		tracker:    opts.Tracker,
		index:      opts.Tracker.Scheduler().Index(),
		bible:      opts.Bible,
		highlights: opts.Highlights,
		presets:    opts.Presets,
		maxResults: opts.MaxResults,
		logger:     opts.Logger,
		rng:        opts.Rand,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if len(s.presets) == 0 {
		s.presets = plan.DefaultPresets
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", s.handleBooks)
	mux.HandleFunc("GET /api/books/{book}/chapters/{chapter}", s.handleChapter)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/verse/random", s.handleRandomVerse)

	mux.HandleFunc("GET /api/plan", s.handlePlan)
	mux.HandleFunc("POST /api/plan", s.handleStartPlan)
	mux.HandleFunc("DELETE /api/plan", s.handleResetPlan)
	mux.HandleFunc("POST /api/plan/complete", s.handleCompleteToday)
	mux.HandleFunc("POST /api/plan/read", s.handleMarkRead)

	mux.HandleFunc("GET /api/highlights", s.handleHighlights)
	mux.HandleFunc("POST /api/highlights/toggle", s.handleToggleHighlight)

	return s.withRequestID(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Warn("Encoding response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plan.ErrInvalidDuration):
		status = http.StatusBadRequest
	case errors.Is(err, plan.ErrNoPlan),
		errors.Is(err, bible.ErrBookNotFound),
		errors.Is(err, bible.ErrChapterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, plan.ErrNotTarget),
		errors.Is(err, plan.ErrStaleAssignment),
		errors.Is(err, plan.ErrCompleted):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
