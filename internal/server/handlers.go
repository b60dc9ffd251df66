package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bibleread/internal/bible"
	"bibleread/internal/canon"
	"bibleread/internal/plan"
	"bibleread/internal/store"
)

// ── Reading ───────────────────────────────────────────────────────────────────

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"books":         s.index.Books(),
		"totalChapters": s.index.Len(),
	})
}

type chapterView struct {
	Book        canon.Book `json:"book"`
	Chapter     int        `json:"chapter"`
	GlobalIndex int        `json:"globalIndex"`
	Verses      []string   `json:"verses"`
	PrevChapter *int       `json:"prevChapter"`
	NextChapter *int       `json:"nextChapter"`
	IsTarget    bool       `json:"isTarget"`
	Highlights  []int      `json:"highlights"`
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	book, ok := s.index.Find(r.PathValue("book"))
	if !ok {
		s.writeError(w, r, bible.ErrBookNotFound)
		return
	}
	chapter, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil {
		s.badRequest(w, "chapter must be a number")
		return
	}
	globalIndex, ok := s.index.Locate(book.Abbrev, chapter)
	if !ok {
		s.writeError(w, r, bible.ErrChapterNotFound)
		return
	}

	verses, err := s.bible.Chapter(book.Abbrev, chapter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	isTarget, err := s.tracker.IsTarget(r.Context(), globalIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	highlights, err := s.highlights.Chapter(r.Context(), book.Abbrev, chapter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view := chapterView{
		Book:        book,
		Chapter:     chapter,
		GlobalIndex: globalIndex,
		Verses:      verses,
		IsTarget:    isTarget,
		Highlights:  highlights,
	}
	if chapter > 1 {
		prev := chapter - 1
		view.PrevChapter = &prev
	}
	if chapter < book.Chapters {
		next := chapter + 1
		view.NextChapter = &next
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.bible.Search(r.URL.Query().Get("q"), s.maxResults))
}

func (s *Server) handleRandomVerse(w http.ResponseWriter, r *http.Request) {
	s.rngMu.Lock()
	v := s.bible.Random(s.rng)
	s.rngMu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

// ── Plan ──────────────────────────────────────────────────────────────────────

type presetView struct {
	plan.Preset
	ChaptersPerDay float64 `json:"chaptersPerDay"`
}

type planView struct {
	plan.Snapshot
	Presets []presetView `json:"presets"`
}

func (s *Server) planView(snap plan.Snapshot) planView {
	sched := s.tracker.Scheduler()
	presets := make([]presetView, len(s.presets))
	for i, p := range s.presets {
		presets[i] = presetView{Preset: p, ChaptersPerDay: sched.ChaptersPerDay(p.Days)}
	}
	return planView{Snapshot: snap, Presets: presets}
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, status int) {
	snap, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, status, s.planView(snap))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, http.StatusOK)
}

func (s *Server) handleStartPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DurationDays int `json:"durationDays"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if _, err := s.tracker.Start(r.Context(), req.DurationDays); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusCreated)
}

func (s *Server) handleResetPlan(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteToday(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.tracker.CompleteToday(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusOK)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Book    string `json:"book"`
		Chapter int    `json:"chapter"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	book, ok := s.index.Find(req.Book)
	if !ok {
		s.writeError(w, r, bible.ErrBookNotFound)
		return
	}
	globalIndex, ok := s.index.Locate(book.Abbrev, req.Chapter)
	if !ok {
		s.writeError(w, r, bible.ErrChapterNotFound)
		return
	}
	if _, err := s.tracker.MarkChapterRead(r.Context(), globalIndex); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusOK)
}

// ── Highlights ────────────────────────────────────────────────────────────────

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	all, err := s.highlights.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	verses := make([]bible.Verse, 0, len(all))
	for _, h := range all {
		v, err := s.bible.Verse(h.Book, h.Chapter, h.Verse-1)
		if err != nil {
			s.logger.Debug("Skipping highlight missing from dataset",
				zap.String("book", h.Book), zap.Int("chapter", h.Chapter), zap.Int("verse", h.Verse))
			continue
		}
		verses = append(verses, v)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"highlights": verses})
}

func (s *Server) handleToggleHighlight(w http.ResponseWriter, r *http.Request) {
	var req store.Highlight
	if err := decodeBody(w, r, &req); err != nil {
		s.badRequest(w, "invalid request body: "+err.Error())
		return
	}
	on, err := s.highlights.Toggle(r.Context(), req)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"highlighted": on})
}
