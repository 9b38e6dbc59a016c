package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Jargon-IDSP/backend-sub001/cache"
	"github.com/Jargon-IDSP/backend-sub001/pick"
	"github.com/Jargon-IDSP/backend-sub001/shared"
	"github.com/Jargon-IDSP/backend-sub001/store"
)

func (s *Server) handleIndustries(w http.ResponseWriter, r *http.Request) {
	handleWithCache(s, w, r, "industries:all", industriesTTL, s.repo.ListIndustries)
}

func (s *Server) handleLevelTerms(w http.ResponseWriter, r *http.Request) {
	levelStr := mux.Vars(r)["levelId"]
	levelID, err := strconv.ParseInt(levelStr, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "levelId must be an integer")
		return
	}

	// The language parameter is part of the key shape whether present or
	// not, so bare and localized requests for a level stay distinct keys.
	var langParam any
	loc := store.LocaleEnglish
	if raw := r.URL.Query().Get("language"); raw != "" {
		loc, err = store.ParseLocale(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "unsupported language")
			return
		}
		langParam = string(loc)
	}

	key := cache.BuildKey("level", map[string]any{
		"levelId":  levelStr,
		"language": langParam,
	})

	handleWithCache(s, w, r, key, levelTermsTTL, func(ctx context.Context) ([]store.LocalizedTerm, error) {
		terms, err := s.repo.ListTerms(ctx, store.TermFilter{LevelID: &levelID})
		if err != nil {
			return nil, err
		}
		localized := make([]store.LocalizedTerm, len(terms))
		for i := range terms {
			localized[i] = terms[i].Localize(loc)
		}
		return localized, nil
	})
}

func (s *Server) handleGetTerm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	term, err := s.repo.GetTerm(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "term not found")
		return
	}
	if err != nil {
		s.log.Error("get term failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondData(w, term)
}

func (s *Server) handleRandomTerm(w http.ResponseWriter, r *http.Request) {
	var filter pick.Filter

	q := r.URL.Query()
	if raw := q.Get("industryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "industryId must be an integer")
			return
		}
		filter.IndustryID = &id
	}
	if raw := q.Get("levelId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "levelId must be an integer")
			return
		}
		filter.LevelID = &id
	}

	if s.index == nil {
		s.respondError(w, http.StatusServiceUnavailable, "random selection unavailable")
		return
	}

	id, ok := s.index.Pick(r.Context(), filter)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no term matches the filters")
		return
	}

	term, err := s.repo.GetTerm(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		// The index outlived the row; rebuild it on the next pick.
		s.index.Invalidate()
		s.respondError(w, http.StatusNotFound, "no term matches the filters")
		return
	}
	if err != nil {
		s.log.Error("random term fetch failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondData(w, term)
}

func (s *Server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	st := s.orch.Store()
	st.Flush()
	st.ResetStats()

	// Best-effort flush of the shared read-through tier.
	if s.sharedC != nil {
		if keys, outcome := s.sharedC.TryKeys(r.Context(), "req:*"); outcome == shared.OutcomeOK && len(keys) > 0 {
			s.sharedC.TryDel(r.Context(), keys...)
		}
	}

	if s.index != nil {
		s.index.Invalidate()
	}

	s.respondJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Cache cleared successfully",
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Stats   cache.Snapshot `json:"stats"`
	}{
		Success: true,
		Stats:   s.orch.Store().Stats(),
	})
}
