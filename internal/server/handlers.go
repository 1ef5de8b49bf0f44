package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/router"
	"github.com/hyperjump/kotae/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := s.answerer.Answer(r.Context(), req.Messages)
	switch {
	case err == nil:
	case errors.Is(err, ranking.ErrInvalidArgument):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, router.ErrGenerationFailure):
		s.logger.Error("chat: generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		s.logger.Error("chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Debug("chat answered",
		zap.String("id", answer.ID),
		zap.String("source", string(answer.Source.Type)),
		zap.Float64("match_score", answer.Source.MatchScore))
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultListLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	var list *models.EntryList
	if query := strings.TrimSpace(q.Get("q")); query != "" {
		list, err = s.entries.Search(r.Context(), query, limit)
	} else {
		list, err = s.entries.List(r.Context(), offset, limit)
	}
	if err != nil {
		s.logger.Error("list entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.entries.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		s.logger.Error("get entry failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.entries.Refresh(r.Context())
	if errors.Is(err, knowledge.ErrNoSource) {
		s.respondError(w, http.StatusNotImplemented, "no source configured")
		return
	}
	if err != nil {
		s.logger.Error("refresh failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.entries.Info(r.Context())
	if err != nil {
		s.logger.Error("status: snapshot info failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"entries": info.Count,
		"version": info.Version,
		"source":  s.entries.SourceName(),
	}
	if !info.LoadedAt.IsZero() {
		resp["loaded_at"] = info.LoadedAt
	}

	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"match_threshold":  s.config.Matching.MatchThreshold,
			"context_size":     s.config.Matching.ContextSize,
			"max_entries":      s.config.Matching.MaxEntries,
			"model":            s.config.Generation.Model,
			"database_path":    s.config.Storage.DatabasePath,
			"bleve_index_path": s.config.Storage.BleveIndexPath,
		}
		paths := append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Storage.BleveIndexPath)
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
