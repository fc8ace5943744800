package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/imi/internal/apperr"
	"github.com/hyperjump/imi/internal/config"
	"github.com/hyperjump/imi/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Health())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var dirs []string
	if s.watch != nil {
		dirs = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, s.engine.Status(dirs))
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req models.EmbedRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	vec, err := s.engine.Embed(r.Context(), req.Text)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.EmbedResponse{Embedding: vec, Dimensions: len(vec)})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req models.IndexRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	id, err := s.engine.IndexDocument(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.IndexResponse{Success: true, ID: id})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	resp, err := s.engine.Search(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.engine.Get(id)
	if !ok {
		s.respondError(w, apperr.New(apperr.CodeEntityNotFound, "document not found", "id", id))
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.engine.Delete(id) {
		s.respondError(w, apperr.New(apperr.CodeEntityNotFound, "document not found", "id", id))
		return
	}
	s.respondJSON(w, http.StatusOK, &models.DeleteResponse{Deleted: true})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.List())
}

func (s *Server) handleClearDocuments(w http.ResponseWriter, r *http.Request) {
	n := s.engine.Clear()
	s.logger.Info("index cleared", zap.Int("documents", n))
	s.respondJSON(w, http.StatusOK, &models.ClearResponse{Cleared: n})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, errWatchDisabled())
		return
	}
	s.respondJSON(w, http.StatusOK, &models.WatchDirectoriesResponse{Directories: s.watch.Directories()})
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, errWatchDisabled())
		return
	}
	var req models.WatchDirectoryRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.Path == "" {
		s.respondError(w, apperr.New(apperr.CodeRequestInvalid, "path is required"))
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, apperr.Wrap(err, apperr.CodeRequestInvalid, "invalid path"))
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.respondError(w, apperr.New(apperr.CodeEntityNotFound, "directory not found", "path", abs))
			return
		}
		s.respondError(w, apperr.Wrap(err, apperr.CodeInternalFailure, "stat directory"))
		return
	}
	if !info.IsDir() {
		s.respondError(w, apperr.New(apperr.CodeRequestInvalid, "path is not a directory", "path", abs))
		return
	}
	if err := s.watch.AddDirectory(abs, req.SyncOrDefault()); err != nil {
		s.respondError(w, apperr.Wrap(err, apperr.CodeInternalFailure, "watch directory"))
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, &models.WatchDirectoryResponse{Path: abs, Status: "watching"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, errWatchDisabled())
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body models.WatchDirectoryRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err == nil {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, apperr.New(apperr.CodeRequestInvalid, "path is required (query or body)"))
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, apperr.Wrap(err, apperr.CodeRequestInvalid, "invalid path"))
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.respondError(w, apperr.Wrap(err, apperr.CodeInternalFailure, "unwatch directory"))
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, &models.WatchDirectoryResponse{Path: abs, Status: "removed"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, apperr.New(apperr.CodeEntityNotFound, "route not found", "path", r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusMethodNotAllowed, &models.ErrorResponse{
		Error: "method not allowed",
		Code:  string(apperr.CodeRequestInvalid),
	})
}

func errWatchDisabled() error {
	return apperr.New(apperr.CodeWatchDisabled, "watch not enabled")
}

// persistWatchDirectories saves the watched roots to the config file, if any.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(err, apperr.CodeRequestInvalid, "invalid request body")
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.CodeOf(err)
	if code == "" {
		code = apperr.CodeInternalFailure
	}
	switch {
	case code == apperr.CodeRequestCanceled:
		s.logger.Debug("request canceled", zap.Error(err))
	case status >= http.StatusInternalServerError:
		s.logger.Error("request failed", zap.String("code", string(code)), zap.Error(err))
	default:
		s.logger.Debug("request rejected", zap.String("code", string(code)), zap.Error(err))
	}
	s.respondJSON(w, status, &models.ErrorResponse{Error: err.Error(), Code: string(code)})
}
