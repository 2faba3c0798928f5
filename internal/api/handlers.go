// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/graph"
	"github.com/sybila/biodivine/internal/jobs"
	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/store"
	"github.com/sybila/biodivine/internal/version"
)

// maxBodyBytes caps request bodies; model sources are small text files.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponent("api")
		logger.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.models.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "model store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.models.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list models failed")
		return
	}
	if models == nil {
		models = []store.Model{}
	}
	writeJSON(w, http.StatusOK, models)
}

type createModelRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	model, err := s.models.SaveModel(r.Context(), req.Name, req.Source)
	switch {
	case errors.Is(err, store.ErrInvalidModel):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("save model")
		writeError(w, http.StatusInternalServerError, "failed to store model")
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	model, err := s.models.Model(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "model not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load model failed")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// handleModelSource serves the canonical serialisation of the stored
// network as plain text, suitable for re-import.
func (s *Server) handleModelSource(w http.ResponseWriter, r *http.Request) {
	model, err := s.models.Model(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "model not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load model failed")
		return
	}
	network, err := model.Network()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored model does not parse")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.aeon", model.Slug))
	if _, err := io.WriteString(w, network.String()); err != nil {
		logger := log.WithComponent("api")
		logger.Warn().Err(err).Msg("write model source")
	}
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.models.DeleteModel(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "model not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete model failed")
		return
	}
	// Cached analyses of a deleted model are stale.
	s.results.Invalidate(r.Context(), cache.ModelPrefix(id))
	w.WriteHeader(http.StatusNoContent)
}

type submitAnalysisRequest struct {
	Direction    string `json:"direction"`
	InitialState uint32 `json:"initial_state"`
	Workers      int    `json:"workers,omitempty"`
}

func (s *Server) handleSubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	var req submitAnalysisRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	job, err := s.runner.Submit(r.Context(), jobs.Request{
		ModelID:      chi.URLParam(r, "id"),
		Direction:    jobs.Direction(req.Direction),
		InitialState: graph.State(req.InitialState),
		Workers:      req.Workers,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "model not found")
		return
	case errors.Is(err, jobs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	case errors.Is(err, jobs.ErrShutdown):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	list, err := s.runner.Jobs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	if list == nil {
		list = []jobs.Job{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.runner.Job(chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load job failed")
		return
	}
	writeJSON(w, http.StatusOK, job)
}
