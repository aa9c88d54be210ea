package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/service"
	"github.com/yourusername/bracket-oracle/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithField("error", err).Error("Failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.teams.TopTeams(r.Context(), queryLimit(r, 25))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, teams)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	team, err := s.teams.GetTeam(r.Context(), name)
	if errors.Is(err, models.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "team not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, team)
}

func (s *Server) handleRebuildRatings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.teams.RebuildRatings(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.Flush()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"rated_teams": len(entries),
		"ratings":     entries,
	})
}

func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req service.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Deterministic requests are safe to serve from cache
	if req.Seed != 0 {
		if cached, ok := s.cache.Get(req); ok {
			s.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	sim, err := s.sims.RunSimulation(r.Context(), req, nil)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if req.Seed != 0 {
		s.cache.Set(req, sim)
	}
	s.respondJSON(w, http.StatusCreated, sim)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	sims, err := s.sims.ListRecent(r.Context(), queryLimit(r, 20))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, sims)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	sim, err := s.sims.GetSimulation(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "simulation not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, sim)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	if err := s.sims.DeleteSimulation(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "simulation not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

type validationRequest struct {
	Events []validation.Event `json:"events"`
}

func (s *Server) handleRunValidation(w http.ResponseWriter, r *http.Request) {
	var req validationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Events) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one event is required")
		return
	}
	for _, event := range req.Events {
		if event.Name == "" || event.ActualWinner == "" {
			s.respondError(w, http.StatusBadRequest, "events require a name and actual winner")
			return
		}
	}

	batch, err := s.validator.ValidateEvents(r.Context(), req.Events)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, batch)
}
