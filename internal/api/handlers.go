// Package api exposes the league over a read-only JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/league"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/service"
)

// Handler serves league queries
type Handler struct {
	svc    *service.RaceDayService
	logger *logrus.Entry
}

// NewHandler creates a new API handler
func NewHandler(svc *service.RaceDayService, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{svc: svc, logger: log.WithField("component", "api")}
}

// Router builds the chi router. Empty origins allow any origin.
func (h *Handler) Router(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/horses", h.ListHorses)
		r.Get("/horses/{horseID}", h.GetHorse)
		r.Get("/races", h.ListRaces)
		r.Get("/races/{raceID}", h.GetRace)
		r.Get("/races/{raceID}/replay", h.ReplayRace)
		r.Post("/races/{raceID}/settle", h.SettleBet)
		r.Get("/odds", h.GetOdds)
	})
	return r
}

// ListHorses returns the active pool, or the top n by wins with ?top=n.
// ?retired=true lists retired horses instead.
func (h *Handler) ListHorses(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.svc.State(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("retired") == "true" {
		respondJSON(w, http.StatusOK, nonNil(state.Retired))
		return
	}
	respondJSON(w, http.StatusOK, league.Top(state, top))
}

// GetHorse returns one horse, active or retired
func (h *Handler) GetHorse(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	horse, ok := state.Horse(chi.URLParam(r, "horseID"))
	if !ok {
		respondError(w, http.StatusNotFound, "horse not found")
		return
	}
	respondJSON(w, http.StatusOK, horse)
}

// ListRaces returns race records newest first, limited by ?limit=n (default 20)
func (h *Handler) ListRaces(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.svc.State(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	races := make([]models.RaceRecord, 0, len(state.Races))
	for i := len(state.Races) - 1; i >= 0; i-- {
		if limit > 0 && len(races) == limit {
			break
		}
		races = append(races, state.Races[i])
	}
	respondJSON(w, http.StatusOK, races)
}

// GetRace returns one race record by id or "last"
func (h *Handler) GetRace(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.FindRace(r.Context(), chi.URLParam(r, "raceID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// ReplayRace re-runs a recorded race from its seed
func (h *Handler) ReplayRace(w http.ResponseWriter, r *http.Request) {
	replay, err := h.svc.Replay(r.Context(), chi.URLParam(r, "raceID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, replayResponse{
		Race:    replay.Record,
		Summary: replay.Summary,
		Matches: replay.Matches,
	})
}

// SettleBet settles a posted bet against a recorded race
func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	var bet models.Bet
	if err := json.NewDecoder(r.Body).Decode(&bet); err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet: "+err.Error())
		return
	}

	replay, err := h.svc.Replay(r.Context(), chi.URLParam(r, "raceID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	settlement, err := pricing.Settle(bet, replay.Summary)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settlement)
}

// GetOdds prices the next field. ?sims and ?distance override the configured values.
func (h *Handler) GetOdds(w http.ResponseWriter, r *http.Request) {
	sims, err := intParam(r, "sims", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	distance := 0.0
	if v := r.URL.Query().Get("distance"); v != "" {
		if distance, err = strconv.ParseFloat(v, 64); err != nil || distance <= 0 {
			respondError(w, http.StatusBadRequest, "distance must be a positive number")
			return
		}
	}

	card, err := h.svc.NextCard(r.Context(), distance, sims)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newOddsResponse(card))
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidConfiguration):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func nonNil(horses []models.Horse) []models.Horse {
	if horses == nil {
		return []models.Horse{}
	}
	return horses
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
