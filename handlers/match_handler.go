package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/league-simulator/middleware"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type substitutionInput struct {
	PlayerOut int `json:"player_out"`
	PlayerIn  int `json:"player_in"`
}

func (h *MatchHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	state, err := h.matchService.StartRound(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	result, err := h.matchService.Advance(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) CurrentRound(w http.ResponseWriter, r *http.Request) {
	state := h.matchService.Current()
	if state == nil {
		notFoundResponse(w, r)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	live, err := h.matchService.Live(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, live, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitSquad stores the squad of the manager's team for the next kickoff.
func (h *MatchHandler) SubmitSquad(w http.ResponseWriter, r *http.Request) {
	teamID, err := middleware.GetTeamIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}
	var input models.SquadSubmission
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.matchService.SubmitSquad(r.Context(), teamID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) Substitute(w http.ResponseWriter, r *http.Request) {
	teamID, err := middleware.GetTeamIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}
	var input substitutionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerOut <= 0 || input.PlayerIn <= 0 {
		badRequestResponse(w, r, errors.New("player_out and player_in are required"))
		return
	}
	if err := h.matchService.Substitute(r.Context(), teamID, input.PlayerOut, input.PlayerIn); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) Resume(w http.ResponseWriter, r *http.Request) {
	teamID, err := middleware.GetTeamIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}
	if err := h.matchService.Resume(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
