package matching

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

type Handler struct {
	service   Service
	campaigns campaign.ActiveFinder
}

func NewHandler(service Service, campaigns campaign.ActiveFinder) *Handler {
	return &Handler{service: service, campaigns: campaigns}
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c, err := h.campaigns.GetActive(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	matches, err := h.service.GetMatchesForUser(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, matches)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	match, err := h.service.GetMatch(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, match)
}

func (h *Handler) RevealMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	match, err := h.service.RevealMatch(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Match revealed", match)
}

// GenerateMatches is the admin trigger for a generation run.
func (h *Handler) GenerateMatches(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid campaign ID")
		return
	}

	summary, err := h.service.GenerateMatches(r.Context(), campaignID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Matches generated", summary)
}
