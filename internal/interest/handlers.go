package interest

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

// SubmitCrushList serves both POST and PUT; either replaces the list.
func (h *Handler) SubmitCrushList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SubmitCrushListRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.campaigns.GetActive(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	result, err := h.service.SubmitCrushList(r.Context(), c.ID, userID, req.Entries)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Crush list saved", result)
}

func (h *Handler) GetCrushList(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.service.GetCrushList(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, entries)
}

func (h *Handler) GetMutualCrushes(w http.ResponseWriter, r *http.Request) {
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

	mutual, err := h.service.GetMutualCrushes(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, mutual)
}

func (h *Handler) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, err := uuid.Parse(mux.Vars(r)["targetUserId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req SwipeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.campaigns.GetActive(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	result, err := h.service.RecordSwipe(r.Context(), c.ID, userID, targetID, req.Kind)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}
