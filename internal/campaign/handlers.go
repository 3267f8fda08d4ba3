package campaign

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetActiveCampaign(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ActiveView(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, view)
}

func (h *Handler) CheckAction(w http.ResponseWriter, r *http.Request) {
	action := Action(mux.Vars(r)["action"])

	c, err := h.service.GetActive(r.Context())
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			utils.RespondWithData(w, http.StatusOK, Decision{Action: action, Reason: "No active campaign"})
			return
		}
		utils.RespondWithAppError(w, r, err)
		return
	}

	decision, err := h.service.Check(r.Context(), c.ID, action)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, decision)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid campaign ID")
		return
	}

	stats, err := h.service.Stats(r.Context(), campaignID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}
