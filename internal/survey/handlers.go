package survey

import (
	"net/http"

	"github.com/google/uuid"

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

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.GetActive(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	questions, err := h.service.ListQuestions(r.Context(), c.ID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, groupByCategory(questions))
}

func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto SubmitResponseDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.campaigns.GetActive(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), c.ID, userID, uuid.MustParse(dto.QuestionID), AnswerInput{
		AnswerText:  dto.AnswerText,
		AnswerValue: dto.AnswerValue,
	})
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Response saved", resp)
}

func (h *Handler) GetResponses(w http.ResponseWriter, r *http.Request) {
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

	responses, err := h.service.ListResponses(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, responses)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
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

	progress, err := h.service.GetProgress(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, progress)
}

func (h *Handler) CompleteSurvey(w http.ResponseWriter, r *http.Request) {
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

	progress, err := h.service.CompleteSurvey(r.Context(), c.ID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Survey completed", progress)
}
