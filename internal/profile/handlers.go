//internal/profile/handlers.go

package profile

import (
	"net/http"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

// Handler handles profile-related HTTP requests
type Handler struct {
	service   Service
	campaigns campaign.ActiveFinder
}

// NewHandler creates a new profile handler
func NewHandler(service Service, campaigns campaign.ActiveFinder) *Handler {
	return &Handler{service: service, campaigns: campaigns}
}

// GetMyProfile handles getting current user's profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

// UpdateProfile handles profile updates
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
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

	user, err := h.service.UpdateProfile(r.Context(), c.ID, userID, &req)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Profile updated successfully", user)
}
