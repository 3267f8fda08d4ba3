package campaign

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

// RegisterRoutes registers campaign routes. Phase information is public.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	public := router.PathPrefix("/api/v1/campaigns").Subrouter()
	public.HandleFunc("/active", handler.GetActiveCampaign).Methods("GET")
	public.HandleFunc("/active/check-action/{action}", handler.CheckAction).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin/campaigns").Subrouter()
	admin.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	admin.HandleFunc("/{id}/stats", handler.GetStats).Methods("GET")
}
