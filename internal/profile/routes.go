// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/profile").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("", handler.UpdateProfile).Methods("PUT")
}
