package matching

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matches").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetMatches).Methods("GET")
	api.HandleFunc("/{id}", handler.GetMatch).Methods("GET")
	api.HandleFunc("/{id}/reveal", handler.RevealMatch).Methods("POST")

	admin := router.PathPrefix("/api/v1/admin/campaigns").Subrouter()
	admin.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	admin.HandleFunc("/{id}/generate-matches", handler.GenerateMatches).Methods("POST")
}
