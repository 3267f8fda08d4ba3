package messaging

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/messages").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Static paths first so they are not captured by {matchId}.
	api.HandleFunc("/ws", handler.HandleWebSocket).Methods("GET")
	api.HandleFunc("/read", handler.MarkRead).Methods("PUT")
	api.HandleFunc("/unread-count", handler.GetUnreadCount).Methods("GET")

	api.HandleFunc("/{matchId}", handler.SendMessage).Methods("POST")
	api.HandleFunc("/{matchId}", handler.GetMessages).Methods("GET")
}
