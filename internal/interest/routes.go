package interest

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	crush := router.PathPrefix("/api/v1/crush-list").Subrouter()
	crush.Use(authMiddleware.Authenticate)
	crush.HandleFunc("", handler.SubmitCrushList).Methods("POST", "PUT")
	crush.HandleFunc("", handler.GetCrushList).Methods("GET")
	crush.HandleFunc("/mutual", handler.GetMutualCrushes).Methods("GET")

	swipes := router.PathPrefix("/api/v1/swipes").Subrouter()
	swipes.Use(authMiddleware.Authenticate)
	swipes.HandleFunc("/{targetUserId}", handler.RecordSwipe).Methods("POST")
}
