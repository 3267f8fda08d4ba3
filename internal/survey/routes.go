package survey

import (
	"github.com/gorilla/mux"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/survey").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/questions", handler.GetQuestions).Methods("GET")
	api.HandleFunc("/responses", handler.SubmitResponse).Methods("POST")
	api.HandleFunc("/responses", handler.GetResponses).Methods("GET")
	api.HandleFunc("/progress", handler.GetProgress).Methods("GET")
	api.HandleFunc("/complete", handler.CompleteSurvey).Methods("POST")
}
