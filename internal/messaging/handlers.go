package messaging

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

type Handler struct {
	service  Service
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler builds the HTTP handler. allowOrigin decides websocket
// origins; nil accepts any.
func NewHandler(service Service, hub *Hub, allowOrigin func(origin string) bool, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin == nil || allowOrigin(origin)
			},
		},
		log: log,
	}
}

// HandleWebSocket upgrades an authenticated request into a push-only
// event stream.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, userID)
	if !h.hub.attach(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.start()
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := uuid.Parse(mux.Vars(r)["matchId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req SendMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	msg, err := h.service.SendMessage(r.Context(), matchID, userID, req.Content)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusCreated, msg)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := uuid.Parse(mux.Vars(r)["matchId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	messages, err := h.service.GetMessages(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, messages)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MarkReadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	n, err := h.service.MarkRead(r.Context(), userID, req.MessageIDs)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, MarkReadResult{Updated: n})
}

func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, UnreadCount{Count: count})
}
