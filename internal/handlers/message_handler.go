package handlers

import (
	"net/http"

	"github.com/iamvtyagi/99acres/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type MessageHandler struct {
	Service *services.MessagingService
}

func NewMessageHandler(service *services.MessagingService) *MessageHandler {
	return &MessageHandler{Service: service}
}

// GET /api/messages/conversations
func (h *MessageHandler) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	conversations, err := h.Service.ListConversations(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, conversations, len(conversations))
}

// GET /api/messages/conversations/{conversationId}
func (h *MessageHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	messages, err := h.Service.OpenConversation(r.Context(), mux.Vars(r)["conversationId"], userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, messages, len(messages))
}

// POST /api/messages
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), userID, in.ReceiverID, in.Content)
	if err != nil {
		log.WithError(err).WithField("senderID", userID.Hex()).Warn("Send message rejected")
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, msg)
}

// DELETE /api/messages/{id}
func (h *MessageHandler) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.Service.DeleteMessage(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, struct{}{})
}
