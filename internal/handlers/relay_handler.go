package handlers

import (
	"context"
	"net/http"

	"github.com/iamvtyagi/99acres/internal/relay"
	jwtutil "github.com/iamvtyagi/99acres/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// RelayHandler upgrades authenticated requests to relay connections.
type RelayHandler struct {
	Hub       *relay.Hub
	JWTSecret string
	upgrader  websocket.Upgrader
}

func NewRelayHandler(hub *relay.Hub, jwtSecret string, allowedOrigins []string) *RelayHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &RelayHandler{
		Hub:       hub,
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// GET /ws?token=<jwt>
func (h *RelayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondFail(w, http.StatusUnauthorized, "Missing token")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("Relay auth failed")
		respondFail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Relay upgrade failed")
		return
	}

	log.WithField("userID", claims.UserID).Info("Relay connection opened")
	// The request context ends with the handler; the connection outlives it.
	go relay.NewClient(h.Hub, conn, claims.UserID).Serve(context.Background())
}
