package handler

import (
	"net/http"

	"cityvoice/backend/internal/hub"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeFeed upgrades a staff connection onto the live triage feed.
func (h *Handler) ServeFeed(c *gin.Context) {
	claims := claimsFrom(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade failed")
		return
	}

	clientID := claims.Subject + "-" + uuid.New().String()[:8]
	client := hub.NewWebSocketClient(clientID, conn, h.Hub)

	if !h.Hub.Register(client) {
		log.WithField("client_id", clientID).Warn("feed hub stopped, refusing connection")
		conn.Close()
		return
	}
	log.WithFields(log.Fields{"client_id": clientID, "role": claims.Role}).Info("staff feed connected")

	client.Run()
}
