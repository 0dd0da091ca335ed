package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wachat/wachat-backend/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is unauthenticated and served cross-origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS returns the handler for GET /ws - upgrades the connection and
// attaches it to the hub. No handshake payload is required; every client
// receives every event and filters by wa_id itself.
func ServeWS(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return
		}
		realtime.NewClient(hub, conn).Start()
	}
}
