package ws

import (
	"team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServeWs upgrades a page connection. The page id comes from the pageId
// query parameter; the profile comes from the profile cookie.
func ServeWs(hub *Hub, c *gin.Context) {
	scope := middleware.Scope(c)
	if scope.PageID == "" {
		c.Error(errors.NewBadRequestError("PAGE_ID_REQUIRED", "pageId is required"))
		return
	}

	log := logger.FromContext(c.Request.Context())

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Error upgrading connection", "error", err.Error())
		return
	}

	client := &Client{
		ProfileID: scope.ProfileID,
		PageID:    scope.PageID,
		Conn:      conn,
		Hub:       hub,
		send:      make(chan []byte, sendBuffer),
		log:       log,
	}

	if err := hub.attach(c.Request.Context(), client); err != nil {
		log.LogError(err, "Failed to read identity for page")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "identity unavailable"))
		conn.Close()
		return
	}

	if !hub.add(client) {
		client.close()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// Handler adapts ServeWs for router registration
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ServeWs(h, c)
	}
}
