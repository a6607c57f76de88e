package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/services"
)

// ConnectWebSocket upgrades the request to a WebSocket and registers the
// connection in the hub. Auth middleware has already set the user id,
// accepting the token as a query parameter for browser clients.
func ConnectWebSocket(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
