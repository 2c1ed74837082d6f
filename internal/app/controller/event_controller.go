package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/bizreview-backend/internal/middleware"
	ws "github.com/ikkim/bizreview-backend/internal/websocket"
)

type EventController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewEventController accepts websocket upgrades from the given origins; "*"
// allows any origin. Requests without an Origin header are always allowed.
func NewEventController(hub *ws.Hub, allowedOrigins []string) *EventController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &EventController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Stream GET /ws/events?topics=businesses,reviews
func (ctrl *EventController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		Send:   make(chan []byte, 256),
		Topics: ws.ParseTopics(c.Query("topics")),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket subscriber connected", map[string]interface{}{
		"topics": c.Query("topics"),
	})
}
