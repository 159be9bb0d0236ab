package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/eventbus"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // thin adapter, no browser-origin restriction
	},
}

// wireEvent is the {"type":"event","event":{...}} envelope spec §6 mandates.
type wireEvent struct {
	Type  string       `json:"type"`
	Event models.Event `json:"event"`
}

// subscribedEvent is the one-time confirmation sent right after upgrade.
type subscribedEvent struct {
	Type      string    `json:"type"`
	ClientID  string    `json:"clientId"`
	Timestamp time.Time `json:"timestamp"`
}

// handleEvents upgrades to a WebSocket and streams Event Bus events,
// optionally narrowed to one task via ?taskId= (spec §6: WebSocket
// /events?taskId=...).
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := s.bus.Subscribe(eventbus.Filter{TaskID: c.Query("taskId")})
	defer s.bus.Unsubscribe(sub.ID)

	clientID := uuid.NewString()
	if err := conn.WriteJSON(subscribedEvent{Type: "subscribed", ClientID: clientID, Timestamp: time.Now().UTC()}); err != nil {
		return
	}

	go drainReads(conn)

	for evt := range sub.Events {
		if err := conn.WriteJSON(wireEvent{Type: "event", Event: evt}); err != nil {
			s.log.Debug("websocket write failed, closing", "client_id", clientID, "error", err)
			return
		}
	}
}

// drainReads discards inbound frames so the connection's read deadline
// machinery notices a client disconnect; this adapter has no
// client-to-server message protocol.
func drainReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
