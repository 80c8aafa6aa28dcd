// internal/server/websocket.go
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chaibuddies/internal/session"
)

// WSEvent is the frame sent to browser clients
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// handleWebSocket streams session events until the client leaves or the
// session is deleted. Message frames arrive in id order. A "snapshot" frame
// after the first one means events were skipped and the client should
// replace its state with the payload.
func (s *Server) handleWebSocket(c *gin.Context) {
	e, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Printf("Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := e.session.Subscribe(64)
	defer unsubscribe()

	// Reader detects the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := write(conn, WSEvent{Type: "snapshot", Payload: viewOf(e.session)}); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			frame := eventFrame(ev)
			if ev.Kind == session.EventResync {
				frame = WSEvent{Type: "snapshot", Payload: viewOf(e.session)}
			}
			if err := write(conn, frame); err != nil {
				s.logger.Printf("WebSocket error: %v", err)
				return
			}
		case <-e.closed:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(writeWait))
			return
		case <-gone:
			return
		}
	}
}

func eventFrame(ev session.Event) WSEvent {
	switch ev.Kind {
	case session.EventMessage:
		return WSEvent{Type: string(ev.Kind), Payload: ev.Message}
	default:
		return WSEvent{Type: string(ev.Kind), Payload: gin.H{"state": ev.State}}
	}
}

func write(conn *websocket.Conn, ev WSEvent) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
