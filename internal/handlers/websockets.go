package handlers

import (
	"net/http"
	"time"

	"cnc_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	closeReasonNoSession = "unknown session"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string    `json:"type"`
	HTML  string    `json:"html,omitempty"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. The page is served from the same origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect streams every render of the session named by ?sid= to the page.
// An unknown session is closed with a policy-violation code so the page
// reloads and opens a new one.
func (h *Handler) wsConnect(c *gin.Context) {
	sid := c.Query("sid")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	d, err := h.services.Get(sid)
	if err != nil {
		if h.log != nil {
			h.log.Infow("ws_unknown_session", "session", sid)
		}
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, closeReasonNoSession)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	events, cancel := d.Subscribe()
	defer cancel()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// Send the current view immediately.
	if err := h.sendView(conn, d); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "session", sid)
		}
		return
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err, "session", sid)
				}
				return
			}
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsEnvelope{Type: ev.Type, HTML: ev.HTML, At: ev.At}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "session", sid)
				}
				return
			}
		}
	}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendView writes a fresh render of the grid and the current dialog
// with a write deadline. A reconnecting page gets both.
func (h *Handler) sendView(conn *websocket.Conn, d service.Dashboard) error {
	html, err := d.View()
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_view_failed", "err", err, "session", d.ID())
		}
		return err
	}
	modal, err := d.ModalView()
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_modal_view_failed", "err", err, "session", d.ID())
		}
		return err
	}
	now := time.Now()
	_ = conn.SetWriteDeadline(now.Add(writeWait))
	if err := conn.WriteJSON(wsEnvelope{Type: service.EventRender, HTML: string(html), At: now}); err != nil {
		return err
	}
	return conn.WriteJSON(wsEnvelope{Type: service.EventModal, HTML: string(modal), At: now})
}
