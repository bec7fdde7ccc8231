package handlers

import (
	"context"
	"net/http"
	"time"

	"weather_station/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	wsTypeStatus   = "status"
	wsTypeSnapshot = "snapshot"
	wsViewSnapshot = "snapshot"
)

type wsEnvelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// The stream is read-only, any origin may subscribe.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream station status
// @Description  Upgrades to a WebSocket, sends the current status, then pushes {"type":"status","data":...} each time the engine publishes. view=snapshot sends {"type":"snapshot","data":<weather snapshot>} instead.
// @Tags         station
// @Param        view  query  string  false  "Payload"  Enums(status,snapshot)
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	encode := statusEnvelope
	if c.Query("view") == wsViewSnapshot {
		encode = snapshotEnvelope
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsLog("ws_upgrade_failed", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// subscribe before the first read so no publish falls between them
	updates := h.services.Monitoring.Watch(ctx)

	st, err := h.services.Monitoring.GetStatus(ctx)
	if err != nil {
		h.wsLog("ws_get_status_failed", err)
		return
	}
	if err := writeEnvelope(conn, encode(st)); err != nil {
		h.wsLog("ws_write_failed_initial", err)
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.wsLog("ws_ping_failed", err)
				return
			}
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEnvelope(conn, encode(st)); err != nil {
				h.wsLog("ws_write_failed", err)
				return
			}
		}
	}
}

func statusEnvelope(st service.StationStatus) wsEnvelope {
	return wsEnvelope{Type: wsTypeStatus, Data: st}
}

func snapshotEnvelope(st service.StationStatus) wsEnvelope {
	return wsEnvelope{Type: wsTypeSnapshot, Data: st.Snapshot}
}

// startReader drains incoming frames so pongs are handled and a closed peer is noticed.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.wsLog("ws_read_closed", err)
			return
		}
	}
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

func (h *Handler) wsLog(msg string, err error) {
	if h.log != nil {
		h.log.Infow(msg, "err", err)
	}
}
