package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/order"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/switcher"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Error codes sent besides the reorder codes
const (
	CodeInvalidMessage = "invalid_message"
	CodeUnknownType    = "unknown_message_type"
	CodeSessionClosed  = "session_closed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// ServerMessage is sent from server to client
type ServerMessage struct {
	Type       string            `json:"type"`
	Projection *types.Projection `json:"projection,omitempty"`
	Code       string            `json:"code,omitempty"`
	Message    string            `json:"message,omitempty"`
	Timestamp  int64             `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	sessions *session.Manager
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *session.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, logger: logger}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and streams the session's renders
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := c.Param("id")
	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": session.ErrSessionNotFound.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:      uuid.NewString(),
		conn:    conn,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		ended:   sess.Done(),
		logger:  h.logger.With(zap.String("session_id", sessionID)),
		metrics: h.metrics,
	}
	cl.logger = cl.logger.With(zap.String("conn_id", cl.id))
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	cl.logger.Info("WebSocket connected")

	sw := sess.Switcher()
	cancel := sw.Watch(cl.push)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cl.writePump()
	}()

	h.readPump(cl, sw)

	cancel()
	close(cl.done)
	wg.Wait()
	conn.Close()
	cl.logger.Info("WebSocket disconnected")
}

// readPump handles inbound messages until the connection fails or closes
func (h *Handler) readPump(cl *client, sw *switcher.Switcher) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg types.WSMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		cl.record("in", knownType(msg.Type))

		switch msg.Type {
		case "drag_start":
			sw.Dispatch(switcher.DragStart{ID: msg.MovedID, Index: msg.Index})
		case "drag_update":
			sw.Dispatch(switcher.DragUpdate{ID: msg.MovedID, Index: msg.Index})
		case "drag_end":
			h.handleDragEnd(cl, sw, msg)
		case "ping":
			_ = cl.send(ServerMessage{Type: "pong", Timestamp: time.Now().Unix()})
		default:
			_ = cl.sendError(CodeUnknownType, "unknown message type: "+msg.Type)
		}
	}
}

func (h *Handler) handleDragEnd(cl *client, sw *switcher.Switcher, msg types.WSMessage) {
	if msg.FromIndex == nil || msg.ToIndex == nil {
		_ = cl.sendError(CodeInvalidMessage, "drag_end requires from_index and to_index")
		return
	}

	res := sw.Dispatch(switcher.DragEnd{Event: types.ReorderEvent{
		MovedID:   msg.MovedID,
		FromIndex: *msg.FromIndex,
		ToIndex:   *msg.ToIndex,
	}})
	if res.Err != nil {
		_ = cl.sendError(order.Code(res.Err), res.Err.Error())
	}
}

// knownType bounds the message type label
func knownType(t string) string {
	switch t {
	case "drag_start", "drag_update", "drag_end", "ping":
		return t
	default:
		return "unknown"
	}
}

// client is one WebSocket connection
type client struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex // One writer at a time

	mu     sync.Mutex
	latest *types.Projection // Protected by mu
	notify chan struct{}
	done   chan struct{}
	ended  <-chan struct{} // Closed with the session

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// push replaces the pending projection and wakes the writer
func (cl *client) push(p types.Projection) {
	cl.mu.Lock()
	cl.latest = &p
	cl.mu.Unlock()

	select {
	case cl.notify <- struct{}{}:
	default:
	}
}

func (cl *client) pop() (*types.Projection, bool) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	p := cl.latest
	cl.latest = nil
	return p, p != nil
}

// writePump sends renders and keep-alive pings until done is closed or the
// session ends
func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.ended:
			cl.logger.Debug("Session ended, closing stream")
			cl.writeMu.Lock()
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, CodeSessionClosed))
			cl.writeMu.Unlock()
			if err != nil {
				_ = cl.conn.Close()
				return
			}
			// The reader exits on the peer's close reply or this deadline
			_ = cl.conn.SetReadDeadline(time.Now().Add(writeWait))
			return
		case <-cl.done:
			cl.writeMu.Lock()
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			cl.writeMu.Unlock()
			return
		case <-cl.notify:
			p, ok := cl.pop()
			if !ok {
				continue
			}
			if err := cl.send(ServerMessage{Type: "render", Projection: p, Timestamp: time.Now().Unix()}); err != nil {
				cl.logger.Debug("Render write failed", zap.Error(err))
				// Unblock the reader
				_ = cl.conn.Close()
				return
			}
		case <-ticker.C:
			cl.writeMu.Lock()
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.writeMu.Unlock()
			if err != nil {
				_ = cl.conn.Close()
				return
			}
		}
	}
}

func (cl *client) send(msg ServerMessage) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()

	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := cl.conn.WriteJSON(msg); err != nil {
		return err
	}
	cl.record("out", msg.Type)
	return nil
}

func (cl *client) sendError(code, message string) error {
	return cl.send(ServerMessage{
		Type:      "error",
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

func (cl *client) record(direction, msgType string) {
	if cl.metrics != nil {
		cl.metrics.RecordWSMessage(direction, msgType)
	}
}
