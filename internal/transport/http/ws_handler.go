package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"quizpulse/internal/app"
	"quizpulse/internal/domain"
)

// closeRoomNotFound is the close code sent when the room code does not
// resolve; clients distinguish it from normal closure.
const closeRoomNotFound = 4000

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

type WSHandler struct {
	service  *app.RoomService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionIdx  *int   `json:"optionIdx"`
}

// wsConn adapts a websocket to app.Conn. Sends are queued on a buffered
// channel drained by a single writer goroutine, so the session manager never
// blocks on a slow socket; a full buffer drops the frame for this connection
// only.
type wsConn struct {
	conn *websocket.Conn
	send chan app.Event
	done chan struct{}
	once sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	c := &wsConn{
		conn: conn,
		send: make(chan app.Event, 32),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *wsConn) Send(e app.Event) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- e:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) writeLoop() {
	for {
		select {
		case e := <-c.send:
			if err := c.conn.WriteJSON(e); err != nil {
				log.Printf("ws write error: %v", err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) close() {
	c.once.Do(func() { close(c.done) })
}

// ServeWS upgrades the request and wires the connection into the session
// manager. Expected query parameters: room (join code), user (participant
// identity), and optionally name (display name, defaults to user).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("room")
	participantID := r.URL.Query().Get("user")
	nickname := r.URL.Query().Get("name")
	if roomCode == "" || participantID == "" {
		http.Error(w, "missing room or user", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := newWSConn(conn)
	defer c.close()

	if err := h.service.Connect(roomCode, participantID, nickname, c); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			msg := websocket.FormatCloseMessage(closeRoomNotFound, "room not found")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
		return
	}
	defer h.service.Disconnect(roomCode, participantID, c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			// Malformed frames are dropped, never fatal to the connection.
			continue
		}
		cmd, ok := decodeCommand(inbound)
		if !ok {
			continue
		}
		if err := h.service.HandleCommand(roomCode, participantID, cmd); err != nil {
			_ = c.Send(app.Event{Type: app.EventError, Payload: app.ErrorPayload{Message: err.Error()}})
		}
	}
}

// decodeCommand maps a wire envelope onto a state machine command. The
// command set is closed: anything else is a protocol error and is ignored.
func decodeCommand(msg inboundMessage) (app.Command, bool) {
	switch msg.Type {
	case app.CmdStartGame, app.CmdSubmitComplete, app.CmdForceSubmit, app.CmdEndGame:
		return app.Command{Type: msg.Type}, true
	case app.CmdSubmitAnswer:
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.OptionIdx == nil {
			return app.Command{}, false
		}
		return app.Command{
			Type:       app.CmdSubmitAnswer,
			QuestionID: payload.QuestionID,
			OptionIdx:  *payload.OptionIdx,
		}, true
	default:
		return app.Command{}, false
	}
}
