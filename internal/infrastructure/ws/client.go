package ws

import (
	"errors"
	"log"
	"time"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/session"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

var errSendBufferFull = errors.New("send buffer full")

// Client pumps one websocket connection: the read pump decodes command
// envelopes and dispatches them to the coordinator, the write pump drains the
// buffered event channel. Client is the connection's session.Sender.
type Client struct {
	conn *connWrapper
	send chan *session.Event
	done chan struct{}

	ID    string
	Label string

	coordinator *session.Coordinator
}

func NewClient(conn *websocket.Conn, id, label string, buffer int, coordinator *session.Coordinator) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		conn:        newConnWrapper(conn),
		send:        make(chan *session.Event, buffer), // buffered to avoid dead-locks on slow clients
		done:        make(chan struct{}),
		ID:          id,
		Label:       label,
		coordinator: coordinator,
	}
}

// Send queues the event for the write pump. It never blocks; a full buffer
// means the client is too slow and the event is dropped for this member.
func (c *Client) Send(event *session.Event) error {
	select {
	case c.send <- event:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ReadPump() {
	defer func() {
		c.coordinator.Disconnect(c.ID)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		c.coordinator.Touch(c.ID)
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		c.coordinator.Touch(c.ID)
		c.dispatch(raw)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("ws write error (client %s): %v", c.ID, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) dispatch(raw []byte) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		c.sendError("", "BAD_COMMAND", err.Error())
		return
	}

	switch cmd.Type {
	case CommandJoin:
		c.handleJoin(cmd)
	case CommandLeave:
		if err := c.coordinator.Leave(c.ID); err != nil {
			c.sendError("", errorCode(err), err.Error())
		}
	case CommandPlaybackUpdate:
		c.handlePlayback(cmd)
	case CommandChat:
		c.handleChat(cmd)
	}
}

func (c *Client) handleJoin(cmd *Command) {
	payload, err := cmd.JoinPayload()
	if err != nil {
		c.sendError("", "BAD_COMMAND", err.Error())
		return
	}

	roomID, err := domain.NormalizeRoomID(payload.Room)
	if err != nil {
		c.sendError("", "BAD_COMMAND", err.Error())
		return
	}

	if _, err := c.coordinator.Join(c.ID, roomID, domain.ParseRoomMode(payload.Mode)); err != nil {
		c.sendError(roomID, errorCode(err), err.Error())
	}
}

func (c *Client) handlePlayback(cmd *Command) {
	event, err := cmd.PlaybackPayload()
	if err != nil {
		c.sendError("", "BAD_COMMAND", err.Error())
		return
	}

	if _, err := c.coordinator.PlaybackUpdate(c.ID, event); err != nil {
		c.sendError("", errorCode(err), err.Error())
	}
}

func (c *Client) handleChat(cmd *Command) {
	payload, err := cmd.ChatPayload()
	if err != nil || payload.Content == "" {
		c.sendError("", "BAD_COMMAND", "chat content is required")
		return
	}

	if err := c.coordinator.Chat(c.ID, payload.Content); err != nil {
		c.sendError("", errorCode(err), err.Error())
	}
}

func (c *Client) sendError(roomID, code, message string) {
	_ = c.Send(session.NewError(roomID, code, message))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyInRoom):
		return "ALREADY_IN_ROOM"
	case errors.Is(err, domain.ErrNotInRoom):
		return "NOT_IN_ROOM"
	case errors.Is(err, domain.ErrStaleUpdate):
		return "STALE_UPDATE"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, domain.ErrUnknownConnection):
		return "UNKNOWN_CONNECTION"
	case errors.Is(err, domain.ErrInvalidInput):
		return "BAD_COMMAND"
	}
	return "INTERNAL"
}
