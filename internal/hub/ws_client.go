package hub

import (
	"encoding/json"
	"time"

	"cityvoice/backend/internal/models"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// FeedFilter is the subscription a staff client sends over the socket.
type FeedFilter struct {
	ManualReviewOnly bool `json:"manual_review_only"`
}

// WebSocketClient is a staff dashboard connection.
type WebSocketClient struct {
	ID     string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.TriageEvent
	filter chan FeedFilter
	active FeedFilter
}

// NewWebSocketClient wraps an upgraded connection.
func NewWebSocketClient(id string, conn *websocket.Conn, h *ManagerService) *WebSocketClient {
	return &WebSocketClient{
		ID:     id,
		Conn:   conn,
		Hub:    h,
		Send:   make(chan models.TriageEvent, 32),
		filter: make(chan FeedFilter, 1),
	}
}

func (c *WebSocketClient) GetClientID() string                       { return c.ID }
func (c *WebSocketClient) GetSendChannel() chan<- models.TriageEvent { return c.Send }

// Accepts applies the most recent filter the client sent.
func (c *WebSocketClient) Accepts(ev models.TriageEvent) bool {
	select {
	case f := <-c.filter:
		c.active = f
	default:
	}
	return c.active.Matches(ev)
}

// Matches reports whether ev passes the filter.
func (f FeedFilter) Matches(ev models.TriageEvent) bool {
	if f.ManualReviewOnly && !ev.ManualReview {
		return false
	}
	return true
}

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump only accepts filter updates; the feed is otherwise one-way.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("client_id", c.ID).Warn("feed read failed")
			}
			break
		}

		var f FeedFilter
		if err := json.Unmarshal(message, &f); err != nil {
			log.WithError(err).WithField("client_id", c.ID).Debug("ignoring malformed filter")
			continue
		}
		// keep only the newest filter
		select {
		case <-c.filter:
		default:
		}
		c.filter <- f
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(ev); err != nil {
				log.WithError(err).WithField("client_id", c.ID).Warn("feed write failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
