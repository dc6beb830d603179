package www

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/icodeforyou/spotprice-go/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one websocket connection. Only the hub closes send.
type Client struct {
	logger *slog.Logger
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
}

func NewClient(hub *Hub, w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger: hub.logger.With(slog.String("client", r.RemoteAddr)),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}, nil
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// WritePump forwards hub messages to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.write(ws.CloseMessage, []byte{})
				return
			}
			if err := c.write(ws.TextMessage, message); err != nil {
				c.logger.Debug("web socket write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := c.write(ws.PingMessage, nil); err != nil {
				c.logger.Debug("web socket ping failed", slog.Any("error", err))
				return
			}
		}
	}
}

// ReadPump discards incoming messages and extends the read deadline on pongs.
// It returns when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.logger.Debug("web socket closed unexpectedly", slog.Any("error", err))
			}
			return
		}
	}
}

// Hub owns the set of clients. All changes to the set happen on the Run goroutine.
type Hub struct {
	logger    *slog.Logger
	broadcast chan []byte
	join      chan *Client
	leave     chan *Client
	done      chan struct{}
	clients   map[*Client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:    logger,
		broadcast: make(chan []byte),
		join:      make(chan *Client),
		leave:     make(chan *Client),
		done:      make(chan struct{}),
		clients:   make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	select {
	case h.join <- c:
	case <-h.done:
		c.conn.Close()
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

// Broadcast queues message for every connected client. Slow clients miss it.
func (h *Hub) Broadcast(ctx context.Context, message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-ctx.Done():
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
		}
		metrics.SetWebsocketClients(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.join:
			h.clients[c] = struct{}{}
			h.logger.Debug("websocket client connected", slog.Int("clients", len(h.clients)))
			metrics.SetWebsocketClients(len(h.clients))

		case c := <-h.leave:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("websocket client disconnected", slog.Int("clients", len(h.clients)))
				metrics.SetWebsocketClients(len(h.clients))
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Warn("client send buffer full, dropping message")
				}
			}
		}
	}
}
