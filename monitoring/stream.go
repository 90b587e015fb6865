package monitoring

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/sir"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StateMessage is what the stream sends for every state a cell takes.
type StateMessage struct {
	Time    float64        `json:"time"`
	Cell    string         `json:"cell"`
	Initial bool           `json:"initial"`
	Text    string         `json:"text"`
	State   map[string]any `json:"state"`
}

// A stateStream is a hook that forwards state changes to websocket clients.
// Clients that cannot keep up are disconnected. States that cannot be encoded
// are logged and skipped.
type stateStream struct {
	mu      sync.Mutex
	clients map[*streamClient]bool
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newStateStream() *stateStream {
	return &stateStream{
		clients: make(map[*streamClient]bool),
	}
}

func (s *stateStream) Func(ctx sim.HookCtx) {
	if ctx.Pos != celldevs.HookPosStateChange {
		return
	}

	change, ok := ctx.Item.(celldevs.StateChange[sir.State])
	if !ok {
		return
	}

	if s.numClients() == 0 {
		return
	}

	payload, err := json.Marshal(StateMessage{
		Time:    float64(change.Time),
		Cell:    string(change.Cell),
		Initial: change.Initial,
		Text:    change.Text,
		State:   sir.EncodeState(change.Current),
	})
	if err != nil {
		log.Printf("state stream: dropping %s of cell %s: %v",
			change.Text, change.Cell, err)
		return
	}

	s.broadcast(payload)
}

func (s *stateStream) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(s.clients, c)
		}
	}
}

func (s *stateStream) numClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.clients)
}

func (s *stateStream) register(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c] = true
}

func (s *stateStream) unregister(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *stateStream) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("cannot upgrade state stream: %v", err)
		return
	}

	c := &streamClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	s.register(c)

	go c.writePump()
	go s.readPump(c)
}

// readPump only watches for the client going away.
func (s *stateStream) readPump(c *streamClient) {
	defer func() {
		s.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("state stream: %v", err)
			}

			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
