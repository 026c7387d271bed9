package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/lifecycle/internal/core/observability/log"
)

const (
	clientBuffer = 8
	writeWait    = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type wsClient struct {
	send chan []byte
}

func (d *Diagnostics) register(c *wsClient) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c] = struct{}{}
	return d.encoded
}

func (d *Diagnostics) unregister(c *wsClient) {
	d.mu.Lock()
	delete(d.clients, c)
	d.mu.Unlock()
}

func (d *Diagnostics) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}
	defer conn.Close()

	c := &wsClient{send: make(chan []byte, clientBuffer)}
	initial := d.register(c)
	defer d.unregister(c)

	// The read side only exists to notice the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if initial != nil {
		if err := d.write(conn, initial); err != nil {
			return
		}
	}

	for {
		select {
		case <-gone:
			return
		case <-d.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			if err := d.write(conn, msg); err != nil {
				d.logger.Debug("websocket write failed", log.String("remote", r.RemoteAddr), log.Error(err))
				return
			}
		}
	}
}

func (d *Diagnostics) write(conn *websocket.Conn, msg []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}
