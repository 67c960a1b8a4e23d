package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/groupbuilder/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient dials the hub and queues every frame it receives.
type WSClient struct {
	t       *testing.T
	conn    *gorillaWS.Conn
	inbox   chan *websocket.Message
	readErr error // set before inbox closes
	writeMu sync.Mutex
	once    sync.Once
}

// NewWSClient connects to url and closes the connection when the test ends.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	c := &WSClient{t: t, conn: conn, inbox: make(chan *websocket.Message, 100)}
	go c.receive()
	t.Cleanup(c.Close)
	return c
}

func (c *WSClient) receive() {
	defer close(c.inbox)
	for {
		var msg websocket.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.readErr = err
			return
		}
		c.inbox <- &msg
	}
}

func (c *WSClient) Close() {
	c.once.Do(func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_ = c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		_ = c.conn.Close()
	})
}

// Ping sends a PING frame.
func (c *WSClient) Ping() {
	c.t.Helper()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := c.conn.WriteJSON(websocket.Message{Type: websocket.MessageTypePing, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		c.t.Fatalf("failed to send ping: %v", err)
	}
}

// ExpectMessage returns the next message of msgType, discarding others.
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.inbox:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s: %v", msgType, c.readErr)
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			c.t.Fatalf("timeout waiting for message type %s", msgType)
		}
	}
}

func (c *WSClient) ExpectConnected(timeout time.Duration) *websocket.ConnectedPayload {
	c.t.Helper()
	var payload websocket.ConnectedPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeConnected, timeout), &payload)
	return &payload
}

func (c *WSClient) ExpectDashboardChanged(timeout time.Duration) *websocket.DashboardChangedPayload {
	c.t.Helper()
	var payload websocket.DashboardChangedPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeDashboardChanged, timeout), &payload)
	return &payload
}

func (c *WSClient) decode(msg *websocket.Message, into interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(msg.Payload, into); err != nil {
		c.t.Fatalf("failed to decode %s payload: %v", msg.Type, err)
	}
}
