package realtime

import (
	"context"
	"sync"
	"time"

	"pulse/pulse/utils/logging"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// Client is one live websocket connection for one user. Outbound
// events go through the send queue so pushes never block the pushing
// goroutine on a slow socket.
type Client struct {
	UserID int
	ConnID string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(userID int, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		ConnID: uuid.New().String(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Push queues a message for delivery. Fire-and-forget: a closed
// client or a full queue drops the message and reports false.
func (c *Client) Push(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				logging.AppLogger.Info("client write failed",
					zap.Int("user_id", c.UserID),
					zap.String("conn_id", c.ConnID),
					zap.Error(err),
				)
				c.close(websocket.StatusNormalClosure, "write failed")
				return
			}
		}
	}
}

func (c *Client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close(code, reason)
		}
	})
}
