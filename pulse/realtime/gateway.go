package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"pulse/pulse/config"
	"pulse/pulse/controllers"
	"pulse/pulse/middlewares"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/utils/logging"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Gateway owns the websocket endpoint: it authenticates connections,
// tracks them in the Registry, dispatches inbound events to the chat
// controller and fans the results back out.
type Gateway struct {
	registry *Registry
	chat     *controllers.ChatController
	users    *dao.UserDAO
	cfg      config.Config
}

func NewGateway(registry *Registry, chat *controllers.ChatController, users *dao.UserDAO, cfg config.Config) *Gateway {
	return &Gateway{
		registry: registry,
		chat:     chat,
		users:    users,
		cfg:      cfg,
	}
}

func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}

	// Identity comes from the caller's existing token; no valid
	// identity means the connection never goes active.
	userID, err := middlewares.ParseUserID(g.cfg, middlewares.TokenFromRequest(r))
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, "unauthorized")
		return
	}

	ctx := r.Context()
	client := newClient(userID, conn)
	g.connect(ctx, client)
	defer g.disconnect(client)

	go client.writeLoop(ctx)
	g.readLoop(ctx, client)
}

func (g *Gateway) connect(ctx context.Context, client *Client) {
	if displaced := g.registry.Register(client); displaced != nil {
		displaced.close(websocket.StatusNormalClosure, "superseded by newer connection")
	}
	// Presence bookkeeping failures never block the registry or the
	// broadcast.
	if err := g.users.SetOnline(ctx, client.UserID); err != nil {
		logging.ErrorLogger.Error("set online failed",
			zap.Int("user_id", client.UserID), zap.Error(err))
	}
	g.broadcast(encodePresence(eventUserOnline, client.UserID), client.UserID)
	logging.AppLogger.Info("connection active",
		zap.Int("user_id", client.UserID), zap.String("conn_id", client.ConnID))
}

func (g *Gateway) disconnect(client *Client) {
	current := g.registry.Unregister(client)
	client.close(websocket.StatusNormalClosure, "")
	if !current {
		// A newer connection took over this user's presence; it owns
		// the offline transition now.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.users.SetOffline(ctx, client.UserID, time.Now()); err != nil {
		logging.ErrorLogger.Error("set offline failed",
			zap.Int("user_id", client.UserID), zap.Error(err))
	}
	g.broadcast(encodePresence(eventUserOffline, client.UserID), client.UserID)
	logging.AppLogger.Info("connection closed",
		zap.Int("user_id", client.UserID), zap.String("conn_id", client.ConnID))
}

// readLoop runs until the transport drops, whatever the cause. A bad
// event is answered with an error event, never a teardown.
func (g *Gateway) readLoop(ctx context.Context, client *Client) {
	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			client.Push(encodeError("malformed event"))
			continue
		}
		switch ev.Type {
		case eventSendMessage:
			// Independent task per event: persistence and fan-out
			// latency stay off the read loop.
			go g.handleSendMessage(ctx, client, ev)
		default:
			client.Push(encodeError("unknown event type"))
		}
	}
}

func (g *Gateway) handleSendMessage(ctx context.Context, client *Client, ev inboundEvent) {
	payload, receiverID, err := g.chat.SendMessage(ctx, client.UserID, ev.ChatSessionID, ev.MessageText)
	if err != nil {
		logging.ErrorLogger.Error("send message failed",
			zap.Int("user_id", client.UserID),
			zap.Int("chat_session_id", ev.ChatSessionID),
			zap.Error(err),
		)
		client.Push(encodeError(err.Error()))
		return
	}

	msg := encodeNewMessage(*payload)
	// Echo to the sender keeps multiple tabs consistent; the
	// recipient only gets a push while online. Missed messages are
	// picked up through history.
	client.Push(msg)
	if receiver, ok := g.registry.Lookup(receiverID); ok {
		receiver.Push(msg)
	}
}

// broadcast pushes to every active connection except the named user.
func (g *Gateway) broadcast(msg []byte, exceptUserID int) {
	for _, c := range g.registry.Others(exceptUserID) {
		c.Push(msg)
	}
}
