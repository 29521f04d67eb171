// Package ws runs one connection session per websocket client: a join
// handshake, then two racing relay loops (inbound frames into the room,
// room events out to the client) until either direction ends.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatrelay/internal/chat"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10

	// Application-level liveness probe bytes. Clients send a binary frame
	// tagged 0x9; the server answers with a binary frame tagged 0xA.
	probePing = 0x9
	probePong = 0xA
)

type WsServer struct {
	registry *chat.Registry
	upgrader websocket.Upgrader
}

func NewWsServer(registry *chat.Registry) *WsServer {
	return &WsServer{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
		},
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	defer rawConn.Close()
	rawConn.SetReadLimit(maxMessageSize)

	sess, ok := s.handshake(&clientConn{rawConn: rawConn})
	if !ok {
		return
	}
	sess.relay()
}

// joinRequest is the first text frame of every connection.
type joinRequest struct {
	Username string `json:"username"`
	Channel  string `json:"channel"`
}

// session is the per-connection state after a successful join.
type session struct {
	registry *chat.Registry
	conn     *clientConn
	username string
	channel  string
	room     *chat.Room
	sub      *chat.Subscription
}

// ---------------------------------------------------------------------------
//  Connecting -> Joined
// ---------------------------------------------------------------------------

// handshake waits for the join frame and wires the session into its room.
// Binary frames before the join are treated as liveness probes only. On a
// malformed payload the client gets one error event and the connection ends.
func (s *WsServer) handshake(conn *clientConn) (*session, bool) {
	for {
		mt, payload, err := conn.rawConn.ReadMessage()
		if err != nil {
			return nil, false // client went away before joining
		}
		if mt == websocket.BinaryMessage {
			conn.pong(payload)
			continue
		}
		if mt != websocket.TextMessage {
			continue
		}

		var join joinRequest
		if err := json.Unmarshal(payload, &join); err != nil {
			zap.L().Debug("ws.join_parse", zap.ByteString("payload", payload), zap.Error(err))
			_ = conn.writeJSON(chat.Event{Type: chat.EventError, Value: "Invalid JSON"})
			return nil, false
		}

		room := s.registry.GetOrCreate(join.Channel)
		room.AddMember(join.Username)
		content, _ := room.Content()
		sub := room.Subscribe()

		// Guarded explicitly even though the parse above should make this
		// unreachable for well-formed joins.
		if join.Username == "" || sub == nil {
			zap.L().Warn("ws.join_failed", zap.String("room", join.Channel))
			if sub != nil {
				sub.Close()
			}
			room.RemoveMember(join.Username)
			_ = conn.writeJSON(chat.Event{Type: chat.EventError, Value: "Failed to connect to room!"})
			return nil, false
		}

		// Everyone elsewhere gets a rooms-list refresh; the joiner gets the
		// room's current content, authored by the server.
		s.registry.NotifyRoomListChanged(join.Channel)
		_ = conn.writeJSON(chat.Event{Type: chat.EventMessage, Value: content, Username: "Server"})

		return &session{
			registry: s.registry,
			conn:     conn,
			username: join.Username,
			channel:  join.Channel,
			room:     room,
			sub:      sub,
		}, true
	}
}

// ---------------------------------------------------------------------------
//  Relaying -> Closed
// ---------------------------------------------------------------------------

// relay announces the join (the session's own subscription is already live,
// so the joiner sees it too), then races the two pump loops. Whichever loop
// finishes first tears the other down; teardown then publishes the leave and
// drops the membership entry exactly once.
func (sess *session) relay() {
	sess.room.Publish(chat.Event{Type: chat.EventJoin, Username: sess.username})

	done := make(chan struct{}, 2)
	go sess.outbound(done)
	go sess.inbound(done)

	<-done
	sess.sub.Close()
	_ = sess.conn.rawConn.Close()
	<-done

	sess.room.Publish(chat.Event{Type: chat.EventLeave, Username: sess.username})
	if room, ok := sess.registry.Lookup(sess.channel); ok {
		room.RemoveMember(sess.username)
	} else {
		zap.L().Warn("ws.room_vanished", zap.String("room", sess.channel), zap.String("user", sess.username))
	}
}

// inbound pumps client frames into the room: every text frame becomes the
// room's new content and is relayed as a message event; binary frames are
// liveness probes.
func (sess *session) inbound(done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for {
		mt, payload, err := sess.conn.rawConn.ReadMessage()
		if err != nil {
			return
		}
		switch mt {
		case websocket.BinaryMessage:
			sess.conn.pong(payload)
		case websocket.TextMessage:
			text := string(payload)
			sess.room.SetContent(text)
			sess.room.Publish(chat.Event{
				Type:     chat.EventMessage,
				Value:    text,
				Username: sess.username,
			})
		}
	}
}

// outbound forwards room events to the client until the subscription closes
// or a write fails.
func (sess *session) outbound(done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for ev := range sess.sub.C() {
		if err := sess.conn.writeJSON(ev); err != nil {
			return
		}
	}
}
