// Package realtime pushes resume snapshots to browser tabs over socket.io.
//
// A client emits "join-resume" with its bearer token. The socket joins the
// user's room and receives "resume-snapshot" with the current document; after
// that every change arrives as "resume-updated". Failures are reported with
// "resume-error".
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"resume-builder/core"
	"resume-builder/identity"
	"resume-builder/session"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	EventJoin     = "join-resume"
	EventSnapshot = "resume-snapshot"
	EventUpdated  = "resume-updated"
	EventError    = "resume-error"
)

// Reasons sent with EventError.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonUnavailable  = "unavailable"
)

var errUnauthorized = errors.New("unauthorized")

type Sessions interface {
	Get(ctx context.Context, userID string) (*session.Session, error)
}

// client is the part of a connected socket the server drives.
type client interface {
	ID() string
	On(event string, fn func(...any))
	Join(room socketio.Room)
	Leave(room socketio.Room)
	// Emit sends to this socket only.
	Emit(event string, args ...any)
	Close()
}

type socketClient struct {
	io     *socketio.Server
	socket *socketio.Socket
}

func (c socketClient) ID() string                       { return string(c.socket.Id()) }
func (c socketClient) On(event string, fn func(...any)) { c.socket.On(event, fn) }
func (c socketClient) Join(room socketio.Room)          { c.socket.Join(room) }
func (c socketClient) Leave(room socketio.Room)         { c.socket.Leave(room) }

func (c socketClient) Emit(event string, args ...any) {
	c.io.To(socketio.Room(c.socket.Id())).Emit(event, args...)
}

func (c socketClient) Close() {
	c.socket.RemoveAllListeners("")
	c.socket.Disconnect(true)
}

type Server struct {
	io       *socketio.Server
	verifier identity.Verifier
	sessions Sessions
	// broadcast emits to every socket in room.
	broadcast func(room socketio.Room, event string, args ...any)
}

// Room names the room shared by every socket of one user.
func Room(userID string) socketio.Room {
	return socketio.Room("resume:" + userID)
}

func New(verifier identity.Verifier, sessions Sessions) *Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(1000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:       socketio.NewServer(nil, opts),
		verifier: verifier,
		sessions: sessions,
	}
	s.broadcast = func(room socketio.Room, event string, args ...any) {
		s.io.To(room).Emit(event, args...)
	}
	s.io.On("connection", func(clients ...any) {
		s.handle(socketClient{io: s.io, socket: clients[0].(*socketio.Socket)})
	})
	return s
}

func (s *Server) handle(c client) {
	log := logrus.WithField("socket_id", c.ID())

	var mu sync.Mutex
	var joined socketio.Room

	c.On(EventJoin, func(datas ...any) {
		token, _ := firstString(datas)
		userID, doc, err := s.join(token)
		if err != nil {
			reason := ReasonUnavailable
			if errors.Is(err, errUnauthorized) {
				reason = ReasonUnauthorized
			}
			log.WithError(err).Warn("Rejected resume join")
			c.Emit(EventError, reason)
			return
		}

		room := Room(userID)
		mu.Lock()
		if joined != "" && joined != room {
			c.Leave(joined)
		}
		c.Join(room)
		joined = room
		mu.Unlock()

		log.WithField("room", room).Debug("Socket joined resume room")
		c.Emit(EventSnapshot, doc)
	})

	c.On("disconnect", func(datas ...any) {
		log.Debug("Socket disconnected")
		c.Close()
	})
}

// join authenticates token and returns the user's current snapshot.
func (s *Server) join(token string) (string, *core.Document, error) {
	if token == "" {
		return "", nil, fmt.Errorf("%w: missing token", errUnauthorized)
	}
	e, err := s.verifier.Verify(token)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", errUnauthorized, err)
	}
	userID := e.UserID.String()
	sess, err := s.sessions.Get(context.Background(), userID)
	if err != nil {
		return "", nil, err
	}
	return userID, sess.Snapshot(), nil
}

// Publish sends doc to every socket of userID. It has the shape of a session
// observer.
func (s *Server) Publish(userID string, doc *core.Document) {
	s.broadcast(Room(userID), EventUpdated, doc)
}

func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

func (s *Server) Close() {
	s.io.Close(nil)
}

func firstString(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	v, ok := datas[0].(string)
	return v, ok
}
