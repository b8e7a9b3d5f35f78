// Package replay serves journaled sessions back over the game socket so the
// client can be exercised without a live game server.
package replay

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/journal"
	"github.com/SvenDH/go-card-client/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Options struct {
	// Source is the journal session whose inbound frames are served.
	Source   string
	Interval time.Duration
	// PasswordHash, when set, is an argon2id hash every connection's
	// password segment must match.
	PasswordHash string
	TokenSecret  string
}

type Server struct {
	repo   *journal.Repository
	opts   Options
	frames [][]byte
	log    *logrus.Entry
}

func NewServer(repo *journal.Repository, opts Options) (*Server, error) {
	frames, err := repo.Frames(opts.Source, client.Inbound)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("session has no inbound frames to replay")
	}
	s := &Server{
		repo: repo,
		opts: opts,
		log:  logging.Log.WithFields(logrus.Fields{"component": "replay", "source": opts.Source}),
	}
	for _, f := range frames {
		s.frames = append(s.frames, f.Body)
	}
	return s, nil
}

// ServeWs upgrades a /socket/{user}/{game}[/{password}] request and starts
// streaming the recorded frames.
func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	user, game := r.PathValue("user"), r.PathValue("game")
	if s.opts.PasswordHash != "" {
		ok, err := ValidatePassword(r.PathValue("password"), s.opts.PasswordHash)
		if err != nil {
			s.log.WithError(err).Error("check game password")
		}
		if !ok {
			respondWithError(w, http.StatusForbidden, "wrong game password")
			return
		}
	}
	session, err := s.repo.StartSession(user, game)
	if err != nil {
		s.log.WithError(err).Error("start journal session")
		respondWithError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade")
		return
	}
	fields := logrus.Fields{"user": user, "game": game, "session": session.Id}
	// set by AuthMiddleware once the token's name claim matched {user}
	if name, ok := r.Context().Value(userContextKey).(string); ok {
		fields["token_user"] = name
	}
	c := &viewer{
		conn:     conn,
		server:   s,
		recorder: s.repo.Recorder(session.Id),
		done:     make(chan struct{}),
		log:      s.log.WithFields(fields),
	}
	c.log.Info("viewer connected")

	go c.writePump()
	go c.readPump()
}

// viewer is one connected client watching the replay.
type viewer struct {
	conn     *websocket.Conn
	server   *Server
	recorder client.Recorder
	done     chan struct{}
	log      *logrus.Entry
}

func (c *viewer) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
		c.log.Info("viewer disconnected")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("read")
			}
			return
		}
		c.log.WithField("frame", string(frame)).Debug("action received")
		if err := c.recorder.Record(client.Outbound, frame); err != nil {
			c.log.WithError(err).Warn("journal action")
		}
	}
}

func (c *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	next := 0
	pace := time.NewTimer(0)
	defer pace.Stop()
	for {
		select {
		case <-pace.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, c.server.frames[next]); err != nil {
				c.log.WithError(err).Warn("write")
				return
			}
			next++
			if next < len(c.server.frames) {
				pace.Reset(c.server.opts.Interval)
			} else {
				c.log.Info("replay finished")
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
