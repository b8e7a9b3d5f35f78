// Package client owns the websocket connection to the game server.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

var ErrClosed = errors.New("session closed")

type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
)

// Recorder receives a copy of every frame that crosses the socket.
type Recorder interface {
	Record(dir Direction, frame []byte) error
}

type Option func(*Session)

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Session is one open connection. Frames arrive on Incoming in the order the
// server sent them; the channel is closed when the connection ends.
type Session struct {
	conn      *websocket.Conn
	send      chan []byte
	incoming  chan []byte
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
	recorder  Recorder
	log       *logrus.Entry
}

func Dial(ctx context.Context, ep Endpoint, opts ...Option) (*Session, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		send:     make(chan []byte, sendBuffer),
		incoming: make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		log:      logging.Log.WithField("endpoint", ep.String()),
	}
	for _, opt := range opts {
		opt(s)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, ep.URL(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", ep, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", ep, err)
	}
	s.conn = conn
	s.log.Info("connected")

	go s.writePump()
	go s.readPump()
	return s, nil
}

func (s *Session) Incoming() <-chan []byte { return s.incoming }

// Done is closed once Close has been called or the connection failed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the connection, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Send queues an outbound message.
func (s *Session) Send(msg *protocol.Outbound) error {
	frame := msg.Encode()
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.send <- frame:
		s.record(Outbound, frame)
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *Session) record(dir Direction, frame []byte) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(dir, frame); err != nil {
		s.log.WithError(err).Warn("failed to record frame")
	}
}

func (s *Session) readPump() {
	defer func() {
		close(s.incoming)
		s.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.log.WithError(err).Warn("failed to set read deadline")
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Warn("connection lost")
			}
			s.setErr(err)
			return
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			s.log.WithError(err).Debug("failed to extend read deadline")
		}
		s.record(Inbound, frame)
		select {
		case s.incoming <- frame:
		case <-s.done:
			return
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil {
			s.log.WithError(err).Debug("close")
		}
	}()
	for {
		select {
		case frame := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.WithError(err).Warn("failed to set write deadline")
			}
			// one message per frame, the server decodes each frame as a whole
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.WithError(err).Warn("write failed")
				s.setErr(err)
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.WithError(err).Debug("ping failed")
				s.setErr(err)
				s.Close()
				return
			}
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				s.log.WithError(err).Debug("write close message failed")
			}
			s.log.Info("disconnected")
			return
		}
	}
}
