package client

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a connect attempt that a newer attempt has
// already overtaken.
var ErrSuperseded = errors.New("connect superseded by a newer attempt")

// RecorderFactory opens a recorder for a new connection. It may return a nil
// recorder to skip recording.
type RecorderFactory func(ep Endpoint) (Recorder, error)

// Connector holds at most one open session. Connecting again closes the
// current session before the new one is dialed.
type Connector struct {
	mu        sync.Mutex
	current   *Session
	latest    uint64
	recorders RecorderFactory
	opts      []Option
}

func NewConnector(recorders RecorderFactory, opts ...Option) *Connector {
	return &Connector{recorders: recorders, opts: opts}
}

func (c *Connector) Connect(ctx context.Context, ep Endpoint) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(ctx, c.latest+1, ep)
}

// ConnectAttempt connects on behalf of attempt, a number the caller increases
// with every attempt it starts. Attempts may reach the connector out of
// order: one older than an attempt already made gets ErrSuperseded and the
// current session stays open.
func (c *Connector) ConnectAttempt(ctx context.Context, attempt uint64, ep Endpoint) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt <= c.latest {
		return nil, ErrSuperseded
	}
	return c.connect(ctx, attempt, ep)
}

func (c *Connector) connect(ctx context.Context, attempt uint64, ep Endpoint) (*Session, error) {
	c.latest = attempt
	if c.current != nil {
		c.current.Close()
		c.current = nil
	}
	opts := c.opts
	if c.recorders != nil {
		rec, err := c.recorders(ep)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			opts = append(append([]Option(nil), opts...), WithRecorder(rec))
		}
	}
	s, err := Dial(ctx, ep, opts...)
	if err != nil {
		return nil, err
	}
	c.current = s
	return s, nil
}

func (c *Connector) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	err := c.current.Close()
	c.current = nil
	return err
}
