// Package ui is the terminal front end: a connect form above the table, with
// keyboard focus over action buttons and targets.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/config"
	"github.com/SvenDH/go-card-client/interact"
	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

// Conn is an open connection as the UI sees it.
type Conn interface {
	Send(msg *protocol.Outbound) error
	Incoming() <-chan []byte
	Err() error
	Close() error
}

// DialFunc opens a connection for connect attempt gen. Attempts run
// concurrently; gen grows with every attempt.
type DialFunc func(ctx context.Context, gen int, ep client.Endpoint) (Conn, error)

// ConnectorDial dials through c, which closes the previous session first and
// turns away attempts older than the newest one it has seen.
func ConnectorDial(c *client.Connector) DialFunc {
	return func(ctx context.Context, gen int, ep client.Endpoint) (Conn, error) {
		s, err := c.ConnectAttempt(ctx, uint64(gen), ep)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// ServerMsg carries one frame from the connection opened as generation Gen.
type ServerMsg struct {
	Gen   int
	Frame []byte
}

// ClosedMsg reports that the connection of generation Gen ended.
type ClosedMsg struct {
	Gen int
	Err error
}

type connectedMsg struct {
	gen  int
	conn Conn
	ep   client.Endpoint
}

type connectFailedMsg struct {
	gen int
	err error
}

type Model struct {
	cfg  config.Client
	dial DialFunc

	board *board.Board
	ctl   *interact.Controller
	conn  Conn
	// gen counts connect attempts; messages from older ones are dropped
	gen int

	username textinput.Model
	game     textinput.Model
	focus    focusItem
	focusIdx int

	status    string
	statusErr bool
	width     int

	log *logrus.Entry
}

func New(cfg config.Client, dial DialFunc) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 32
	username.Width = 16
	username.SetValue(cfg.Username)

	game := textinput.New()
	game.Placeholder = "game name"
	game.CharLimit = 32
	game.Width = 16
	game.SetValue(cfg.Game)

	b := board.New()
	m := &Model{
		cfg:      cfg,
		dial:     dial,
		board:    b,
		ctl:      interact.New(b, nil),
		username: username,
		game:     game,
		status:   "not connected",
		log:      logging.Log.WithField("component", "ui"),
	}
	m.setFocus(focusItem{kind: focusUsername}, 0)
	return m
}

func (m *Model) Board() *board.Board { return m.board }

func (m *Model) Controller() *interact.Controller { return m.ctl }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.disconnect()
			return m, tea.Quit
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		case "right":
			if !m.inInput() {
				return m, m.moveFocus(1)
			}
		case "left":
			if !m.inInput() {
				return m, m.moveFocus(-1)
			}
		case "enter":
			return m, m.activate()
		}
		return m, m.updateInputs(msg)

	case connectedMsg:
		if msg.gen != m.gen {
			msg.conn.Close()
			return m, nil
		}
		m.conn = msg.conn
		m.board = board.New()
		m.ctl = interact.New(m.board, msg.conn)
		m.setStatus("connected to "+msg.ep.String(), false)
		return m, tea.Batch(m.syncFocus(), listen(msg.gen, msg.conn))

	case connectFailedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.log.WithError(msg.err).Warn("connect failed")
		m.setStatus("connect failed: "+msg.err.Error(), true)
		return m, nil

	case ServerMsg:
		if msg.Gen != m.gen || m.conn == nil {
			return m, nil
		}
		m.board.ApplyFrame(msg.Frame)
		return m, tea.Batch(m.syncFocus(), listen(msg.Gen, m.conn))

	case ClosedMsg:
		if msg.Gen != m.gen || m.conn == nil {
			return m, nil
		}
		m.conn = nil
		m.ctl.SetSender(nil)
		if msg.Err != nil {
			m.log.WithError(msg.Err).Info("connection closed")
			m.setStatus("disconnected: "+msg.Err.Error(), true)
		} else {
			m.setStatus("disconnected", true)
		}
		return m, nil
	}
	return m, m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds [2]tea.Cmd
	m.username, cmds[0] = m.username.Update(msg)
	m.game, cmds[1] = m.game.Update(msg)
	return tea.Batch(cmds[:]...)
}

func (m *Model) activate() tea.Cmd {
	switch m.focus.kind {
	case focusUsername, focusGame, focusConnect:
		return m.connect()
	case focusAction:
		m.ctl.ActivateAction(m.focus.action)
		if _, waiting := m.ctl.State().(interact.AwaitingTarget); waiting {
			return m.focusFirstTarget()
		}
		return m.syncFocus()
	case focusTarget:
		m.ctl.ActivateTarget(m.focus.target)
		return m.syncFocus()
	}
	return nil
}

// connect replaces any open connection with a new one for the form values.
func (m *Model) connect() tea.Cmd {
	m.gen++
	m.disconnect()

	cfg := m.cfg
	cfg.Username = strings.TrimSpace(m.username.Value())
	cfg.Game = strings.TrimSpace(m.game.Value())
	ep, err := cfg.Endpoint()
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.setStatus("connecting to "+ep.String()+"...", false)

	gen, dial, timeout := m.gen, m.dial, cfg.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		conn, err := dial(ctx, gen, ep)
		if err != nil {
			return connectFailedMsg{gen: gen, err: err}
		}
		return connectedMsg{gen: gen, conn: conn, ep: ep}
	}
}

func (m *Model) disconnect() {
	if m.conn == nil {
		return
	}
	m.conn.Close()
	m.conn = nil
	m.ctl.SetSender(nil)
}

// listen waits for the next frame of conn.
func listen(gen int, conn Conn) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-conn.Incoming()
		if !ok {
			return ClosedMsg{Gen: gen, Err: conn.Err()}
		}
		return ServerMsg{Gen: gen, Frame: frame}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
