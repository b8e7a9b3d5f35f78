// Package interact turns clicks on action buttons and targets into ACTION
// messages, holding the pending target selection between the two clicks.
package interact

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

var ErrNoSession = errors.New("not connected")

type Sender interface {
	Send(msg *protocol.Outbound) error
}

type Controller struct {
	board  *board.Board
	sender Sender
	state  State
	log    *logrus.Entry
}

func New(b *board.Board, sender Sender) *Controller {
	return &Controller{
		board:  b,
		sender: sender,
		state:  Idle{},
		log:    logging.Log.WithField("component", "interact"),
	}
}

// SetSender swaps the outbound connection. A nil sender drops actions.
func (c *Controller) SetSender(sender Sender) {
	c.sender = sender
}

func (c *Controller) State() State { return c.state }

// ActivateAction handles a click on a shown action button. It reports
// whether an ACTION message was produced.
func (c *Controller) ActivateAction(a board.Affordance) bool {
	return c.dispatch(ActionClick{a})
}

// ActivateTarget handles a click on a target. Only highlighted targets react.
func (c *Controller) ActivateTarget(key TargetKey) bool {
	return c.dispatch(TargetClick{Key: key})
}

func (c *Controller) dispatch(in Input) bool {
	next, out := Transition(c.state, in, c.board)
	c.state = next
	if out == nil {
		return false
	}
	if err := c.send(out); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"move": out.Action.MoveType,
			"card": out.Action.Card,
		}).Warn("action dropped")
	}
	return true
}

func (c *Controller) send(out *protocol.Outbound) error {
	if c.sender == nil {
		return ErrNoSession
	}
	return c.sender.Send(out)
}

// Highlighted reports whether key is a clickable target right now.
func (c *Controller) Highlighted(key TargetKey) bool {
	waiting, ok := c.state.(AwaitingTarget)
	if !ok {
		return false
	}
	_, ok = waiting.Targets[key]
	return ok
}

// Selected reports whether the card is the source of the pending selection.
func (c *Controller) Selected(player protocol.PlayerID, card protocol.CardID) bool {
	waiting, ok := c.state.(AwaitingTarget)
	return ok && waiting.Owner == player && waiting.Source == card
}

// Targets lists the highlighted targets, empty when idle.
func (c *Controller) Targets() []TargetKey {
	if waiting, ok := c.state.(AwaitingTarget); ok {
		return waiting.Keys()
	}
	return nil
}
