// Package board keeps the client-side view of the table in sync with the
// game server. The server is the only source of truth: every view here is
// rebuilt from the latest message that mentions it.
package board

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

// CardView is one displayed card. Actions holds the moves made available by
// the last valid_moves message together with their raw target selectors.
type CardView struct {
	protocol.Card
	Actions map[protocol.MoveType]protocol.SelectorList
}

func newCardView(card protocol.Card) *CardView {
	return &CardView{Card: card}
}

// HasAction reports whether the affordance for move is currently shown.
func (c *CardView) HasAction(move protocol.MoveType) bool {
	_, ok := c.Actions[move]
	return ok
}

// Targets returns the selector list attached to a shown action.
func (c *CardView) Targets(move protocol.MoveType) protocol.SelectorList {
	return c.Actions[move]
}

// Moves returns the shown actions in a stable order.
func (c *CardView) Moves() []protocol.MoveType {
	moves := make([]protocol.MoveType, 0, len(c.Actions))
	for m := range c.Actions {
		moves = append(moves, m)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i] < moves[j] })
	return moves
}

type PlayerView struct {
	ID      protocol.PlayerID
	Name    string
	Level   int
	Bonus   int
	Total   int
	Hand    []*CardView
	Carried []*CardView
}

func newPlayerView(p protocol.Player) *PlayerView {
	view := &PlayerView{
		ID:      p.ID,
		Name:    p.Name,
		Level:   p.Level,
		Bonus:   p.Bonus,
		Total:   p.Total,
		Hand:    make([]*CardView, 0, len(p.Hand)),
		Carried: make([]*CardView, 0, len(p.Carried)),
	}
	for _, c := range p.Hand {
		view.Hand = append(view.Hand, newCardView(c))
	}
	for _, c := range p.Carried {
		view.Carried = append(view.Carried, newCardView(c))
	}
	return view
}

func (p *PlayerView) cards() []*CardView {
	all := make([]*CardView, 0, len(p.Hand)+len(p.Carried))
	all = append(all, p.Hand...)
	return append(all, p.Carried...)
}

// Combat is the content of the two combat zones.
type Combat struct {
	Players  []protocol.PlayerID
	Monsters []protocol.Card
}

type LineKind int

const (
	LineSystem LineKind = iota
	LineError
)

type Line struct {
	Kind LineKind
	Text string
}

type Board struct {
	players []*PlayerView
	console []Line
	combat  Combat
	lastSeq int
	log     *logrus.Entry
}

func New() *Board {
	return &Board{
		players: make([]*PlayerView, 0),
		log:     logging.Log.WithField("component", "board"),
	}
}

// SetPlayers replaces the whole roster with players, in order.
func (b *Board) SetPlayers(players []protocol.Player) {
	b.players = make([]*PlayerView, 0, len(players))
	for _, p := range players {
		b.UpsertPlayer(p)
	}
}

// UpsertPlayer replaces the player with the same ID in place, or appends it.
// The player's cards are rebuilt from scratch and start without actions.
func (b *Board) UpsertPlayer(player protocol.Player) {
	view := newPlayerView(player)
	if i := b.indexOf(player.ID); i >= 0 {
		b.players[i] = view
		return
	}
	b.players = append(b.players, view)
}

// AddCard appends card to a player's hand. It is a no-op when the player is
// not displayed.
func (b *Board) AddCard(id protocol.PlayerID, card protocol.Card) bool {
	p := b.Player(id)
	if p == nil {
		b.log.WithField("player", id).Debug("draw for unknown player ignored")
		return false
	}
	p.Hand = append(p.Hand, newCardView(card))
	return true
}

// SetValidMoves hides every action and then shows exactly the listed
// (card, move) pairs on every displayed card with that ID.
func (b *Board) SetValidMoves(moves protocol.ValidMoves) {
	for _, p := range b.players {
		for _, c := range p.cards() {
			c.Actions = nil
		}
	}
	for id, set := range moves {
		for _, p := range b.players {
			for _, c := range p.cards() {
				if c.ID != id {
					continue
				}
				c.Actions = make(map[protocol.MoveType]protocol.SelectorList, len(set))
				for move, targets := range set {
					c.Actions[move] = targets
				}
			}
		}
	}
}

// AppendSystemMessage adds msg to the console if it comes from the system.
func (b *Board) AppendSystemMessage(msg protocol.ChatMessage) bool {
	if msg.From != protocol.SystemSender {
		return false
	}
	b.console = append(b.console, Line{Kind: LineSystem, Text: msg.Text})
	return true
}

func (b *Board) AppendError(text string) {
	b.console = append(b.console, Line{Kind: LineError, Text: text})
}

func (b *Board) SetCombat(players []protocol.PlayerID, monsters []protocol.Card) {
	b.combat = Combat{
		Players:  append([]protocol.PlayerID(nil), players...),
		Monsters: append([]protocol.Card(nil), monsters...),
	}
}

func (b *Board) Players() []*PlayerView { return b.players }

func (b *Board) Player(id protocol.PlayerID) *PlayerView {
	if i := b.indexOf(id); i >= 0 {
		return b.players[i]
	}
	return nil
}

// FindCard returns the first displayed card with id and the player holding it.
func (b *Board) FindCard(id protocol.CardID) (*CardView, *PlayerView) {
	for _, p := range b.players {
		for _, c := range p.cards() {
			if c.ID == id {
				return c, p
			}
		}
	}
	return nil, nil
}

// Card returns the card with id displayed for player, or nil.
func (b *Board) Card(player protocol.PlayerID, id protocol.CardID) *CardView {
	p := b.Player(player)
	if p == nil {
		return nil
	}
	for _, c := range p.cards() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (b *Board) Console() []Line { return b.console }

func (b *Board) Combat() Combat { return b.combat }

// LastSeq is the action number of the last applied message.
func (b *Board) LastSeq() int { return b.lastSeq }

// Affordance is one shown action button.
type Affordance struct {
	Player protocol.PlayerID
	Card   protocol.CardID
	Move   protocol.MoveType
}

// Affordances lists every shown action in roster order.
func (b *Board) Affordances() []Affordance {
	var out []Affordance
	for _, p := range b.players {
		for _, c := range p.cards() {
			for _, m := range c.Moves() {
				out = append(out, Affordance{Player: p.ID, Card: c.ID, Move: m})
			}
		}
	}
	return out
}

func (b *Board) indexOf(id protocol.PlayerID) int {
	for i, p := range b.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
