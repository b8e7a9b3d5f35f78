package interact

import (
	"sort"
	"strconv"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

type TargetKind int

const (
	TargetZone TargetKind = iota
	TargetCard
	TargetPlayer
)

func (k TargetKind) String() string {
	switch k {
	case TargetZone:
		return "zone"
	case TargetCard:
		return "card"
	case TargetPlayer:
		return "player"
	}
	return "unknown"
}

// TargetKey identifies a highlightable element: a combat zone by side name,
// or a card or player by ID.
type TargetKey struct {
	Kind TargetKind
	ID   string
}

type State interface {
	isState()
}

type Idle struct{}

// AwaitingTarget is a PLAY selection waiting for its target. Every
// highlighted target carries its own resolved reference.
type AwaitingTarget struct {
	Source  protocol.CardID
	Owner   protocol.PlayerID
	Targets map[TargetKey]*protocol.TargetRef
}

func (Idle) isState()           {}
func (AwaitingTarget) isState() {}

// Keys returns the highlighted targets in a stable order.
func (a AwaitingTarget) Keys() []TargetKey {
	keys := make([]TargetKey, 0, len(a.Targets))
	for k := range a.Targets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

type Input interface {
	isInput()
}

// ActionClick is a click on a card's action button.
type ActionClick struct {
	board.Affordance
}

// TargetClick is a click on a highlighted target.
type TargetClick struct {
	Key TargetKey
}

func (ActionClick) isInput() {}
func (TargetClick) isInput() {}

// Transition computes the next interaction state for one input. The returned
// message, if any, must be sent to the server.
func Transition(st State, in Input, b *board.Board) (State, *protocol.Outbound) {
	switch in := in.(type) {
	case ActionClick:
		card := b.Card(in.Player, in.Card)
		if card == nil || !card.HasAction(in.Move) {
			return st, nil
		}
		if in.Move != protocol.MovePlay {
			return st, protocol.NewAction(protocol.Action{
				MoveType: in.Move,
				Card:     in.Card,
				Player:   in.Player,
			})
		}
		targets := card.Targets(in.Move)
		if targets == "" {
			return st, nil
		}
		return AwaitingTarget{
			Source:  in.Card,
			Owner:   in.Player,
			Targets: resolveTargets(b, targets),
		}, nil
	case TargetClick:
		waiting, ok := st.(AwaitingTarget)
		if !ok {
			return st, nil
		}
		ref, ok := waiting.Targets[in.Key]
		if !ok {
			return st, nil
		}
		return Idle{}, protocol.NewAction(protocol.Action{
			MoveType: protocol.MovePlay,
			Card:     waiting.Source,
			Target:   ref,
			Player:   waiting.Owner,
		})
	}
	return st, nil
}

func resolveTargets(b *board.Board, list protocol.SelectorList) map[TargetKey]*protocol.TargetRef {
	targets := map[TargetKey]*protocol.TargetRef{}
	selectors, err := protocol.ParseSelectors(list)
	if err != nil {
		logging.Log.WithError(err).Warn("target list ignored")
		return targets
	}
	for _, s := range selectors {
		if s.IsGroup() {
			side := s.CombatSide()
			targets[TargetKey{Kind: TargetZone, ID: side}] = protocol.CombatTarget(side)
			continue
		}
		if id, err := strconv.Atoi(s.Entity); err == nil {
			if c, _ := b.FindCard(protocol.CardID(id)); c != nil {
				targets[TargetKey{Kind: TargetCard, ID: s.Entity}] = protocol.DirectTarget(s.Entity)
				continue
			}
			if b.Player(protocol.PlayerID(id)) != nil {
				targets[TargetKey{Kind: TargetPlayer, ID: s.Entity}] = protocol.DirectTarget(s.Entity)
				continue
			}
		}
		logging.Log.WithField("selector", s.String()).Debug("selector matches nothing on the table")
	}
	return targets
}
