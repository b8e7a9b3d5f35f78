package board

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/SvenDH/go-card-client/protocol"
)

// Apply routes a decoded server event to the matching reconciler operation.
func (b *Board) Apply(ev protocol.Event) {
	if seq := ev.Seq(); seq > 0 {
		b.lastSeq = seq
	}
	switch e := ev.(type) {
	case *protocol.PlayersEvent:
		b.SetPlayers(e.Players)
	case *protocol.PlayerEvent:
		b.UpsertPlayer(e.Player)
	case *protocol.DrawEvent:
		b.AddCard(e.Player, e.Card)
	case *protocol.ValidMovesEvent:
		b.SetValidMoves(e.Moves)
	case *protocol.ChatEvent:
		b.AppendSystemMessage(e.Message)
	case *protocol.CombatEvent:
		b.SetCombat(e.Players, e.Monsters)
	case *protocol.ErrorEvent:
		b.AppendError(e.Message)
	default:
		b.log.WithField("type", ev.Kind()).Debug("event ignored")
	}
}

// ApplyFrame decodes a raw frame and applies it. Frames that cannot be
// decoded are dropped; the returned event is nil in that case.
func (b *Board) ApplyFrame(frame []byte) protocol.Event {
	ev, err := protocol.Decode(frame)
	if err != nil {
		entry := b.log.WithError(err)
		if errors.Is(err, protocol.ErrUnknownType) {
			entry.Debug("unknown frame ignored")
		} else {
			entry.WithFields(logrus.Fields{"size": len(frame)}).Debug("malformed frame ignored")
		}
		return nil
	}
	b.Apply(ev)
	return ev
}
