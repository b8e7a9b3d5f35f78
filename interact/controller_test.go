package interact

import (
	"errors"
	"reflect"
	"testing"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/protocol"
)

type recorder struct {
	sent []protocol.Action
	err  error
}

func (r *recorder) Send(msg *protocol.Outbound) error {
	if msg.Type != protocol.TypeAction {
		return errors.New("unexpected type " + msg.Type)
	}
	r.sent = append(r.sent, *msg.Action)
	return r.err
}

func table(moves protocol.ValidMoves) *board.Board {
	b := board.New()
	b.SetPlayers([]protocol.Player{
		{ID: 0, Name: "A", Hand: []protocol.Card{{ID: 3}, {ID: 4}}},
		{ID: 1, Name: "B", Hand: []protocol.Card{{ID: 8}}},
	})
	b.SetValidMoves(moves)
	return b
}

func TestCarrySendsImmediately(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MoveCarry: ""}})
	rec := &recorder{}
	c := New(b, rec)

	if !c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MoveCarry}) {
		t.Fatalf("carry produced no message")
	}
	want := []protocol.Action{{MoveType: protocol.MoveCarry, Card: 3, Player: 0}}
	if !reflect.DeepEqual(rec.sent, want) {
		t.Fatalf("sent = %+v, want %+v", rec.sent, want)
	}
	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("state = %#v, want Idle", c.State())
	}
	if len(c.Targets()) != 0 {
		t.Fatalf("carry highlighted %v", c.Targets())
	}
}

func TestCarryDuringSelectionKeepsHighlights(t *testing.T) {
	b := table(protocol.ValidMoves{
		3: {protocol.MovePlay: "combat_monsters"},
		4: {protocol.MoveCarry: ""},
	})
	rec := &recorder{}
	c := New(b, rec)

	c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})
	c.ActivateAction(board.Affordance{Player: 0, Card: 4, Move: protocol.MoveCarry})

	if len(rec.sent) != 1 || rec.sent[0].MoveType != protocol.MoveCarry {
		t.Fatalf("sent = %+v", rec.sent)
	}
	if !c.Selected(0, 3) || !c.Highlighted(TargetKey{Kind: TargetZone, ID: "monsters"}) {
		t.Fatalf("carry cleared the pending selection")
	}
}

func TestPlayWithSingleEntityTarget(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: "8"}})
	rec := &recorder{}
	c := New(b, rec)

	if c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay}) {
		t.Fatalf("play with targets sent before a target was chosen")
	}
	key := TargetKey{Kind: TargetCard, ID: "8"}
	if got := c.Targets(); !reflect.DeepEqual(got, []TargetKey{key}) {
		t.Fatalf("targets = %v, want [%v]", got, key)
	}
	if !c.Selected(0, 3) || c.Selected(0, 4) {
		t.Fatalf("source card highlight wrong")
	}

	if c.ActivateTarget(TargetKey{Kind: TargetZone, ID: "players"}) {
		t.Fatalf("non-highlighted target reacted")
	}
	if !c.ActivateTarget(key) {
		t.Fatalf("highlighted target did not send")
	}
	want := []protocol.Action{{MoveType: protocol.MovePlay, Card: 3, Target: protocol.DirectTarget("8"), Player: 0}}
	if !reflect.DeepEqual(rec.sent, want) {
		t.Fatalf("sent = %+v, want %+v", rec.sent, want)
	}
	if _, ok := c.State().(Idle); !ok || len(c.Targets()) != 0 || c.Selected(0, 3) {
		t.Fatalf("highlights not cleared: %#v", c.State())
	}
}

func TestPlayResolvesEachTargetOnItsOwn(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: "combat_players,combat_monsters"}})
	tests := []struct {
		key  TargetKey
		want *protocol.TargetRef
	}{
		{TargetKey{Kind: TargetZone, ID: "players"}, protocol.CombatTarget(protocol.CombatPlayers)},
		{TargetKey{Kind: TargetZone, ID: "monsters"}, protocol.CombatTarget(protocol.CombatMonsters)},
	}
	for _, tt := range tests {
		rec := &recorder{}
		c := New(b, rec)
		c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})
		if len(c.Targets()) != 2 {
			t.Fatalf("targets = %v", c.Targets())
		}
		c.ActivateTarget(tt.key)
		if len(rec.sent) != 1 || !reflect.DeepEqual(rec.sent[0].Target, tt.want) {
			t.Fatalf("clicking %v sent %+v, want target %v", tt.key, rec.sent, tt.want)
		}
	}
}

func TestPlayEntityFallsBackToPlayer(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: "1,99"}})
	c := New(b, &recorder{})
	c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})

	want := []TargetKey{{Kind: TargetPlayer, ID: "1"}}
	if got := c.Targets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
}

func TestPlayWithoutTargetsDoesNothing(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: ""}})
	rec := &recorder{}
	c := New(b, rec)
	if c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay}) {
		t.Fatalf("message sent")
	}
	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("state = %#v, want Idle", c.State())
	}
}

func TestHiddenActionIgnored(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MoveCarry: ""}})
	rec := &recorder{}
	c := New(b, rec)
	c.ActivateAction(board.Affordance{Player: 0, Card: 4, Move: protocol.MoveCarry})
	c.ActivateAction(board.Affordance{Player: 1, Card: 3, Move: protocol.MoveCarry})
	if len(rec.sent) != 0 {
		t.Fatalf("hidden actions sent %+v", rec.sent)
	}
}

func TestNewPlayReplacesSelection(t *testing.T) {
	b := table(protocol.ValidMoves{
		3: {protocol.MovePlay: "combat_players"},
		4: {protocol.MovePlay: "combat_monsters"},
	})
	c := New(b, &recorder{})
	c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})
	c.ActivateAction(board.Affordance{Player: 0, Card: 4, Move: protocol.MovePlay})

	if c.Selected(0, 3) || !c.Selected(0, 4) {
		t.Fatalf("old source still selected")
	}
	want := []TargetKey{{Kind: TargetZone, ID: "monsters"}}
	if got := c.Targets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
}

func TestValidMovesResetKeepsSelection(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: "combat_players"}})
	rec := &recorder{}
	c := New(b, rec)
	c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})

	b.SetValidMoves(protocol.ValidMoves{})
	if !c.ActivateTarget(TargetKey{Kind: TargetZone, ID: "players"}) {
		t.Fatalf("pending selection lost after valid_moves")
	}
}

func TestSendFailureStillReturnsToIdle(t *testing.T) {
	b := table(protocol.ValidMoves{3: {protocol.MovePlay: "combat_players"}})
	c := New(b, nil)
	c.ActivateAction(board.Affordance{Player: 0, Card: 3, Move: protocol.MovePlay})
	c.ActivateTarget(TargetKey{Kind: TargetZone, ID: "players"})
	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("state = %#v, want Idle", c.State())
	}
}
