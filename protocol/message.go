package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	TypePlayers    = "players"
	TypePlayer     = "player"
	TypeDraw       = "draw"
	TypeValidMoves = "valid_moves"
	TypeMessage    = "message"
	TypeCombat     = "combat"
	TypeError      = "error"

	TypeAction = "ACTION"

	// SystemSender is the only chat sender shown in the console.
	SystemSender = "system"
)

var ErrUnknownType = errors.New("unknown message type")

type PlayerID int

type CardID int

func (id CardID) String() string { return strconv.Itoa(int(id)) }

func (id PlayerID) String() string { return strconv.Itoa(int(id)) }

type MoveType string

const (
	MoveDraw  MoveType = "DRAW"
	MoveCarry MoveType = "CARRY"
	MovePlay  MoveType = "PLAY"
	MoveFight MoveType = "FIGHT"
	MoveGive  MoveType = "GIVE"
	MoveDone  MoveType = "DONE"
)

type Card struct {
	ID    CardID `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image"`
	Level *int   `json:"level,omitempty"`
	Bonus *int   `json:"bonus,omitempty"`
}

// Cards decodes either a single card object or a list of cards.
type Cards []Card

func (c *Cards) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '{' {
		var card Card
		if err := json.Unmarshal(data, &card); err != nil {
			return err
		}
		*c = Cards{card}
		return nil
	}
	var list []Card
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

type Player struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Level   int      `json:"level"`
	Bonus   int      `json:"bonus"`
	Total   int      `json:"total"`
	Hand    []Card   `json:"hand"`
	Carried []Card   `json:"carried"`
}

type ChatMessage struct {
	From    string `json:"from"`
	Text    string `json:"text"`
	Private bool   `json:"private,omitempty"`
}

// SelectorList is the raw comma-joined target selector string the server
// attaches to a card move. A null, a string or a list of strings decode into it.
type SelectorList string

func (s *SelectorList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SelectorList(joinSelectors(v))
	return nil
}

func joinSelectors(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if p := joinSelectors(e); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// ValidMoves maps a card to the moves it may make this turn and their targets.
type ValidMoves map[CardID]map[MoveType]SelectorList

func (v *ValidMoves) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	moves := make(ValidMoves, len(raw))
	for key, body := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			// moves without a card, e.g. DONE keyed by null
			continue
		}
		set, err := decodeMoveSet(body)
		if err != nil {
			return fmt.Errorf("moves for card %s: %w", key, err)
		}
		moves[CardID(id)] = set
	}
	*v = moves
	return nil
}

func decodeMoveSet(data []byte) (map[MoveType]SelectorList, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []struct {
			Type    MoveType     `json:"type"`
			Move    MoveType     `json:"move"`
			Targets SelectorList `json:"targets"`
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		set := make(map[MoveType]SelectorList, len(list))
		for _, m := range list {
			move := m.Type
			if move == "" {
				move = m.Move
			}
			if move != "" {
				set[move] = m.Targets
			}
		}
		return set, nil
	}
	var set map[MoveType]SelectorList
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return set, nil
}

type Event interface {
	Kind() string
	Seq() int
}

type Header struct {
	Type         string `json:"type"`
	ActionNumber int    `json:"action_number,omitempty"`
}

func (h Header) Kind() string { return h.Type }

func (h Header) Seq() int { return h.ActionNumber }

type PlayersEvent struct {
	Header
	Players []Player `json:"players"`
}

type PlayerEvent struct {
	Header
	Player Player `json:"player"`
}

type DrawEvent struct {
	Header
	Player PlayerID `json:"player"`
	Card   Card     `json:"card"`
}

type ValidMovesEvent struct {
	Header
	Moves ValidMoves `json:"moves"`
}

type ChatEvent struct {
	Header
	Message ChatMessage `json:"message"`
}

type CombatEvent struct {
	Header
	Players  []PlayerID `json:"players"`
	Monsters Cards      `json:"monsters"`
}

// ErrorEvent is a server rejection, sent either as an error envelope or as a
// bare text frame such as "INVALID MOVE".
type ErrorEvent struct {
	Header
	Message string `json:"message"`
}

// Decode parses one inbound frame. Frames with an unknown type return an
// error wrapping ErrUnknownType.
func Decode(data []byte) (Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrUnknownType)
	}
	if data[0] != '{' {
		return &ErrorEvent{Header: Header{Type: TypeError}, Message: string(data)}, nil
	}
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	var ev Event
	switch h.Type {
	case TypePlayers:
		ev = &PlayersEvent{}
	case TypePlayer:
		ev = &PlayerEvent{}
	case TypeDraw:
		ev = &DrawEvent{}
	case TypeValidMoves:
		ev = &ValidMovesEvent{}
	case TypeMessage:
		ev = &ChatEvent{}
	case TypeCombat:
		ev = &CombatEvent{}
	case TypeError:
		ev = &ErrorEvent{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, h.Type)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", h.Type, err)
	}
	return ev, nil
}
