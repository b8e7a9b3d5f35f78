package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	TargetCombat = "combat"

	CombatPlayers  = "players"
	CombatMonsters = "monsters"
)

// TargetRef names what a PLAY action is aimed at. Composite targets such as a
// combat zone carry a Type; direct targets only carry the entity ID.
type TargetRef struct {
	Type string
	ID   string
}

func CombatTarget(side string) *TargetRef {
	return &TargetRef{Type: TargetCombat, ID: side}
}

func DirectTarget(id string) *TargetRef {
	return &TargetRef{ID: id}
}

func (t TargetRef) String() string {
	if t.Type == "" {
		return t.ID
	}
	return t.Type + ":" + t.ID
}

func (t TargetRef) MarshalJSON() ([]byte, error) {
	switch {
	case t.Type != "":
		return json.Marshal(struct {
			Type string `json:"type"`
			ID   string `json:"id,omitempty"`
		}{t.Type, t.ID})
	case t.ID == "":
		return []byte("{}"), nil
	}
	if n, err := strconv.Atoi(t.ID); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(t.ID)
}

func (t *TargetRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var v struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		t.Type, t.ID = v.Type, v.ID
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.Type, t.ID = "", joinSelectors(v)
	return nil
}

type Action struct {
	MoveType MoveType   `json:"move_type"`
	Card     CardID     `json:"card"`
	Target   *TargetRef `json:"target"`
	Player   PlayerID   `json:"player"`
}

type Outbound struct {
	Type   string  `json:"type"`
	Action *Action `json:"action"`
}

func NewAction(action Action) *Outbound {
	return &Outbound{Type: TypeAction, Action: &action}
}

func (m *Outbound) Encode() []byte {
	data, _ := json.Marshal(m)
	return data
}
