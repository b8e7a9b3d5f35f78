package protocol

import (
	"reflect"
	"testing"
)

func TestParseSelectors(t *testing.T) {
	tests := []struct {
		list SelectorList
		want []Selector
	}{
		{"", nil},
		{"  ", nil},
		{"combat_players", []Selector{{Group: "combat_players"}}},
		{"combat_players,combat_monsters", []Selector{{Group: "combat_players"}, {Group: "combat_monsters"}}},
		{"12", []Selector{{Entity: "12"}}},
		{"combat_monsters, 4,,7", []Selector{{Group: "combat_monsters"}, {Entity: "4"}, {Entity: "7"}}},
		{"combat-zone,5", []Selector{{Group: "combat-zone"}, {Entity: "5"}}},
		{"combat.helpers", []Selector{{Group: "combat.helpers"}}},
	}
	for _, tt := range tests {
		got, err := ParseSelectors(tt.list)
		if err != nil {
			t.Fatalf("ParseSelectors(%q): %v", tt.list, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseSelectors(%q) = %#v, want %#v", tt.list, got, tt.want)
		}
	}
}

func TestSelectorCombatSide(t *testing.T) {
	tests := map[string]string{
		"combat_players":  "players",
		"combat_monsters": "monsters",
		"combat":          "",
	}
	for group, want := range tests {
		if got := (Selector{Group: group}).CombatSide(); got != want {
			t.Fatalf("CombatSide(%q) = %q, want %q", group, got, want)
		}
	}
	if (Selector{Entity: "4"}).IsGroup() {
		t.Fatalf("entity selector reported as group")
	}
}
