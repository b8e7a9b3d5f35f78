package protocol

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const groupPrefix = "combat"

// Selector is one entry of a target list: either a named group of targets
// (a combat zone) or a single entity ID.
type Selector struct {
	Group  string `parser:"  @Group"`
	Entity string `parser:"| @Entity"`
}

type selectorList struct {
	Items []*Selector `parser:"( @@ | \",\" )*"`
}

var selectorParser = participle.MustBuild[selectorList](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "Group", Pattern: groupPrefix + `[^,\s]*`},
		{Name: "Entity", Pattern: `[^,\s]+`},
		{Name: "Punct", Pattern: `,`},
	})),
)

// ParseSelectors splits a comma-joined target list. Empty entries are dropped.
func ParseSelectors(list SelectorList) ([]Selector, error) {
	if strings.TrimSpace(string(list)) == "" {
		return nil, nil
	}
	parsed, err := selectorParser.ParseString("", string(list))
	if err != nil {
		return nil, fmt.Errorf("parse selectors %q: %w", string(list), err)
	}
	out := make([]Selector, 0, len(parsed.Items))
	for _, s := range parsed.Items {
		out = append(out, *s)
	}
	return out, nil
}

func (s Selector) IsGroup() bool { return s.Group != "" }

func (s Selector) String() string {
	if s.IsGroup() {
		return s.Group
	}
	return s.Entity
}

// CombatSide returns the zone a group selector names, e.g. "players" for
// combat_players.
func (s Selector) CombatSide() string {
	return strings.TrimLeft(strings.TrimPrefix(s.Group, groupPrefix), "_")
}
