package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/interact"
	"github.com/SvenDH/go-card-client/protocol"
)

const consoleLines = 8

const helpText = "tab/arrows move · enter activates · ctrl+c quits"

func (m *Model) View() string {
	sections := []string{
		m.viewForm(),
		m.viewStatus(),
	}
	if len(m.board.Players()) > 0 {
		sections = append(sections, m.viewCombat(), m.viewPlayers())
	}
	sections = append(sections, m.viewConsole(), subtleStyle.Render(helpText))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewForm() string {
	button := buttonStyle.Render("[ Connect ]")
	if m.focused(focusItem{kind: focusConnect}) {
		button = focusStyle.Render("[ Connect ]")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Munchkin "),
		m.username.View(), "  ",
		m.game.View(), "  ",
		button,
	)
}

func (m *Model) viewStatus() string {
	status := m.status
	if seq := m.board.LastSeq(); seq > 0 {
		status += fmt.Sprintf(" · action %d", seq)
	}
	if m.statusErr {
		return errorStyle.Render(status)
	}
	return subtleStyle.Render(status)
}

func (m *Model) viewCombat() string {
	combat := m.board.Combat()

	var names []string
	for _, id := range combat.Players {
		if p := m.board.Player(id); p != nil {
			names = append(names, p.Name)
		} else {
			names = append(names, "#"+id.String())
		}
	}
	var monsters []string
	for _, c := range combat.Monsters {
		monsters = append(monsters, cardLabel(c))
	}

	zones := []string{
		m.viewZone(protocol.CombatPlayers, "Fighting", names),
		m.viewZone(protocol.CombatMonsters, "Monsters", monsters),
	}
	// selectors naming other combat groups still get a zone to click
	for _, key := range m.ctl.Targets() {
		if key.Kind == interact.TargetZone && key.ID != protocol.CombatPlayers && key.ID != protocol.CombatMonsters {
			zones = append(zones, m.viewZone(key.ID, "Combat "+key.ID, nil))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, zones...)
}

func (m *Model) viewZone(side, title string, lines []string) string {
	key := interact.TargetKey{Kind: interact.TargetZone, ID: side}
	highlighted := m.ctl.Highlighted(key)
	header := bold(clrWhite).Render(title)
	if highlighted {
		header = m.targetLabel(key, title)
	}
	body := subtleStyle.Render("empty")
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	return box(highlighted).Render(header + "\n" + body)
}

func (m *Model) viewPlayers() string {
	var boxes []string
	for _, p := range m.board.Players() {
		boxes = append(boxes, m.viewPlayer(p))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m *Model) viewPlayer(p *board.PlayerView) string {
	key := interact.TargetKey{Kind: interact.TargetPlayer, ID: p.ID.String()}
	highlighted := m.ctl.Highlighted(key)

	name := bold(clrWhite).Render(p.Name)
	if highlighted {
		name = m.targetLabel(key, p.Name)
	}
	lines := []string{
		name,
		fmt.Sprintf("Level %d  Bonus %d  Total %d", p.Level, p.Bonus, p.Total),
		labelStyle.Render("Hand"),
	}
	for _, c := range p.Hand {
		lines = append(lines, m.viewCard(p, c))
	}
	lines = append(lines, labelStyle.Render("Carried"))
	for _, c := range p.Carried {
		lines = append(lines, m.viewCard(p, c))
	}
	return box(highlighted).Render(strings.Join(lines, "\n"))
}

func (m *Model) viewCard(p *board.PlayerView, c *board.CardView) string {
	key := interact.TargetKey{Kind: interact.TargetCard, ID: c.ID.String()}
	label := cardLabel(c.Card)
	switch {
	case m.ctl.Highlighted(key):
		label = m.targetLabel(key, label)
	case m.ctl.Selected(p.ID, c.ID):
		label = selectStyle.Render("> " + label)
	}
	parts := []string{label}
	for _, move := range c.Moves() {
		text := "[" + string(move) + "]"
		a := board.Affordance{Player: p.ID, Card: c.ID, Move: move}
		if m.focused(focusItem{kind: focusAction, action: a}) {
			parts = append(parts, focusStyle.Render(text))
		} else {
			parts = append(parts, buttonStyle.Render(text))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) targetLabel(key interact.TargetKey, text string) string {
	if m.focused(focusItem{kind: focusTarget, target: key}) {
		return focusStyle.Render(text)
	}
	return targetStyle.Render(text)
}

func cardLabel(c protocol.Card) string {
	name := c.Name
	if name == "" {
		name = c.Image
	}
	label := name + " #" + c.ID.String()
	var stats []string
	if c.Level != nil {
		stats = append(stats, "L"+strconv.Itoa(*c.Level))
	}
	if c.Bonus != nil {
		stats = append(stats, fmt.Sprintf("%+d", *c.Bonus))
	}
	if len(stats) > 0 {
		label += " (" + strings.Join(stats, " ") + ")"
	}
	return label
}

func (m *Model) viewConsole() string {
	lines := m.board.Console()
	if len(lines) > consoleLines {
		lines = lines[len(lines)-consoleLines:]
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Kind == board.LineError {
			out = append(out, errorStyle.Render(l.Text))
		} else {
			out = append(out, l.Text)
		}
	}
	if len(out) == 0 {
		out = append(out, subtleStyle.Render("no messages"))
	}
	return consoleStyle.Render(strings.Join(out, "\n"))
}
