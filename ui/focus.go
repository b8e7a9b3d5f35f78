package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/interact"
)

type focusKind int

const (
	focusUsername focusKind = iota
	focusGame
	focusConnect
	focusTarget
	focusAction
)

// focusItem is one element the keyboard can land on.
type focusItem struct {
	kind   focusKind
	action board.Affordance
	target interact.TargetKey
}

// focusables lists the form, then the highlighted targets while a PLAY is
// pending, then every shown action button.
func (m *Model) focusables() []focusItem {
	items := []focusItem{{kind: focusUsername}, {kind: focusGame}, {kind: focusConnect}}
	for _, key := range m.ctl.Targets() {
		items = append(items, focusItem{kind: focusTarget, target: key})
	}
	for _, a := range m.board.Affordances() {
		items = append(items, focusItem{kind: focusAction, action: a})
	}
	return items
}

func indexOf(items []focusItem, item focusItem) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	items := m.focusables()
	i := indexOf(items, m.focus)
	if i < 0 {
		i = min(m.focusIdx, len(items)-1)
	}
	i = (i + delta + len(items)) % len(items)
	return m.setFocus(items[i], i)
}

func (m *Model) setFocus(item focusItem, idx int) tea.Cmd {
	m.focus = item
	m.focusIdx = idx
	m.username.Blur()
	m.game.Blur()
	switch item.kind {
	case focusUsername:
		return m.username.Focus()
	case focusGame:
		return m.game.Focus()
	}
	return nil
}

// syncFocus keeps focus valid after the table changed under it.
func (m *Model) syncFocus() tea.Cmd {
	items := m.focusables()
	if i := indexOf(items, m.focus); i >= 0 {
		m.focusIdx = i
		return nil
	}
	i := min(m.focusIdx, len(items)-1)
	return m.setFocus(items[i], i)
}

func (m *Model) focusFirstTarget() tea.Cmd {
	items := m.focusables()
	for i, it := range items {
		if it.kind == focusTarget {
			return m.setFocus(it, i)
		}
	}
	return m.syncFocus()
}

func (m *Model) inInput() bool {
	return m.focus.kind == focusUsername || m.focus.kind == focusGame
}

func (m *Model) focused(item focusItem) bool {
	return m.focus == item
}
