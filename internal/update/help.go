package update

import "github.com/charmbracelet/bubbles/key"

type KeyBinding struct {
	Key    string
	Action string
}

func (m Model) renderHelpView() string {
	return m.helpModel.FullHelpView([][]key.Binding{
		toBindings(m.globalBindings()),
		toBindings(m.screenBindings()),
	})
}

func (m Model) shortBindings() []key.Binding {
	return toBindings([]KeyBinding{
		{Key: m.Keys.Palette, Action: "command"},
		{Key: m.Keys.Help, Action: "help"},
		{Key: m.Keys.Quit, Action: "quit"},
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) screenBindings() []KeyBinding {
	switch m.Screen {
	case ScreenTip:
		return []KeyBinding{
			{Key: "c", Action: "mark tip done"},
			{Key: "b", Action: "save / unsave"},
			{Key: "esc", Action: "back"},
		}
	case ScreenExplore, ScreenChat:
		return []KeyBinding{{Key: "esc", Action: "back"}}
	default:
		return []KeyBinding{
			{Key: "h/l", Action: "previous / next day"},
			{Key: m.Keys.Today, Action: "back to today"},
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "open / act"},
			{Key: "s", Action: "different tip"},
			{Key: "b", Action: "save / unsave"},
			{Key: "u", Action: "keep going"},
			{Key: "d", Action: "call it a day"},
			{Key: "r", Action: "retry / reload"},
			{Key: "D", Action: "open daily tip"},
			{Key: "e/c", Action: "explore / chat"},
			{Key: "x", Action: "dismiss note"},
		}
	}
}

func toBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
