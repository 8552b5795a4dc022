package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/commands"
	"github.com/sandeepkv93/coachd/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.commandInput.CursorEnd()
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette = PaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Day: func(a commands.DayArgs) (commands.Result, error) {
			day, err := model.ResolveDay(a.When, m.clock.Now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			next = m.run("select day", func(ctx context.Context) (string, error) {
				_, err := m.coach.SelectDay(ctx, day)
				return "", err
			})
			return commands.Result{Message: "showing " + model.LongDate(day)}, nil
		},
		Today: func() (commands.Result, error) {
			next = m.run("today", func(ctx context.Context) (string, error) {
				return "", m.coach.BackToToday(ctx)
			})
			return commands.Result{Message: "back to today"}, nil
		},
		Skip: func(a commands.TipArgs) (commands.Result, error) {
			id := a.ID
			if id == "" {
				tip, ok := cells.CurrentTip(m.State.Cells)
				if !ok {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no current tip to skip"}
				}
				id = tip.ID
			}
			next = m.skip(id)
			return commands.Result{Message: fmt.Sprintf("skipping %s", id)}, nil
		},
		Save: func(a commands.TipArgs) (commands.Result, error) {
			id, err := m.targetTip(a)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.toggleSave(id)
			return commands.Result{Message: fmt.Sprintf("toggling saved for %s", id)}, nil
		},
		Open: func(a commands.TipArgs) (commands.Result, error) {
			id, err := m.targetTip(a)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.run("open", func(context.Context) (string, error) {
				m.coach.OpenTip(id)
				return "", nil
			})
			return commands.Result{Message: fmt.Sprintf("opening %s", id)}, nil
		},
		Keep: func(a commands.TipArgs) (commands.Result, error) {
			id := a.ID
			if id == "" {
				for _, c := range m.State.Cells {
					if c.Kind == cells.KindUnlockTip {
						id = c.Tip.ID
					}
				}
			}
			if id == "" {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no locked tip to unlock"}
			}
			next = m.keepGoing(id)
			return commands.Result{Message: fmt.Sprintf("unlocking %s", id)}, nil
		},
		Done: func() (commands.Result, error) {
			next = m.run("call it a day", func(ctx context.Context) (string, error) {
				return "", m.coach.CallItADay(ctx)
			})
			return commands.Result{Message: "calling it a day"}, nil
		},
		Reload: func() (commands.Result, error) {
			next = m.run("reload", func(ctx context.Context) (string, error) {
				return "reloaded", m.coach.Reload(ctx)
			})
			return commands.Result{Message: "reloading"}, nil
		},
		Retry: func() (commands.Result, error) {
			next = m.run("retry", func(ctx context.Context) (string, error) {
				_, err := m.coach.Retry(ctx)
				return "", err
			})
			return commands.Result{Message: "retrying"}, nil
		},
		Chat: func() (commands.Result, error) {
			next = m.run("chat", func(context.Context) (string, error) {
				m.coach.OpenChat()
				return "", nil
			})
			return commands.Result{Message: "opening chat"}, nil
		},
		Explore: func() (commands.Result, error) {
			next = m.run("explore", func(context.Context) (string, error) {
				m.coach.OpenExplore()
				return "", nil
			})
			return commands.Result{Message: "opening explore"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, next
}

func (m Model) targetTip(a commands.TipArgs) (string, error) {
	if a.ID != "" {
		return a.ID, nil
	}
	if id := m.focusedTipID(); id != "" {
		return id, nil
	}
	return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no tip selected"}
}
