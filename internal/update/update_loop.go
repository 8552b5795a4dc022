package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/coach"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForStateCmd(m.bridge), waitForNavCmd(m.bridge), m.loadSpinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = typed.Width, typed.Height
		m.viewport.Width = typed.Width
		m.viewport.Height = m.bodyHeight()
		m.syncViewport()
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		switch typed.String() {
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Palette, ":":
			m.Palette = PaletteState{Active: true}
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		}
		switch m.Screen {
		case ScreenTip:
			return m.handleDetailKey(typed)
		case ScreenExplore, ScreenChat:
			if s := typed.String(); s == "esc" || s == "backspace" {
				m.Screen = ScreenCoach
			}
			return m, nil
		default:
			return m.handleCoachKey(typed)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loadSpinner, cmd = m.loadSpinner.Update(typed)
		return m, cmd
	case StateMsg:
		cmd := m.applyState(typed.State)
		return m, tea.Batch(cmd, waitForStateCmd(m.bridge))
	case NavigateMsg:
		m.navigate(typed)
		return m, waitForNavCmd(m.bridge)
	case OpDoneMsg:
		if errors.Is(typed.Err, coach.ErrSuperseded) {
			return m, nil
		}
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: fmt.Sprintf("%s failed: %v", typed.Op, typed.Err), IsError: true}
			m.logger.Warn("operation failed", zap.String("op", typed.Op), zap.Error(typed.Err))
			return m, nil
		}
		if typed.Message != "" {
			m.Status = StatusBar{Text: typed.Message}
		}
		return m, nil
	case CompletedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: fmt.Sprintf("complete failed: %v", typed.Err), IsError: true}
			return m, nil
		}
		m.Screen = ScreenCoach
		m.Detail = nil
		m.Status = StatusBar{Text: "tip completed"}
		return m, nil
	case AnimationDoneMsg:
		if m.Animating != typed.TipID {
			return m, nil
		}
		m.Animating = ""
		return m, m.run("animate", func(ctx context.Context) (string, error) {
			m.coach.FinishAnimation(ctx)
			return "", nil
		})
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

// applyState adopts a presenter snapshot and starts the completion
// animation timer when the snapshot asks for one.
func (m *Model) applyState(s coach.State) tea.Cmd {
	prev := m.State
	m.State = s

	var cmd tea.Cmd
	if s.Toast != "" && s.Toast != prev.Toast {
		m.Status = StatusBar{Text: s.Toast, IsError: s.Toast == coach.ToastFailed}
	}
	m.Farewell = ""
	if s.CallItADay != nil {
		m.Farewell = farewell(*s.CallItADay)
	}
	if s.Animation.Animate && s.Animation.TipID != m.Animating {
		m.Animating = s.Animation.TipID
		id := s.Animation.TipID
		cmd = tea.Tick(m.animDelay, func(time.Time) tea.Msg { return AnimationDoneMsg{TipID: id} })
	}
	if s.Scroll >= 0 && s.Scroll < len(s.Cells) {
		m.Cursor = s.Scroll
	}
	m.Cursor = m.clampCursor(m.Cursor)
	if m.Detail != nil {
		if tip, ok := findTip(s.Cells, m.Detail.ID); ok {
			m.Detail.Saved = tip.Saved
			m.Detail.Done = tip.Completed
		}
	}
	m.syncViewport()
	return cmd
}

func (m *Model) navigate(msg NavigateMsg) {
	switch msg.Target {
	case TargetTip:
		detail := &TipDetail{ID: msg.TipID, Headline: msg.TipID, Source: msg.Source}
		if tip, ok := findTip(m.State.Cells, msg.TipID); ok {
			detail = &TipDetail{
				ID:       tip.ID,
				Headline: tip.Headline,
				Body:     tip.Body,
				Topics:   tip.DisplayTopics(),
				Saved:    tip.Saved,
				Done:     tip.Completed,
				Source:   msg.Source,
			}
		}
		m.Detail = detail
		m.Screen = ScreenTip
	case TargetExplore:
		m.Screen = ScreenExplore
	case TargetChat:
		m.Screen = ScreenChat
	}
}

func (m Model) handleCoachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Today:
		return m, m.run("today", func(ctx context.Context) (string, error) {
			return "", m.coach.BackToToday(ctx)
		})
	case "h", "left":
		return m, m.shiftDay(-1)
	case "l", "right":
		return m, m.shiftDay(1)
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter":
		return m, m.activate()
	case "s":
		tip, ok := cells.CurrentTip(m.State.Cells)
		if !ok {
			m.Status = StatusBar{Text: "no tip to skip", IsError: true}
			return m, nil
		}
		return m, m.skip(tip.ID)
	case "b":
		id := m.focusedTipID()
		if id == "" {
			m.Status = StatusBar{Text: "no tip selected", IsError: true}
			return m, nil
		}
		return m, m.toggleSave(id)
	case "u":
		for _, c := range m.State.Cells {
			if c.Kind == cells.KindUnlockTip {
				return m, m.keepGoing(c.Tip.ID)
			}
		}
		m.Status = StatusBar{Text: "nothing to unlock", IsError: true}
	case "d":
		return m, m.run("call it a day", func(ctx context.Context) (string, error) {
			return "", m.coach.CallItADay(ctx)
		})
	case "r":
		if m.State.Overlay.Retryable() {
			return m, m.run("retry", func(ctx context.Context) (string, error) {
				_, err := m.coach.Retry(ctx)
				return "", err
			})
		}
		return m, m.run("reload", func(ctx context.Context) (string, error) {
			return "reloaded", m.coach.Reload(ctx)
		})
	case "D":
		return m, m.run("daily tip", func(ctx context.Context) (string, error) {
			return "", m.coach.OpenDailyTip(ctx)
		})
	case "c":
		return m, m.run("chat", func(context.Context) (string, error) {
			m.coach.OpenChat()
			return "", nil
		})
	case "e":
		return m, m.run("explore", func(context.Context) (string, error) {
			m.coach.OpenExplore()
			return "", nil
		})
	case "x":
		return m, m.run("dismiss", func(context.Context) (string, error) {
			m.coach.DismissExploreNote()
			return "", nil
		})
	}
	m.syncViewport()
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Detail == nil {
		m.Screen = ScreenCoach
		return m, nil
	}
	switch msg.String() {
	case "esc", "backspace":
		m.Screen = ScreenCoach
		m.Detail = nil
	case "c", "enter":
		if m.Detail.Done {
			m.Status = StatusBar{Text: "tip already completed"}
			return m, nil
		}
		return m, m.complete(m.Detail.ID)
	case "b":
		return m, m.toggleSave(m.Detail.ID)
	}
	return m, nil
}

// activate performs the primary action of the cell under the cursor.
func (m Model) activate() tea.Cmd {
	if m.Cursor < 0 || m.Cursor >= len(m.State.Cells) {
		return nil
	}
	c := m.State.Cells[m.Cursor]
	switch c.Kind {
	case cells.KindTipCard, cells.KindExploreTip:
		id := c.Tip.ID
		return m.run("open", func(context.Context) (string, error) {
			m.coach.OpenTip(id)
			return "", nil
		})
	case cells.KindDifferentTip:
		return m.skip(c.Tip.ID)
	case cells.KindUnlockTip:
		return m.keepGoing(c.Tip.ID)
	case cells.KindExploreNote:
		return m.run("explore", func(context.Context) (string, error) {
			m.coach.OpenExplore()
			return "", nil
		})
	}
	return nil
}

func (m Model) skip(id string) tea.Cmd {
	return m.run("skip", func(ctx context.Context) (string, error) {
		return "showing a different tip", m.coach.SkipTip(ctx, id)
	})
}

func (m Model) toggleSave(id string) tea.Cmd {
	return m.run("save", func(ctx context.Context) (string, error) {
		_, err := m.coach.ToggleSave(ctx, id)
		return "", err
	})
}

func (m Model) keepGoing(id string) tea.Cmd {
	return m.run("keep going", func(ctx context.Context) (string, error) {
		return "tip unlocked", m.coach.KeepGoing(ctx, id)
	})
}

func (m Model) complete(id string) tea.Cmd {
	if m.completer == nil {
		return func() tea.Msg { return CompletedMsg{TipID: id, Err: errors.New("completion is not available")} }
	}
	ctx, completer := m.ctx, m.completer
	return func() tea.Msg {
		_, err := completer.CompleteTip(ctx, id)
		return CompletedMsg{TipID: id, Err: err}
	}
}

func (m Model) shiftDay(delta int) tea.Cmd {
	idx := -1
	for i, d := range m.State.Timeline {
		if d.Selected {
			idx = i
			break
		}
	}
	next := idx + delta
	if idx < 0 || next < 0 || next >= len(m.State.Timeline) {
		return nil
	}
	day := m.State.Timeline[next].Day
	return m.run("select day", func(ctx context.Context) (string, error) {
		_, err := m.coach.SelectDay(ctx, day)
		return "", err
	})
}

// run executes fn off the UI loop. The presenter publishes its new state
// through the bridge; the returned message only carries the outcome.
func (m Model) run(op string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	if m.coach == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		text, err := fn(ctx)
		return OpDoneMsg{Op: op, Message: text, Err: err}
	}
}

func (m *Model) moveCursor(delta int) {
	list := m.State.Cells
	for i := m.Cursor + delta; i >= 0 && i < len(list); i += delta {
		if selectable(list[i]) {
			m.Cursor = i
			return
		}
	}
}

func (m Model) clampCursor(cursor int) int {
	list := m.State.Cells
	if cursor >= 0 && cursor < len(list) && selectable(list[cursor]) {
		return cursor
	}
	for i, c := range list {
		if c.Kind == cells.KindTipCard && c.Style == cells.StyleExpanded {
			return i
		}
	}
	for i, c := range list {
		if selectable(c) {
			return i
		}
	}
	return -1
}

func (m Model) focusedTipID() string {
	if m.Cursor >= 0 && m.Cursor < len(m.State.Cells) {
		c := m.State.Cells[m.Cursor]
		if c.Kind == cells.KindTipCard || c.Kind == cells.KindExploreTip {
			return c.Tip.ID
		}
	}
	if tip, ok := cells.CurrentTip(m.State.Cells); ok {
		return tip.ID
	}
	return ""
}

func selectable(c cells.Cell) bool {
	switch c.Kind {
	case cells.KindTipCard, cells.KindExploreTip, cells.KindDifferentTip, cells.KindUnlockTip, cells.KindExploreNote:
		return true
	}
	return false
}

func findTip(list []cells.Cell, id string) (model.Tip, bool) {
	for _, c := range list {
		if (c.Kind == cells.KindTipCard || c.Kind == cells.KindExploreTip) && c.Tip.ID == id {
			return c.Tip, true
		}
	}
	return model.Tip{}, false
}

func farewell(name string) string {
	if strings.TrimSpace(name) == "" {
		return "That's it for today. See you tomorrow!"
	}
	return fmt.Sprintf("That's it for today, %s. See you tomorrow!", name)
}

func (m *Model) syncViewport() {
	if m.State.Overlay.Shown() {
		m.offsets = nil
		m.viewport.SetContent(views.RenderNotice(noticeData(m.State.Overlay)))
		m.viewport.GotoTop()
		return
	}
	content, offsets := views.RenderCells(m.State.Cells, views.CellOptions{Width: m.Width - 2, Cursor: m.Cursor, Markdown: m.markdown})
	m.offsets = offsets
	m.viewport.SetContent(content)
	if m.Cursor < 0 || m.Cursor >= len(offsets) || !m.State.ScrollEnabled {
		return
	}
	line := offsets[m.Cursor]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
	}
}

func noticeData(n coach.Notice) views.NoticeData {
	switch n.Kind {
	case coach.NoticePastNoActivity:
		return views.NoticeData{Title: "No tips on " + model.LongDate(n.Day), Body: "There was no activity that day.", Action: "[t] back to today"}
	case coach.NoticeFutureDate:
		return views.NoticeData{Title: "Come back on " + model.LongDate(n.Day), Body: "New tips unlock every day.", Action: "[t] back to today"}
	case coach.NoticeBeforeProgramStart:
		return views.NoticeData{Title: "Your program had not started yet", Body: "Tips begin on the day your program starts.", Action: "[t] back to today"}
	default:
		return views.NoticeData{Title: "Something went wrong", Body: "We couldn't load your tips.", Action: "[r] try again"}
	}
}
