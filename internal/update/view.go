package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/views"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	header := "coachd"
	if !m.State.SelectedDay.IsZero() {
		header += " | " + model.LongDate(m.State.SelectedDay)
	}
	if m.State.BackToTodayShown {
		header += " | t: back to today"
	}

	status := m.Status.Text
	if m.Status.IsError {
		status = "error: " + status
	}
	if m.State.Loading {
		status = strings.TrimSpace(m.loadSpinner.View() + " loading tips  " + status)
	}

	var notes []string
	if m.Farewell != "" {
		notes = append(notes, m.Farewell)
	}
	if m.Animating != "" {
		notes = append(notes, "✓ nice work!")
	}
	if m.Palette.Active {
		notes = append(notes, m.commandInput.View())
	}
	if m.HelpVisible {
		notes = append(notes, m.renderHelpView())
	}

	return views.RenderApp(views.AppData{
		Header:       header,
		Timeline:     m.renderTimeline(),
		Body:         m.renderBody(),
		StatusLine:   status,
		Notification: strings.Join(notes, "\n"),
		Footer:       m.helpModel.ShortHelpView(m.shortBindings()),
	})
}

func (m Model) renderTimeline() string {
	if len(m.State.Timeline) == 0 {
		return ""
	}
	days := make([]views.DayData, 0, len(m.State.Timeline))
	for _, d := range m.State.Timeline {
		days = append(days, views.DayData{
			Label:         dayLabel(d.Day),
			Today:         d.Today,
			Selected:      d.Selected,
			Completed:     d.Completed,
			BeforeProgram: d.BeforeProgram,
		})
	}
	return views.RenderTimeline(days)
}

func dayLabel(day time.Time) string {
	return day.Format("Mon")[:2] + " " + day.Format("2")
}

func (m Model) renderBody() string {
	switch m.Screen {
	case ScreenTip:
		if m.Detail == nil {
			return ""
		}
		tip := model.Tip{ID: m.Detail.ID, Headline: m.Detail.Headline, Body: m.Detail.Body, Topics: m.Detail.Topics, Saved: m.Detail.Saved, Completed: m.Detail.Done}
		card := views.RenderCell(cells.TipCard(tip, cells.StyleExpanded), m.Width, m.markdown)
		action := "c: mark done"
		if m.Detail.Done {
			action = "completed"
		}
		return card + "\n" + fmt.Sprintf("%s  b: save  esc: back", action)
	case ScreenExplore:
		var lines []string
		for _, c := range m.State.Cells {
			if c.Kind == cells.KindExploreTip {
				lines = append(lines, views.RenderCell(c, m.Width, false))
			}
		}
		if len(lines) == 0 {
			lines = append(lines, "Nothing to explore yet.")
		}
		return "Explore\n\n" + strings.Join(lines, "\n") + "\n\nesc: back"
	case ScreenChat:
		return "Chat with your coach is not available in the terminal.\n\nesc: back"
	default:
		return m.viewport.View()
	}
}
