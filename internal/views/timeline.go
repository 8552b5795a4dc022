package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type DayData struct {
	Label         string
	Today         bool
	Selected      bool
	Completed     bool
	BeforeProgram bool
}

type NoticeData struct {
	Title  string
	Body   string
	Action string
}

var (
	dayStyle      = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = dayStyle.Reverse(true)
	todayStyle    = dayStyle.Bold(true)
	beforeStyle   = dayStyle.Foreground(lipgloss.Color("8"))
	noticeStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(1, 2)
)

// RenderTimeline draws the day strip with a completion dot per day.
func RenderTimeline(days []DayData) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		dot := "·"
		if d.Completed {
			dot = "●"
		}
		label := d.Label + " " + dot
		style := dayStyle
		switch {
		case d.Selected:
			style = selectedStyle
		case d.BeforeProgram:
			style = beforeStyle
		case d.Today:
			style = todayStyle
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func RenderNotice(n NoticeData) string {
	lines := []string{mainTitleStyle.Render(n.Title)}
	if n.Body != "" {
		lines = append(lines, n.Body)
	}
	if n.Action != "" {
		lines = append(lines, "", promptStyle.Render(n.Action))
	}
	return noticeStyle.Render(strings.Join(lines, "\n"))
}
