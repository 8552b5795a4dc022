package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sandeepkv93/coachd/internal/cells"
)

type CellOptions struct {
	Width int
	// Cursor highlights the cell at this index; -1 for none.
	Cursor int
	// Markdown renders expanded tip bodies through glamour.
	Markdown bool
}

var (
	smallTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mainTitleStyle  = lipgloss.NewStyle().Bold(true)
	expandedStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
	compactStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	exploreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	promptStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	sectionStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	noteStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("13")).Padding(0, 1)
	unlockStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1)
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

	lockColors = map[cells.LockColor]lipgloss.Color{
		cells.LockBrown:  lipgloss.Color("130"),
		cells.LockBlue:   lipgloss.Color("33"),
		cells.LockGreen:  lipgloss.Color("35"),
		cells.LockYellow: lipgloss.Color("220"),
	}
)

// RenderCells draws the cell list top to bottom and returns the first line
// of every cell so callers can scroll to one.
func RenderCells(list []cells.Cell, opts CellOptions) (string, []int) {
	width := opts.Width
	if width <= 0 {
		width = 72
	}
	offsets := make([]int, len(list))
	blocks := make([]string, 0, len(list))
	line := 0
	for i, c := range list {
		offsets[i] = line
		block := RenderCell(c, width, opts.Markdown)
		if i == opts.Cursor {
			block = markCursor(block)
		} else {
			block = indent(block)
		}
		blocks = append(blocks, block)
		line += strings.Count(block, "\n") + 1
	}
	return strings.Join(blocks, "\n"), offsets
}

func RenderCell(c cells.Cell, width int, markdown bool) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	switch c.Kind {
	case cells.KindHeadline:
		return smallTitleStyle.Render(c.Headline.SmallTitle) + "\n" + mainTitleStyle.Render(wordwrap.String(c.Headline.MainTitle, inner))
	case cells.KindTipCard:
		if c.Style == cells.StyleExpanded {
			return expandedStyle.Width(inner).Render(tipBody(c, inner-4, markdown))
		}
		mark := "○"
		if c.Tip.Completed {
			mark = "✓"
		}
		return compactStyle.Render(fmt.Sprintf("%s %s%s", mark, c.Tip.Headline, savedMark(c.Tip.Saved)))
	case cells.KindExploreTip:
		return exploreStyle.Render(fmt.Sprintf("◆ %s%s", c.Tip.Headline, savedMark(c.Tip.Saved)))
	case cells.KindDifferentTip:
		return promptStyle.Render("[s] show me a different tip")
	case cells.KindLockedTip:
		style := lipgloss.NewStyle().Foreground(lockColors[c.LockColor])
		return style.Render("🔒 ░░░░░░░░░░░░░░░░ locked")
	case cells.KindExploreNote:
		return noteStyle.Width(inner).Render("Want more? Find tips in explore.\n[e] go to explore  [x] dismiss")
	case cells.KindUnlockTip:
		lead := "You did two tips today."
		if c.Unlock == cells.UnlockAfterFiveTips {
			lead = "Five tips done today."
		}
		return unlockStyle.Width(inner).Render(fmt.Sprintf("%s Next up: %s\n[k] keep going  [d] call it a day", lead, c.Tip.Headline))
	case cells.KindSectionHeader:
		return sectionStyle.Render(c.Title)
	case cells.KindSeparator:
		return smallTitleStyle.Render("┊")
	default:
		return ""
	}
}

func tipBody(c cells.Cell, width int, markdown bool) string {
	var b strings.Builder
	b.WriteString(mainTitleStyle.Render(c.Tip.Headline + savedMark(c.Tip.Saved)))
	if topics := c.Tip.DisplayTopics(); len(topics) > 0 {
		b.WriteString("\n" + smallTitleStyle.Render("#"+strings.Join(topics, " #")))
	}
	if body := strings.TrimSpace(c.Tip.Body); body != "" {
		b.WriteString("\n\n")
		if markdown {
			b.WriteString(RenderMarkdown(body, width))
		} else {
			b.WriteString(wordwrap.String(body, width))
		}
	}
	return b.String()
}

func savedMark(saved bool) string {
	if saved {
		return " ★"
	}
	return ""
}

func markCursor(block string) string {
	lines := strings.Split(block, "\n")
	for i := range lines {
		prefix := "  "
		if i == 0 {
			prefix = cursorStyle.Render("›") + " "
		}
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}
