package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sandeepkv93/coachd/internal/cells"
)

type SummaryRow struct {
	Day           string
	Completed     bool
	BeforeProgram bool
}

// PrintTimeline writes one row per day.
func PrintTimeline(w io.Writer, rows []SummaryRow) {
	bold := color.New(color.Bold)
	done := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Day"), bold.Sprint("Completed"), bold.Sprint("Program"))
	for _, r := range rows {
		completed := faint.Sprint("no")
		if r.Completed {
			completed = done.Sprint("yes")
		}
		program := "in program"
		if r.BeforeProgram {
			program = faint.Sprint("before start")
		}
		tbl.AddRow(r.Day, completed, program)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// PrintCells writes a plain rendering of the cell list, one cell per row.
func PrintCells(w io.Writer, list []cells.Cell, width int) {
	if width <= 0 {
		width = 72
	}
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)
	tip := color.New()
	done := color.New(color.FgGreen)

	for _, c := range list {
		switch c.Kind {
		case cells.KindHeadline:
			_, _ = faint.Fprintln(w, c.Headline.SmallTitle)
			_, _ = title.Fprintln(w, c.Headline.MainTitle)
		case cells.KindTipCard:
			if c.Style == cells.StyleExpanded {
				_, _ = tip.Fprintf(w, "▶ %s [%s]%s\n", c.Tip.Headline, c.Tip.ID, savedMark(c.Tip.Saved))
				if body := strings.TrimSpace(c.Tip.Body); body != "" {
					_, _ = faint.Fprintln(w, indent(wordwrap.String(body, width-2)))
				}
				continue
			}
			_, _ = done.Fprintf(w, "✓ %s [%s]%s\n", c.Tip.Headline, c.Tip.ID, savedMark(c.Tip.Saved))
		case cells.KindExploreTip:
			_, _ = tip.Fprintf(w, "◆ %s [%s]\n", c.Tip.Headline, c.Tip.ID)
		case cells.KindDifferentTip:
			_, _ = faint.Fprintln(w, "  (skip for a different tip)")
		case cells.KindLockedTip:
			_, _ = faint.Fprintf(w, "🔒 locked (%s)\n", c.LockColor)
		case cells.KindExploreNote:
			_, _ = faint.Fprintln(w, "  more tips are waiting in explore")
		case cells.KindUnlockTip:
			_, _ = tip.Fprintf(w, "⏸ %s: keep going to unlock %q, or call it a day\n", c.Unlock, c.Tip.Headline)
		case cells.KindSectionHeader:
			_, _ = title.Fprintln(w, c.Title)
		case cells.KindSeparator:
			_, _ = faint.Fprintln(w, "┊")
		}
	}
}
