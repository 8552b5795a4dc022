package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/model"
)

func sampleCells() []cells.Cell {
	return []cells.Cell{
		cells.HeadlineCell(cells.Headline{SmallTitle: "Monday, Feb 9", MainTitle: "Good morning, Ana", Emoji: "☀️"}),
		cells.TipCard(model.Tip{ID: "daily", Headline: "Drink water", Completed: true}, cells.StyleCompact),
		cells.TipCard(model.Tip{ID: "extra-1", Headline: "Take a walk", Body: "Ten minutes outside helps.", Topics: []string{"move", "air", "habit"}, Saved: true}, cells.StyleExpanded),
		cells.DifferentTipPrompt(model.Tip{ID: "extra-1"}),
		cells.LockedTip(cells.LockBlue),
		cells.SectionHeader("Explore"),
		cells.ExploreTipCard(model.Tip{ID: "explore-1", Headline: "Sleep routine"}),
	}
}

func TestRenderAppIncludesSections(t *testing.T) {
	out := RenderApp(AppData{
		Header:       "coachd",
		Timeline:     "Mon Tue",
		Body:         "body text",
		StatusLine:   "ready",
		Footer:       "q quit",
		Notification: "saved",
	})
	for _, want := range []string{"coachd", "Mon Tue", "body text", "ready", "q quit", "saved"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderAppOmitsEmptyNotification(t *testing.T) {
	out := RenderApp(AppData{Header: "coachd", Body: "b", StatusLine: "s"})
	if strings.Contains(out, "╭") {
		t.Fatalf("expected no panel border without notification:\n%s", out)
	}
}

func TestRenderCellsOffsets(t *testing.T) {
	list := sampleCells()
	out, offsets := RenderCells(list, CellOptions{Width: 60, Cursor: 2})
	if len(offsets) != len(list) {
		t.Fatalf("expected %d offsets, got %d", len(list), len(offsets))
	}
	if offsets[0] != 0 {
		t.Fatalf("expected first offset 0, got %d", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Fatalf("expected increasing offsets, got %v", offsets)
		}
	}
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[offsets[2]], "›") {
		t.Fatalf("expected cursor marker on line %d, got %q", offsets[2], lines[offsets[2]])
	}
	for _, want := range []string{"Good morning, Ana", "Drink water", "Take a walk", "#move #air", "different tip", "locked", "Explore", "Sleep routine"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "#habit") {
		t.Fatalf("expected only two topics to render:\n%s", out)
	}
}

func TestRenderCellUnlockVariants(t *testing.T) {
	tip := model.Tip{ID: "extra-3", Headline: "Stretch"}
	two := RenderCell(cells.UnlockTipPrompt(cells.UnlockAfterTwoTips, tip), 60, false)
	five := RenderCell(cells.UnlockTipPrompt(cells.UnlockAfterFiveTips, tip), 60, false)
	if !strings.Contains(two, "two tips") || !strings.Contains(five, "Five tips") {
		t.Fatalf("unexpected unlock prompts:\n%s\n%s", two, five)
	}
	if !strings.Contains(two, "Stretch") {
		t.Fatalf("expected locked tip headline in prompt:\n%s", two)
	}
}

func TestRenderTimelineMarksCompletion(t *testing.T) {
	out := RenderTimeline([]DayData{
		{Label: "Sa 7", Completed: true},
		{Label: "Su 8"},
		{Label: "Mo 9", Today: true, Selected: true},
	})
	if !strings.Contains(out, "Sa 7 ●") || !strings.Contains(out, "Su 8 ·") {
		t.Fatalf("unexpected timeline: %q", out)
	}
}

func TestRenderNotice(t *testing.T) {
	out := RenderNotice(NoticeData{Title: "Nothing here", Body: "No tips that day.", Action: "[r] retry"})
	for _, want := range []string{"Nothing here", "No tips that day.", "[r] retry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in notice:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if got := RenderMarkdown("   ", 40); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
	if got := RenderMarkdown("**bold** tip", 40); !strings.Contains(got, "bold") {
		t.Fatalf("expected rendered text, got %q", got)
	}
}

func TestPrintTimeline(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	PrintTimeline(&buf, []SummaryRow{
		{Day: "2026-02-08", Completed: true},
		{Day: "2026-02-09"},
		{Day: "2026-02-01", BeforeProgram: true},
	})
	out := buf.String()
	for _, want := range []string{"Day", "2026-02-08", "yes", "no", "before start"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestPrintCells(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	PrintCells(&buf, sampleCells(), 60)
	out := buf.String()
	for _, want := range []string{"Good morning, Ana", "✓ Drink water [daily]", "▶ Take a walk [extra-1] ★", "Ten minutes", "locked (blue)", "◆ Sleep routine [explore-1]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
