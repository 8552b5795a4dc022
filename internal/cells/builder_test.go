package cells

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/coachd/internal/model"
)

type idSet map[string]bool

func (s idSet) Contains(id string) bool { return s[id] }

var today = time.Date(2026, 2, 9, 9, 30, 0, 0, time.UTC)

func fixture(completed int) model.DailyTipSet {
	set := model.DailyTipSet{
		Day:      today,
		DailyTip: model.Tip{ID: "daily", Headline: "Daily"},
		ExtraTips: []model.Tip{
			{ID: "extra-1", Headline: "Extra 1"},
			{ID: "extra-2", Headline: "Extra 2"},
			{ID: "extra-3", Headline: "Extra 3", Locked: true},
			{ID: "extra-4", Headline: "Extra 4", Locked: true},
			{ID: "extra-5", Headline: "Extra 5", Locked: true},
		},
	}
	flow := []*model.Tip{&set.DailyTip}
	for i := range set.ExtraTips {
		flow = append(flow, &set.ExtraTips[i])
	}
	for i := 0; i < completed && i < len(flow); i++ {
		flow[i].Completed = true
		flow[i].Locked = false
	}
	return set
}

func kinds(cells []Cell) []Kind {
	out := make([]Kind, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.Kind)
	}
	return out
}

func todayInput(set model.DailyTipSet) Input {
	return Input{TipSet: set, SelectedDay: today, Now: today, DisplayName: "Sam", Unlocked: idSet{}}
}

func TestTodayNothingCompleted(t *testing.T) {
	got := Build(todayInput(fixture(0)))
	want := []Kind{KindHeadline, KindTipCard, KindDifferentTip, KindSeparator, KindLockedTip, KindSeparator, KindLockedTip}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
	assert.Equal(t, "daily", got[1].Tip.ID)
	assert.Equal(t, StyleExpanded, got[1].Style)
	assert.Equal(t, "daily", got[2].Tip.ID)
	assert.Equal(t, LockBlue, got[4].LockColor)
	assert.Equal(t, LockGreen, got[6].LockColor)
}

func TestTodayNoLeadingSeparatorWhenNothingCompleted(t *testing.T) {
	set := fixture(0)
	set.ExploreTips = []model.Tip{{ID: "explore-1", Headline: "Explore"}}
	got := Build(todayInput(set))
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, KindTipCard, got[1].Kind)
}

func TestTodayOneCompletedSeparatesCurrentTip(t *testing.T) {
	got := Build(todayInput(fixture(1)))
	want := []Kind{KindHeadline, KindTipCard, KindSeparator, KindTipCard, KindDifferentTip, KindSeparator, KindLockedTip}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
	assert.Equal(t, StyleCompact, got[1].Style)
	assert.Equal(t, "extra-1", got[3].Tip.ID)
	assert.Equal(t, StyleExpanded, got[3].Style)
}

func TestTodaySeparatorsOnlyBetweenCompletedCards(t *testing.T) {
	got := Build(todayInput(fixture(4)))
	want := []Kind{
		KindHeadline,
		KindTipCard, KindSeparator, KindTipCard, KindSeparator, KindTipCard, KindSeparator, KindTipCard,
		KindSeparator, KindTipCard, KindDifferentTip,
		KindSeparator, KindLockedTip,
	}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
}

func TestTodayGateAfterTwoTips(t *testing.T) {
	got := Build(todayInput(fixture(2)))
	want := []Kind{KindHeadline, KindTipCard, KindSeparator, KindTipCard, KindSeparator, KindUnlockTip, KindSeparator, KindLockedTip}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
	_, hasCurrent := CurrentTip(got)
	assert.False(t, hasCurrent, "gate must hide the current tip")
	assert.Equal(t, UnlockAfterTwoTips, got[5].Unlock)
	assert.Equal(t, "extra-3", got[5].Tip.ID)
}

func TestOpenDailyTipIsCurrentDespiteGate(t *testing.T) {
	set := fixture(0)
	set.ExtraTips[0].Completed = true
	set.ExtraTips[1].Completed = true
	require.True(t, SessionLocked(set, set.CompletedCount(), nil))

	got := Build(todayInput(set))
	current, hasCurrent := CurrentTip(got)
	require.True(t, hasCurrent)
	assert.Equal(t, "daily", current.ID)
	assert.Equal(t, 0, CountKind(got, KindUnlockTip))
	for _, c := range got {
		if c.Kind == KindTipCard && c.Tip.ID == "daily" {
			assert.Equal(t, StyleExpanded, c.Style)
		}
	}
}

func TestTodayGateWithoutLockedTipShowsNoPrompt(t *testing.T) {
	set := fixture(2)
	for i := range set.ExtraTips {
		set.ExtraTips[i].Locked = false
	}
	got := Build(todayInput(set))
	assert.Equal(t, 0, CountKind(got, KindUnlockTip))
	_, hasCurrent := CurrentTip(got)
	assert.False(t, hasCurrent)
}

func TestTodayGateOpensAfterUnlock(t *testing.T) {
	in := todayInput(fixture(2))
	in.Unlocked = idSet{"extra-5": true}
	got := Build(in)
	current, ok := CurrentTip(got)
	require.True(t, ok)
	assert.Equal(t, "extra-2", current.ID)
	assert.Equal(t, 0, CountKind(got, KindUnlockTip))
}

func TestTodayGateAfterFiveTips(t *testing.T) {
	got := Build(todayInput(fixture(5)))
	idx := -1
	for i, c := range got {
		if c.Kind == KindUnlockTip {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, UnlockAfterFiveTips, got[idx].Unlock)
	assert.Equal(t, "extra-5", got[idx].Tip.ID)
}

func TestTodaySessionClosed(t *testing.T) {
	set := fixture(2)
	set.ExploreTips = []model.Tip{{ID: "explore-1", Headline: "Found"}, {ID: "explore-2", Headline: "Found too"}}
	in := todayInput(set)
	in.SessionClosed = true
	got := Build(in)
	want := []Kind{
		KindHeadline, KindTipCard, KindTipCard,
		KindSectionHeader, KindLockedTip, KindLockedTip,
		KindExploreNote,
		KindSectionHeader, KindExploreTip, KindExploreTip,
	}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
	assert.Equal(t, TitleSavedForTomorrow, got[3].Title)
	assert.Equal(t, LockGreen, got[4].LockColor)
	assert.Equal(t, LockYellow, got[5].LockColor)
	assert.Equal(t, TitleFoundInExplore, got[7].Title)
	assert.Equal(t, StyleCompact, got[8].Style)
	assert.Contains(t, got[0].Headline.MainTitle, "Awesome work today, Sam")
}

func TestPastDayHeadlines(t *testing.T) {
	day := today.AddDate(0, 0, -2)
	empty := PastDay(fixture(0), day)
	assert.Equal(t, TitleBeyondProgram, empty[0].Headline.MainTitle)
	assert.Equal(t, "Saturday, February 7", empty[0].Headline.SmallTitle)
	assert.Len(t, empty, 1)

	learned := Build(Input{TipSet: fixture(3), SelectedDay: day, Now: today})
	assert.Equal(t, TitleDiveIntoLearned, learned[0].Headline.MainTitle)
	want := []Kind{KindHeadline, KindTipCard, KindTipCard, KindTipCard}
	if diff := cmp.Diff(want, kinds(learned)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
}

func TestPastDayExploreBlock(t *testing.T) {
	set := fixture(1)
	set.ExploreTips = []model.Tip{{ID: "explore-1", Headline: "Found"}}
	got := PastDay(set, today.AddDate(0, 0, -1))
	want := []Kind{KindHeadline, KindTipCard, KindSectionHeader, KindExploreTip}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
}

func TestTomorrowPlaceholders(t *testing.T) {
	got := Tomorrow(today.AddDate(0, 0, 1))
	want := []Cell{
		HeadlineCell(Headline{SmallTitle: "Tuesday, February 10", MainTitle: TitleTomorrow}),
		LockedTip(LockBrown), Separator(), LockedTip(LockBlue), Separator(), LockedTip(LockGreen),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tomorrow cells (-want +got):\n%s", diff)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	set := fixture(1)
	before := set.Clone()
	_ = Build(todayInput(set))
	if diff := cmp.Diff(before, set); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestIndexOfTipAndPendingCompletion(t *testing.T) {
	got := Build(todayInput(fixture(1)))
	idx := IndexOfTip(got, "daily")
	require.Equal(t, 1, idx)
	assert.Equal(t, -1, IndexOfTip(got, "missing"))

	pending := PendingCompletion(got, idx)
	assert.Equal(t, StyleExpanded, pending[idx].Style)
	assert.False(t, pending[idx].Tip.Completed)
	assert.True(t, got[idx].Tip.Completed, "original slice must be untouched")
}

func TestWithoutRemovesKind(t *testing.T) {
	in := todayInput(fixture(2))
	in.SessionClosed = true
	got := Without(Build(in), KindExploreNote)
	assert.Equal(t, 0, CountKind(got, KindExploreNote))
}

func TestTodayHeadlineVariants(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		who    string
		open   bool
		prefix string
	}{
		{"late night counts as evening", 2, "Sam", true, "Hey Sam"},
		{"morning", 3, "Sam", true, "Good morning, Sam"},
		{"afternoon", 12, "Sam", true, "Howdy, Sam"},
		{"evening", 18, "Sam", true, "Hey Sam"},
		{"anonymous morning", 8, "", true, "Good morning"},
		{"anonymous evening", 22, "  ", true, "Hi there"},
		{"closed ignores time bucket", 8, "Sam", false, "Awesome work today, Sam"},
		{"closed anonymous falls back to afternoon greeting", 15, "", false, "Howdy"},
		{"closed anonymous falls back to evening greeting", 22, "", false, "Hi there"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2026, 2, 9, tc.hour, 0, 0, 0, time.UTC)
			h := TodayHeadline(now, tc.who, tc.open)
			assert.True(t, strings.HasPrefix(h.MainTitle, tc.prefix), "got %q", h.MainTitle)
			assert.Contains(t, Emojis, h.Emoji)
			assert.Equal(t, 1, countEmojis(h.MainTitle))
			assert.Equal(t, "Monday, February 9", h.SmallTitle)
		})
	}
}

func countEmojis(s string) int {
	n := 0
	for _, e := range Emojis {
		n += strings.Count(s, e)
	}
	return n
}
