// Package cells turns a day's tip set into the ordered list of cells the
// coach screen renders. Everything here is pure: no state is owned and the
// input snapshot is never mutated.
package cells

import (
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
)

// UnlockedSet reports tips the user explicitly unlocked during this run.
type UnlockedSet interface {
	Contains(id string) bool
}

type Input struct {
	TipSet        model.DailyTipSet
	SelectedDay   time.Time
	Now           time.Time
	SessionClosed bool
	DisplayName   string
	Unlocked      UnlockedSet
}

func Build(in Input) []Cell {
	if model.SameDay(in.Now, in.SelectedDay) {
		return Today(in)
	}
	return PastDay(in.TipSet, in.SelectedDay)
}

func Today(in Input) []Cell {
	set := in.TipSet
	completed := set.CompletedTips()
	count := len(completed)
	sessionOpen := !in.SessionClosed

	out := []Cell{HeadlineCell(TodayHeadline(in.Now, in.DisplayName, sessionOpen))}
	if sessionOpen {
		for i, tip := range completed {
			if i > 0 {
				out = append(out, Separator())
			}
			out = append(out, TipCard(tip, StyleCompact))
		}
		if current, ok := currentTip(set, count, in.Unlocked); ok {
			if count > 0 {
				out = append(out, Separator())
			}
			out = append(out, TipCard(current, StyleExpanded), DifferentTipPrompt(current))
		} else if next, ok := nextLockedTip(set); ok {
			if variant, gated := unlockVariant(count); gated {
				out = append(out, Separator(), UnlockTipPrompt(variant, next))
			}
		}
		out = append(out, lockedSection(count)...)
	} else {
		for _, tip := range completed {
			out = append(out, TipCard(tip, StyleCompact))
		}
		out = append(out, savedForTomorrow()...)
		out = append(out, ExploreNote())
	}
	return append(out, exploreSection(set.ExploreTips)...)
}

// PastDay renders a read-only day: completed tips and explore finds only.
func PastDay(set model.DailyTipSet, day time.Time) []Cell {
	completed := set.CompletedTips()
	out := []Cell{HeadlineCell(PastDayHeadline(day, len(completed)))}
	for _, tip := range completed {
		out = append(out, TipCard(tip, StyleCompact))
	}
	return append(out, exploreSection(set.ExploreTips)...)
}

// Tomorrow is the fixed placeholder sequence; nothing is fetched for it.
func Tomorrow(day time.Time) []Cell {
	return []Cell{
		HeadlineCell(Headline{SmallTitle: model.LongDate(day), MainTitle: TitleTomorrow}),
		LockedTip(LockBrown),
		Separator(),
		LockedTip(LockBlue),
		Separator(),
		LockedTip(LockGreen),
	}
}

// SessionLocked holds the session at the 3rd and 6th tip until the last
// extra tip has been explicitly unlocked.
func SessionLocked(set model.DailyTipSet, completedCount int, unlocked UnlockedSet) bool {
	if _, gated := unlockVariant(completedCount); !gated {
		return false
	}
	last, ok := set.LastExtraTip()
	if !ok {
		return false
	}
	return unlocked == nil || !unlocked.Contains(last.ID)
}

// currentTip is the open daily tip, else the first open extra tip unless
// the session is locked. The lock never hides an open daily tip.
func currentTip(set model.DailyTipSet, completedCount int, unlocked UnlockedSet) (model.Tip, bool) {
	if !set.DailyTip.Completed {
		return set.DailyTip, true
	}
	if SessionLocked(set, completedCount, unlocked) {
		return model.Tip{}, false
	}
	for _, tip := range set.ExtraTips {
		if !tip.Completed {
			return tip, true
		}
	}
	return model.Tip{}, false
}

func nextLockedTip(set model.DailyTipSet) (model.Tip, bool) {
	for _, tip := range set.ExtraTips {
		if !tip.Completed && tip.Locked {
			return tip, true
		}
	}
	return model.Tip{}, false
}

func unlockVariant(completedCount int) (UnlockVariant, bool) {
	switch completedCount {
	case 2:
		return UnlockAfterTwoTips, true
	case 5:
		return UnlockAfterFiveTips, true
	default:
		return "", false
	}
}

func lockedSection(completedCount int) []Cell {
	if completedCount > 0 {
		return []Cell{Separator(), LockedTip(LockBlue)}
	}
	return []Cell{Separator(), LockedTip(LockBlue), Separator(), LockedTip(LockGreen)}
}

func savedForTomorrow() []Cell {
	return []Cell{SectionHeader(TitleSavedForTomorrow), LockedTip(LockGreen), LockedTip(LockYellow)}
}

func exploreSection(tips []model.Tip) []Cell {
	if len(tips) == 0 {
		return nil
	}
	out := make([]Cell, 0, len(tips)+1)
	out = append(out, SectionHeader(TitleFoundInExplore))
	for _, tip := range tips {
		out = append(out, ExploreTipCard(tip))
	}
	return out
}
