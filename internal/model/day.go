package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	ShortDateLayout = "2006-01-02"
	LongDateLayout  = "Monday, January 2"
)

// DaySummary is one entry of the timeline strip.
type DaySummary struct {
	Day           time.Time
	BeforeProgram bool
	Completed     bool
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay compares calendar days in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsTomorrow(day, now time.Time) bool {
	return SameDay(now.AddDate(0, 0, 1), day)
}

// BeforeDay reports whether day falls on a calendar day strictly before ref.
func BeforeDay(day, ref time.Time) bool {
	return StartOfDay(day.In(ref.Location())).Before(StartOfDay(ref))
}

// DayOffset counts whole calendar days from ref to day.
func DayOffset(day, ref time.Time) int {
	a := StartOfDay(ref)
	b := StartOfDay(day.In(ref.Location()))
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	u1 := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	u2 := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(u2.Sub(u1).Hours() / 24)
}

func ShortDate(t time.Time) string {
	return t.Format(ShortDateLayout)
}

func LongDate(t time.Time) string {
	return t.Format(LongDateLayout)
}

func ParseShortDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(ShortDateLayout, raw, loc)
}

// ResolveDay parses YYYY-MM-DD, "today", "yesterday", "tomorrow", or a
// signed day offset relative to now.
func ResolveDay(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	today := StartOfDay(now)
	switch raw {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	if strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return time.Time{}, err
		}
		return today.AddDate(0, 0, n), nil
	}
	return ParseShortDate(raw, now.Location())
}
