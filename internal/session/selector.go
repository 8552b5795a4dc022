package session

import (
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
)

// DaySelector deduplicates day selections by calendar day, compared through
// the short date format rather than the raw instant.
type DaySelector struct {
	current time.Time
	key     string
}

// Select records day and reports whether it differs from the previous pick.
func (s *DaySelector) Select(day time.Time) bool {
	key := model.ShortDate(day)
	if key == s.key {
		return false
	}
	s.current = day
	s.key = key
	return true
}

func (s *DaySelector) Current() (time.Time, bool) {
	return s.current, s.key != ""
}

// Reset forgets the selection so the next Select always reports a change.
func (s *DaySelector) Reset() {
	s.current = time.Time{}
	s.key = ""
}
