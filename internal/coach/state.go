package coach

import (
	"time"

	"github.com/sandeepkv93/coachd/internal/cells"
)

type NoticeKind string

const (
	NoticeNone               NoticeKind = ""
	NoticePastNoActivity     NoticeKind = "past_no_activity"
	NoticeGenericRetry       NoticeKind = "generic_retry"
	NoticeFutureDate         NoticeKind = "future_date"
	NoticeBeforeProgramStart NoticeKind = "before_program_start"
)

// Notice is an overlay that replaces the cell list.
type Notice struct {
	Kind NoticeKind
	Day  time.Time
}

func (n Notice) Shown() bool { return n.Kind != NoticeNone }

// Retryable reports whether the notice offers a retry instead of a way back
// to today.
func (n Notice) Retryable() bool { return n.Kind == NoticeGenericRetry }

func PastNoActivity(day time.Time) Notice { return Notice{Kind: NoticePastNoActivity, Day: day} }

func GenericRetry() Notice { return Notice{Kind: NoticeGenericRetry} }

func FutureDate(day time.Time) Notice { return Notice{Kind: NoticeFutureDate, Day: day} }

func BeforeProgramStart(day time.Time) Notice {
	return Notice{Kind: NoticeBeforeProgramStart, Day: day}
}

// AnimationHint asks the view to animate the completion of TipID, whose
// card sits at Index. Index is -1 when the card is not in the list.
type AnimationHint struct {
	Animate bool
	TipID   string
	Index   int
}

// DayItem is one entry of the timeline strip.
type DayItem struct {
	Day           time.Time
	Today         bool
	Selected      bool
	Completed     bool
	BeforeProgram bool
}

type State struct {
	Timeline         []DayItem
	SelectedDay      time.Time
	Cells            []cells.Cell
	Overlay          Notice
	Loading          bool
	BackToTodayShown bool
	ScrollEnabled    bool
	// Scroll is the cell index the view should bring into view, or -1.
	Scroll    int
	Animation AnimationHint
	Toast     string
	// CallItADay carries the display name while the session-closed
	// animation should play.
	CallItADay *string
}

func (s State) clone() State {
	out := s
	out.Timeline = append([]DayItem(nil), s.Timeline...)
	out.Cells = append([]cells.Cell(nil), s.Cells...)
	if s.CallItADay != nil {
		name := *s.CallItADay
		out.CallItADay = &name
	}
	return out
}

// Result is the outcome of one LoadTips call.
type Result struct {
	Day     time.Time
	Cells   []cells.Cell
	Notice  Notice
	Fetched bool
}

const (
	ToastSaved   = "added to saved tips"
	ToastUnsaved = "removed from saved tips"
	ToastFailed  = "failed, try again"
)
