package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("model: not found")
	ErrTransient     = errors.New("model: transient failure")
	ErrInvalidTipSet = errors.New("model: invalid tip set")
)

// MaxDisplayTopics caps how many topic tags a tip card shows.
const MaxDisplayTopics = 2

type Tip struct {
	ID                 string
	Headline           string
	Body               string
	Topics             []string
	BackgroundImageURL string
	Completed          bool
	Locked             bool
	Saved              bool
}

func (t Tip) DisplayTopics() []string {
	if len(t.Topics) <= MaxDisplayTopics {
		return t.Topics
	}
	return t.Topics[:MaxDisplayTopics]
}

func (t Tip) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: tip id is required")
	}
	if strings.TrimSpace(t.Headline) == "" {
		return fmt.Errorf("model: tip %s headline is required", t.ID)
	}
	return nil
}

// DailyTipSet is the full set of tips scoped to one calendar day. It is
// replaced wholesale on every fetch and never mutated in place.
type DailyTipSet struct {
	Day         time.Time
	DailyTip    Tip
	ExtraTips   []Tip
	ExploreTips []Tip
}

// FlowTips returns the daily tip followed by the extra tips, in order.
func (s DailyTipSet) FlowTips() []Tip {
	out := make([]Tip, 0, 1+len(s.ExtraTips))
	out = append(out, s.DailyTip)
	return append(out, s.ExtraTips...)
}

func (s DailyTipSet) CompletedTips() []Tip {
	out := make([]Tip, 0, 1+len(s.ExtraTips))
	for _, tip := range s.FlowTips() {
		if tip.Completed {
			out = append(out, tip)
		}
	}
	return out
}

func (s DailyTipSet) CompletedCount() int {
	return len(s.CompletedTips())
}

func (s DailyTipSet) LastExtraTip() (Tip, bool) {
	if len(s.ExtraTips) == 0 {
		return Tip{}, false
	}
	return s.ExtraTips[len(s.ExtraTips)-1], true
}

// FindTip looks a tip up across the flow and explore tips.
func (s DailyTipSet) FindTip(id string) (Tip, bool) {
	for _, tip := range s.FlowTips() {
		if tip.ID == id {
			return tip, true
		}
	}
	for _, tip := range s.ExploreTips {
		if tip.ID == id {
			return tip, true
		}
	}
	return Tip{}, false
}

// IsFlowTip reports whether id is the daily tip or one of the extra tips.
func (s DailyTipSet) IsFlowTip(id string) bool {
	for _, tip := range s.FlowTips() {
		if tip.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a copy whose slices do not alias the receiver's.
func (s DailyTipSet) Clone() DailyTipSet {
	out := s
	out.DailyTip = s.DailyTip.clone()
	out.ExtraTips = cloneTips(s.ExtraTips)
	out.ExploreTips = cloneTips(s.ExploreTips)
	return out
}

// ReplaceTip swaps the flow or explore tip carrying id for next.
func (s DailyTipSet) ReplaceTip(id string, next Tip) (DailyTipSet, bool) {
	out := s.Clone()
	if out.DailyTip.ID == id {
		out.DailyTip = next
		return out, true
	}
	for i := range out.ExtraTips {
		if out.ExtraTips[i].ID == id {
			out.ExtraTips[i] = next
			return out, true
		}
	}
	for i := range out.ExploreTips {
		if out.ExploreTips[i].ID == id {
			out.ExploreTips[i] = next
			return out, true
		}
	}
	return s, false
}

func (s DailyTipSet) Validate() error {
	if err := s.DailyTip.Validate(); err != nil {
		return fmt.Errorf("%w: daily tip: %v", ErrInvalidTipSet, err)
	}
	seen := make(map[string]bool, 1+len(s.ExtraTips))
	for _, tip := range s.FlowTips() {
		if err := tip.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTipSet, err)
		}
		if seen[tip.ID] {
			return fmt.Errorf("%w: duplicate tip id %q", ErrInvalidTipSet, tip.ID)
		}
		seen[tip.ID] = true
	}
	return nil
}

func (t Tip) clone() Tip {
	if t.Topics != nil {
		t.Topics = append([]string(nil), t.Topics...)
	}
	return t
}

func cloneTips(in []Tip) []Tip {
	if in == nil {
		return nil
	}
	out := make([]Tip, len(in))
	for i, tip := range in {
		out[i] = tip.clone()
	}
	return out
}
