package coach

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/analytics"
	"github.com/sandeepkv93/coachd/internal/model"
)

// SelectDay switches the screen to day. Selecting the calendar day that is
// already selected is a no-op and reports false.
func (p *Presenter) SelectDay(ctx context.Context, day time.Time) (bool, error) {
	now := p.clock.Now()
	day = model.StartOfDay(day.In(now.Location()))

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false, ErrClosed
	}
	if !p.selector.Select(day) {
		p.mu.Unlock()
		return false, nil
	}
	skipLoad := p.applySelectionLocked(day)
	p.mu.Unlock()

	p.analytics.Event(analytics.EventExploredDays, map[string]any{"day_offset": model.DayOffset(day, now)})
	p.emit()

	if skipLoad {
		return true, nil
	}
	_, err := p.LoadTips(ctx, day)
	if errors.Is(err, ErrSuperseded) {
		err = nil
	}
	return true, err
}

// BackToToday returns the screen to today from wherever it is.
func (p *Presenter) BackToToday(ctx context.Context) error {
	now := p.clock.Now()
	p.mu.Lock()
	current := p.state.SelectedDay
	p.mu.Unlock()

	p.analytics.Event(analytics.EventBackToToday, map[string]any{"source_day_offset": model.DayOffset(current, now)})
	_, err := p.SelectDay(ctx, now)
	return err
}

// Reload refetches the timeline and today's tips, bypassing selection dedup.
func (p *Presenter) Reload(ctx context.Context) error {
	today := model.StartOfDay(p.clock.Now())
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.selector.Reset()
	p.selector.Select(today)
	p.applySelectionLocked(today)
	p.mu.Unlock()
	p.emit()

	p.refreshSummaries(ctx)
	_, err := p.LoadTips(ctx, today)
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

func (p *Presenter) refreshSummaries(ctx context.Context) {
	fetchCtx, cancel := p.fetchContext(ctx)
	defer cancel()
	summaries, err := p.timeline.DaySummaries(fetchCtx)
	if err != nil {
		p.logger.Warn("load day summaries", zap.Error(err))
		summaries = nil
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.summaries = summaries
	p.state.Timeline = p.timelineLocked(p.clock.Now())
	if day := p.state.SelectedDay; !day.IsZero() && p.beforeProgramLocked(day) && !model.SameDay(day, p.clock.Now()) {
		p.dayNotice = BeforeProgramStart(day)
		p.state.Overlay = p.overlayLocked()
	}
	p.mu.Unlock()
	p.emit()
}

// applySelectionLocked updates every selection-derived field and reports
// whether the day needs no load at all.
func (p *Presenter) applySelectionLocked(day time.Time) bool {
	now := p.clock.Now()
	p.state.SelectedDay = day
	p.state.BackToTodayShown = model.IsTomorrow(day, now) || model.BeforeDay(day, now)
	p.state.ScrollEnabled = !model.IsTomorrow(day, now)
	p.state.Animation = AnimationHint{Index: -1}
	p.state.Scroll = -1
	p.state.Toast = ""
	p.fetchNotice = Notice{}
	p.failedDay = nil

	skip := false
	switch {
	case !model.SameDay(day, now) && p.beforeProgramLocked(day):
		p.dayNotice = BeforeProgramStart(day)
		p.state.Cells = nil
		p.state.Loading = false
		skip = true
	case day.After(model.EndOfDay(now)) && !model.IsTomorrow(day, now):
		p.dayNotice = FutureDate(day)
		p.state.Cells = nil
		p.state.Loading = false
	default:
		p.dayNotice = Notice{}
	}
	p.state.Overlay = p.overlayLocked()
	p.state.Timeline = p.timelineLocked(now)
	return skip
}

// overlayLocked resolves notice precedence: day notices win over fetch
// failures.
func (p *Presenter) overlayLocked() Notice {
	if p.dayNotice.Shown() {
		return p.dayNotice
	}
	return p.fetchNotice
}

// programStartLocked is the first summarised day not flagged as before the
// program. The zero time means no cutoff.
func (p *Presenter) programStartLocked() time.Time {
	sawBefore := false
	for _, s := range p.summaries {
		if s.BeforeProgram {
			sawBefore = true
			continue
		}
		if sawBefore {
			return model.StartOfDay(s.Day)
		}
	}
	return time.Time{}
}

func (p *Presenter) beforeProgramLocked(day time.Time) bool {
	for _, s := range p.summaries {
		if model.SameDay(s.Day, day) {
			return s.BeforeProgram
		}
	}
	start := p.programStartLocked()
	return !start.IsZero() && model.BeforeDay(day, start)
}

// timelineLocked lays out the strip: the last TimelineDays-1 days up to
// today, then tomorrow.
func (p *Presenter) timelineLocked(now time.Time) []DayItem {
	today := model.StartOfDay(now)
	selected := p.state.SelectedDay
	items := make([]DayItem, 0, TimelineDays)
	for offset := -(TimelineDays - 2); offset <= 1; offset++ {
		day := today.AddDate(0, 0, offset)
		item := DayItem{
			Day:           day,
			Today:         offset == 0,
			Selected:      !selected.IsZero() && model.SameDay(day, selected),
			BeforeProgram: p.beforeProgramLocked(day),
		}
		for _, s := range p.summaries {
			if model.SameDay(s.Day, day) {
				item.Completed = s.Completed
				break
			}
		}
		items = append(items, item)
	}
	return items
}

func (p *Presenter) markTodayCompletedLocked(now time.Time) {
	for i := range p.state.Timeline {
		if model.SameDay(p.state.Timeline[i].Day, now) {
			p.state.Timeline[i].Completed = true
		}
	}
}
