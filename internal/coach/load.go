package coach

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/model"
)

// LoadTips produces the cells for day. Days up to the end of today are
// fetched; tomorrow is a fixed placeholder list; anything later is empty.
// Fetch failures come back as a Notice, never as an error. The error is
// ErrClosed after Close and ErrSuperseded when a newer load for the same
// day was triggered while this one was in flight.
func (p *Presenter) LoadTips(ctx context.Context, day time.Time) (Result, error) {
	now := p.clock.Now()
	day = model.StartOfDay(day.In(now.Location()))
	res := Result{Day: day}
	key := model.ShortDate(day)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return res, ErrClosed
	}
	p.gens[key]++
	gen := p.gens[key]

	if day.After(model.EndOfDay(now)) {
		if model.IsTomorrow(day, now) {
			res.Cells = cells.Tomorrow(day)
		}
		p.applyResultLocked(key, res)
		p.mu.Unlock()
		p.emit()
		return res, nil
	}

	selected := p.isSelectedLocked(key)
	if selected {
		p.state.Loading = true
	}
	p.mu.Unlock()
	if selected {
		p.emit()
	}

	fetchCtx, cancel := p.fetchContext(ctx)
	set, err := p.timeline.TipsForDay(fetchCtx, day)
	cancel()
	closed := false
	if err == nil && model.SameDay(day, now) {
		closed = p.sessionClosed(ctx, day)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return res, ErrClosed
	}
	if gen != p.gens[key] {
		p.mu.Unlock()
		p.logger.Debug("dropping stale tips", zap.String("day", key), zap.Uint64("generation", gen))
		return res, ErrSuperseded
	}

	if err != nil {
		res.Notice = p.classify(err, day)
		if res.Notice.Retryable() {
			failed := day
			p.failedDay = &failed
		}
	} else {
		if model.SameDay(day, now) {
			snapshot := set.Clone()
			p.today = &snapshot
		}
		res.Cells = p.buildLocked(set, day, now, closed)
		res.Fetched = true
	}
	p.applyResultLocked(key, res)
	p.mu.Unlock()
	p.emit()
	return res, nil
}

// Retry re-issues the last fetch that ended in a retryable notice.
func (p *Presenter) Retry(ctx context.Context) (Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Result{}, ErrClosed
	}
	if p.failedDay == nil {
		p.mu.Unlock()
		return Result{}, nil
	}
	day := *p.failedDay
	p.failedDay = nil
	p.fetchNotice = Notice{}
	p.state.Overlay = p.overlayLocked()
	p.mu.Unlock()

	return p.LoadTips(ctx, day)
}

func (p *Presenter) classify(err error, day time.Time) Notice {
	if errors.Is(err, model.ErrNotFound) {
		p.logger.Info("no tips for day", zap.String("day", model.ShortDate(day)))
		return PastNoActivity(day)
	}
	p.logger.Warn("load tips failed", zap.String("day", model.ShortDate(day)), zap.Error(err))
	return GenericRetry()
}

func (p *Presenter) isSelectedLocked(key string) bool {
	return !p.state.SelectedDay.IsZero() && model.ShortDate(p.state.SelectedDay) == key
}

func (p *Presenter) applyResultLocked(key string, res Result) {
	if !p.isSelectedLocked(key) {
		return
	}
	p.state.Loading = false
	p.state.Cells = append([]cells.Cell(nil), res.Cells...)
	p.state.Animation = AnimationHint{Index: -1}
	p.state.Scroll = -1
	p.fetchNotice = res.Notice
	if !res.Notice.Retryable() {
		p.failedDay = nil
	}
	p.state.Overlay = p.overlayLocked()
}
