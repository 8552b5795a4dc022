package coach

import (
	"context"

	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/analytics"
	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
	"github.com/sandeepkv93/coachd/internal/scheduler"
)

// CompletionGate compares the flow tips of two snapshots position by
// position. It animates only when both lists have the same length and at
// least one tip flipped from open to completed; the last flipped tip is
// the one that was just completed.
func CompletionGate(prev, next model.DailyTipSet) (string, bool) {
	before, after := prev.FlowTips(), next.FlowTips()
	if len(before) != len(after) {
		return "", false
	}
	flipped := ""
	for i := range after {
		if before[i].ID != after[i].ID {
			continue
		}
		if !before[i].Completed && after[i].Completed {
			flipped = after[i].ID
		}
	}
	return flipped, flipped != ""
}

// HandleTipCompleted replaces the today snapshot with set and rebuilds,
// attaching an AnimationHint when the completion gate opens.
func (p *Presenter) HandleTipCompleted(ctx context.Context, set model.DailyTipSet) {
	now := p.clock.Now()
	closed := p.sessionClosed(ctx, now)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	tipID, animate := "", false
	if p.today != nil {
		tipID, animate = CompletionGate(*p.today, set)
	}
	snapshot := set.Clone()
	p.today = &snapshot
	p.gens[model.ShortDate(model.StartOfDay(now))]++
	if set.CompletedCount() > 0 {
		p.markTodayCompletedLocked(now)
	}

	if model.SameDay(p.state.SelectedDay, now) {
		built := p.buildLocked(snapshot, now, now, closed)
		hint := AnimationHint{Index: -1}
		if animate {
			hint = AnimationHint{Animate: true, TipID: tipID, Index: cells.IndexOfTip(built, tipID)}
			built = cells.PendingCompletion(built, hint.Index)
		}
		p.state.Cells = built
		p.state.Animation = hint
		p.state.Scroll = hint.Index
		p.fetchNotice = Notice{}
		p.state.Overlay = p.overlayLocked()
	}
	p.mu.Unlock()

	p.analytics.Event(analytics.EventDailyTipCompleted, map[string]any{"tip_id": tipID, "animated": animate})
	p.emit()
}

// FinishAnimation drops the pending-completion frame once the view has
// started animating it.
func (p *Presenter) FinishAnimation(ctx context.Context) {
	p.rebuildToday(ctx)
}

// SkipTip swaps the current tip for another one.
func (p *Presenter) SkipTip(ctx context.Context, id string) error {
	next, err := p.actions.SkipTip(ctx, id)
	if err != nil {
		p.logger.Warn("skip tip", zap.String("tip_id", id), zap.Error(err))
		p.toast(ToastFailed)
		return err
	}
	p.analytics.Event(analytics.EventTipSkipped, map[string]any{"tip_id": id, "replacement": next.ID})

	p.mu.Lock()
	if p.today != nil {
		if updated, ok := p.today.ReplaceTip(id, next); ok {
			p.today = &updated
		}
	}
	p.mu.Unlock()
	p.rebuildToday(ctx)
	return nil
}

// ToggleSave flips the saved flag of a tip and reports the outcome as a
// toast.
func (p *Presenter) ToggleSave(ctx context.Context, id string) (bool, error) {
	saved, err := p.actions.IsTipSaved(ctx, id)
	if err == nil {
		if saved {
			err = p.actions.UnsaveTip(ctx, id)
		} else {
			err = p.actions.SaveTip(ctx, id)
		}
	}
	if err != nil {
		p.logger.Warn("toggle saved tip", zap.String("tip_id", id), zap.Error(err))
		p.toast(ToastFailed)
		return false, err
	}

	nowSaved := !saved
	event, toast := analytics.EventTipSaved, ToastSaved
	if !nowSaved {
		event, toast = analytics.EventTipUnsaved, ToastUnsaved
	}
	p.analytics.Event(event, map[string]any{"tip_id": id, "source": analytics.ScreenCoach})

	p.mu.Lock()
	if p.today != nil {
		if tip, ok := p.today.FindTip(id); ok {
			tip.Saved = nowSaved
			if updated, ok := p.today.ReplaceTip(id, tip); ok {
				p.today = &updated
			}
		}
	}
	for i := range p.state.Cells {
		if p.state.Cells[i].Tip.ID == id {
			p.state.Cells[i].Tip.Saved = nowSaved
		}
	}
	p.state.Toast = toast
	p.mu.Unlock()
	p.emit()
	return nowSaved, nil
}

// KeepGoing unlocks the next locked tip after the user chose to continue
// past a session checkpoint. Its result is dropped when a newer snapshot
// of today landed while the unlock was in flight.
func (p *Presenter) KeepGoing(ctx context.Context, lockedTipID string) error {
	now := p.clock.Now()
	p.unlocked.Add(lockedTipID)

	key := model.ShortDate(model.StartOfDay(now))

	p.mu.Lock()
	count, isDaily := 0, false
	if p.today != nil {
		count = p.today.CompletedCount()
		isDaily = p.today.DailyTip.ID == lockedTipID
	}
	p.gens[key]++
	gen := p.gens[key]
	p.mu.Unlock()
	p.analytics.Event(analytics.EventKeepGoing, map[string]any{"count": count, "tip_id": lockedTipID})

	fetchCtx, cancel := p.fetchContext(ctx)
	set, err := p.timeline.UnlockTip(fetchCtx, lockedTipID, model.StartOfDay(now), isDaily)
	cancel()
	if err != nil {
		p.logger.Warn("unlock tip", zap.String("tip_id", lockedTipID), zap.Error(err))
	} else {
		p.mu.Lock()
		stale := gen != p.gens[key]
		if !stale {
			snapshot := set.Clone()
			p.today = &snapshot
		}
		p.mu.Unlock()
		if stale {
			p.logger.Debug("drop stale unlock result", zap.String("tip_id", lockedTipID))
			return nil
		}
	}
	p.rebuildToday(ctx)
	return err
}

// CallItADay closes today's session and schedules the rebuild that shows
// the closed layout.
func (p *Presenter) CallItADay(ctx context.Context) error {
	now := p.clock.Now()
	if err := p.tracker.Complete(ctx, now); err != nil {
		p.logger.Warn("close session", zap.Error(err))
		p.toast(ToastFailed)
		return err
	}
	p.analytics.Event(analytics.EventCallItADay, nil)

	p.mu.Lock()
	name := p.cfg.DisplayName
	p.state.CallItADay = &name
	p.mu.Unlock()
	p.emit()

	if p.sched == nil {
		p.mu.Lock()
		p.state.CallItADay = nil
		p.mu.Unlock()
		p.rebuildToday(ctx)
		return nil
	}
	p.sched.Cancel(delayedRebuildID)
	return p.sched.After(p.cfg.ReloadDelay, scheduler.Event{ID: delayedRebuildID, Kind: scheduler.KindDelayedRebuild, Day: model.StartOfDay(now)})
}

// OpenTip opens the tip preview. Taps on today's daily tip are tracked
// separately.
func (p *Presenter) OpenTip(id string) {
	source := ports.TipSourceOther
	p.mu.Lock()
	if p.today != nil && p.today.DailyTip.ID == id {
		source = ports.TipSourceDaily
	}
	p.mu.Unlock()
	if source == ports.TipSourceDaily {
		p.analytics.Event(analytics.EventDailyTipTap, nil)
	}
	p.navigator.OpenTip(id, source)
}

// OpenDailyTip selects today and opens its daily tip.
func (p *Presenter) OpenDailyTip(ctx context.Context) error {
	p.mu.Lock()
	if p.today == nil {
		p.mu.Unlock()
		return ErrNoToday
	}
	id := p.today.DailyTip.ID
	p.mu.Unlock()

	if _, err := p.SelectDay(ctx, p.clock.Now()); err != nil {
		return err
	}
	p.navigator.OpenTip(id, ports.TipSourceDaily)
	return nil
}

func (p *Presenter) OpenChat() {
	p.analytics.Event(analytics.EventChatTap, nil)
	p.navigator.OpenChat()
}

func (p *Presenter) OpenExplore() {
	p.analytics.Event(analytics.EventGoOnExploreTap, nil)
	p.navigator.OpenExplore()
}

// DismissExploreNote removes the explore note from the current list.
func (p *Presenter) DismissExploreNote() {
	p.mu.Lock()
	p.state.Cells = cells.Without(p.state.Cells, cells.KindExploreNote)
	p.mu.Unlock()
	p.emit()
}

func (p *Presenter) toast(msg string) {
	p.mu.Lock()
	p.state.Toast = msg
	p.mu.Unlock()
	p.emit()
}
