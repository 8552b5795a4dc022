// Package coach drives the coach screen: it owns the selected day, the today
// snapshot, and the cell list, and publishes immutable State snapshots to
// subscribers in the order they were produced.
package coach

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/coachd/internal/analytics"
	"github.com/sandeepkv93/coachd/internal/cells"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
	"github.com/sandeepkv93/coachd/internal/scheduler"
	"github.com/sandeepkv93/coachd/internal/session"
)

var (
	ErrClosed     = errors.New("coach: presenter closed")
	ErrSuperseded = errors.New("coach: superseded by a newer load")
	ErrNoToday    = errors.New("coach: today's tips are not loaded")
)

const (
	TimelineDays = 8

	delayedRebuildID = "coach-delayed-rebuild"
	dayRolloverID    = "coach-day-rollover"
)

type Deps struct {
	Timeline  ports.TimelineSource
	Actions   ports.TipActions
	Store     ports.KeyValueStore
	Analytics ports.AnalyticsSink
	Navigator ports.Navigator
	Clock     ports.Clock
	Logger    *zap.Logger
	// Scheduler is optional. Without it the call-it-a-day rebuild runs
	// immediately and there is no midnight rollover.
	Scheduler *scheduler.Engine
}

type Config struct {
	DisplayName  string
	FetchTimeout time.Duration
	ReloadDelay  time.Duration
}

type Presenter struct {
	timeline  ports.TimelineSource
	actions   ports.TipActions
	analytics ports.AnalyticsSink
	navigator ports.Navigator
	clock     ports.Clock
	logger    *zap.Logger
	sched     *scheduler.Engine
	tracker   *session.Tracker
	unlocked  *session.Unlocked
	cfg       Config

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	started     bool
	state       State
	seq         uint64
	selector    session.DaySelector
	today       *model.DailyTipSet
	summaries   []model.DaySummary
	gens        map[string]uint64
	dayNotice   Notice
	fetchNotice Notice
	failedDay   *time.Time

	emitMu    sync.Mutex
	delivered uint64
	subs      map[int]func(State)
	nextSub   int
}

func New(deps Deps, cfg Config) (*Presenter, error) {
	if deps.Timeline == nil || deps.Actions == nil || deps.Store == nil {
		return nil, errors.New("coach: timeline, actions, and store are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Analytics == nil {
		deps.Analytics = analytics.NewZapSink(deps.Logger)
	}
	if deps.Navigator == nil {
		deps.Navigator = ports.NoopNavigator{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.ReloadDelay < 0 {
		cfg.ReloadDelay = 0
	}

	root, cancel := context.WithCancel(context.Background())
	return &Presenter{
		timeline:  deps.Timeline,
		actions:   deps.Actions,
		analytics: deps.Analytics,
		navigator: deps.Navigator,
		clock:     deps.Clock,
		logger:    deps.Logger.Named("coach"),
		sched:     deps.Scheduler,
		tracker:   session.NewTracker(deps.Store),
		unlocked:  session.NewUnlocked(),
		cfg:       cfg,
		root:      root,
		cancel:    cancel,
		state:     State{Loading: true, ScrollEnabled: true, Scroll: -1, Animation: AnimationHint{Index: -1}},
		gens:      make(map[string]uint64),
		subs:      make(map[int]func(State)),
	}, nil
}

// Subscribe registers fn for every future snapshot and returns a function
// that removes it. fn must not call back into the presenter synchronously.
func (p *Presenter) Subscribe(fn func(State)) func() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.emitMu.Lock()
		defer p.emitMu.Unlock()
		delete(p.subs, id)
	}
}

// State returns the latest snapshot.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Start loads the timeline and today's tips concurrently, then begins
// listening for completions and timer events.
func (p *Presenter) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.mu.Unlock()

	p.analytics.Screen(analytics.ScreenCoach)
	p.listen()
	p.scheduleRollover()

	today := model.StartOfDay(p.clock.Now())
	p.mu.Lock()
	p.selector.Select(today)
	p.applySelectionLocked(today)
	p.mu.Unlock()
	p.emit()

	var g errgroup.Group
	g.Go(func() error {
		p.refreshSummaries(ctx)
		return nil
	})
	g.Go(func() error {
		_, err := p.LoadTips(ctx, today)
		if errors.Is(err, ErrClosed) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// Close abandons in-flight work. Results that arrive afterwards are dropped
// and subscribers are never called again.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	if p.sched != nil {
		p.sched.Cancel(delayedRebuildID)
		p.sched.Cancel(dayRolloverID)
	}
	p.wg.Wait()

	p.emitMu.Lock()
	p.subs = make(map[int]func(State))
	p.emitMu.Unlock()
}

// SetDisplayName changes the name used in today's headline.
func (p *Presenter) SetDisplayName(ctx context.Context, name string) {
	p.mu.Lock()
	p.cfg.DisplayName = name
	p.mu.Unlock()
	p.rebuildToday(ctx)
}

func (p *Presenter) emit() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq
	snap := p.state.clone()
	p.mu.Unlock()

	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if seq <= p.delivered {
		return
	}
	p.delivered = seq
	for _, fn := range p.subs {
		fn(snap)
	}
}

func (p *Presenter) listen() {
	completed := p.actions.Completed()
	if completed != nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.root.Done():
					return
				case set, ok := <-completed:
					if !ok {
						return
					}
					p.HandleTipCompleted(p.root, set)
				}
			}
		}()
	}

	if p.sched != nil {
		events := p.sched.C()
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.root.Done():
					return
				case ev, ok := <-events:
					if !ok {
						return
					}
					p.handleTimer(ev)
				}
			}
		}()
	}
}

func (p *Presenter) handleTimer(ev scheduler.Event) {
	switch ev.Kind {
	case scheduler.KindDelayedRebuild:
		p.mu.Lock()
		p.state.CallItADay = nil
		p.mu.Unlock()
		p.rebuildToday(p.root)
	case scheduler.KindDayRollover:
		p.logger.Info("day rollover", zap.String("day", model.ShortDate(ev.Day)))
		p.unlocked.Reset()
		p.scheduleRollover()
		if err := p.Reload(p.root); err != nil && !errors.Is(err, ErrClosed) {
			p.logger.Warn("reload after rollover failed", zap.Error(err))
		}
	default:
		p.logger.Debug("ignoring timer event", zap.String("kind", string(ev.Kind)))
	}
}

func (p *Presenter) scheduleRollover() {
	if p.sched == nil {
		return
	}
	now := p.clock.Now()
	next := scheduler.NextMidnight(now)
	p.sched.Cancel(dayRolloverID)
	err := p.sched.After(next.Sub(now), scheduler.Event{ID: dayRolloverID, Kind: scheduler.KindDayRollover, Day: next})
	if err != nil {
		p.logger.Warn("schedule rollover", zap.Error(err))
	}
}

func (p *Presenter) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	stop := context.AfterFunc(p.root, cancel)
	return fetchCtx, func() {
		stop()
		cancel()
	}
}

func (p *Presenter) sessionClosed(ctx context.Context, day time.Time) bool {
	closed, err := p.tracker.IsClosed(ctx, day)
	if err != nil {
		p.logger.Warn("read session state", zap.Error(err))
		return false
	}
	return closed
}

// buildLocked renders set for day. Callers hold p.mu.
func (p *Presenter) buildLocked(set model.DailyTipSet, day, now time.Time, sessionClosed bool) []cells.Cell {
	return cells.Build(cells.Input{
		TipSet:        set,
		SelectedDay:   day,
		Now:           now,
		SessionClosed: sessionClosed,
		DisplayName:   p.cfg.DisplayName,
		Unlocked:      p.unlocked,
	})
}

// rebuildToday re-renders the today snapshot without fetching, when today
// is the selected day.
func (p *Presenter) rebuildToday(ctx context.Context) {
	now := p.clock.Now()
	closed := p.sessionClosed(ctx, now)

	p.mu.Lock()
	if p.closed || p.today == nil || !model.SameDay(p.state.SelectedDay, now) {
		p.mu.Unlock()
		return
	}
	p.state.Cells = p.buildLocked(*p.today, now, now, closed)
	p.state.Animation = AnimationHint{Index: -1}
	p.state.Scroll = -1
	p.mu.Unlock()
	p.emit()
}
