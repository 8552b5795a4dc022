package coach

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/coachd/internal/analytics"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
)

var (
	now       = time.Date(2026, 2, 9, 9, 30, 0, 0, time.UTC)
	today     = model.StartOfDay(now)
	yesterday = today.AddDate(0, 0, -1)
	tomorrow  = today.AddDate(0, 0, 1)

	errBackend = errors.New("backend unavailable")
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeTimeline struct {
	mu        sync.Mutex
	sets      map[string]model.DailyTipSet
	errs      map[string]error
	summaries []model.DaySummary
	calls     map[string]int
	unlocks   []string
	tipsFn    func(ctx context.Context, day time.Time, call int) (model.DailyTipSet, error)
	onUnlock  func()
}

func newFakeTimeline() *fakeTimeline {
	return &fakeTimeline{
		sets:  make(map[string]model.DailyTipSet),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeTimeline) put(set model.DailyTipSet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[model.ShortDate(set.Day)] = set
}

func (f *fakeTimeline) fail(day time.Time, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[model.ShortDate(day)] = err
}

func (f *fakeTimeline) clearFailure(day time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, model.ShortDate(day))
}

func (f *fakeTimeline) callsFor(day time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[model.ShortDate(day)]
}

func (f *fakeTimeline) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeTimeline) DaySummaries(context.Context) ([]model.DaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.DaySummary(nil), f.summaries...), nil
}

func (f *fakeTimeline) TipsForDay(ctx context.Context, day time.Time) (model.DailyTipSet, error) {
	f.mu.Lock()
	key := model.ShortDate(day)
	f.calls[key]++
	call := f.calls[key]
	fn := f.tipsFn
	set, ok := f.sets[key]
	err := f.errs[key]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, day, call)
	}
	if err != nil {
		return model.DailyTipSet{}, err
	}
	if !ok {
		return model.DailyTipSet{}, model.ErrNotFound
	}
	return set.Clone(), nil
}

func (f *fakeTimeline) UnlockTip(_ context.Context, id string, day time.Time, _ bool) (model.DailyTipSet, error) {
	f.mu.Lock()
	hook := f.onUnlock
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks = append(f.unlocks, id)
	key := model.ShortDate(day)
	set, ok := f.sets[key]
	if !ok {
		return model.DailyTipSet{}, model.ErrNotFound
	}
	tip, found := set.FindTip(id)
	if !found {
		return model.DailyTipSet{}, model.ErrNotFound
	}
	tip.Locked = false
	set, _ = set.ReplaceTip(id, tip)
	f.sets[key] = set
	return set.Clone(), nil
}

type fakeActions struct {
	mu        sync.Mutex
	saved     map[string]bool
	err       error
	skipTo    model.Tip
	completed chan model.DailyTipSet
}

func newFakeActions() *fakeActions {
	return &fakeActions{saved: make(map[string]bool), completed: make(chan model.DailyTipSet, 4)}
}

func (f *fakeActions) SkipTip(context.Context, string) (model.Tip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Tip{}, f.err
	}
	return f.skipTo, nil
}

func (f *fakeActions) SaveTip(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved[id] = true
	return nil
}

func (f *fakeActions) UnsaveTip(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved[id] = false
	return nil
}

func (f *fakeActions) IsTipSaved(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.saved[id], nil
}

func (f *fakeActions) CompleteTip(context.Context, string) (model.DailyTipSet, error) {
	return model.DailyTipSet{}, errors.New("not used")
}

func (f *fakeActions) Completed() <-chan model.DailyTipSet {
	return f.completed
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type opened struct {
	id     string
	source ports.TipSource
}

type fakeNavigator struct {
	mu      sync.Mutex
	tips    []opened
	chats   int
	explore int
}

func (n *fakeNavigator) OpenTip(id string, source ports.TipSource) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tips = append(n.tips, opened{id: id, source: source})
}

func (n *fakeNavigator) OpenExplore() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.explore++
}

func (n *fakeNavigator) OpenChat() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chats++
}

type harness struct {
	p         *Presenter
	timeline  *fakeTimeline
	actions   *fakeActions
	store     *memStore
	recorder  *analytics.Recorder
	navigator *fakeNavigator

	mu     sync.Mutex
	states []State
}

func newHarness(t *testing.T, mutate ...func(*Deps, *Config)) *harness {
	t.Helper()
	h := &harness{
		timeline:  newFakeTimeline(),
		actions:   newFakeActions(),
		store:     &memStore{},
		recorder:  analytics.NewRecorder(),
		navigator: &fakeNavigator{},
	}
	deps := Deps{
		Timeline:  h.timeline,
		Actions:   h.actions,
		Store:     h.store,
		Analytics: h.recorder,
		Navigator: h.navigator,
		Clock:     fixedClock{t: now},
	}
	cfg := Config{DisplayName: "Sam", FetchTimeout: time.Second}
	for _, fn := range mutate {
		fn(&deps, &cfg)
	}
	p, err := New(deps, cfg)
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}
	h.p = p
	p.Subscribe(func(s State) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.states = append(h.states, s)
	})
	t.Cleanup(p.Close)
	return h
}

func (h *harness) emitted() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]State(nil), h.states...)
}

func waitFor(t *testing.T, p *Presenter, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := p.State(); cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached; last state: %+v", p.State())
	return State{}
}

// tipSet builds today's flow: daily, extra-1, extra-2, extra-3 (locked),
// with the first n flow tips completed.
func tipSet(day time.Time, n int) model.DailyTipSet {
	set := model.DailyTipSet{
		Day:      day,
		DailyTip: model.Tip{ID: "daily", Headline: "Daily"},
		ExtraTips: []model.Tip{
			{ID: "extra-1", Headline: "Extra 1"},
			{ID: "extra-2", Headline: "Extra 2"},
			{ID: "extra-3", Headline: "Extra 3", Locked: true},
		},
		ExploreTips: []model.Tip{{ID: "explore-1", Headline: "Explore 1"}},
	}
	if n > 0 {
		set.DailyTip.Completed = true
	}
	for i := 0; i < n-1 && i < len(set.ExtraTips); i++ {
		set.ExtraTips[i].Completed = true
		set.ExtraTips[i].Locked = false
	}
	return set
}
