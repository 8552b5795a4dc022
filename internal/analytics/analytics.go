// Package analytics adapts coach screen events to structured logs.
package analytics

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ScreenCoach = "coach"

	EventDailyTipTap       = "daily_tip_tap"
	EventKeepGoing         = "keep_going"
	EventCallItADay        = "call_it_a_day"
	EventBackToToday       = "back_to_today"
	EventExploredDays      = "explored_days"
	EventGoOnExploreTap    = "go_on_explore_tap"
	EventChatTap           = "chat_tap"
	EventDailyTipCompleted = "daily_tip_completion"
	EventTipSaved          = "tip_saved"
	EventTipUnsaved        = "tip_unsaved"
	EventTipSkipped        = "tip_skipped"
)

// ZapSink writes each event as one log line tagged with a fresh event id.
type ZapSink struct {
	logger *zap.Logger
	newID  func() string
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{
		logger: logger.Named("analytics"),
		newID:  func() string { return uuid.NewString() },
	}
}

func (s *ZapSink) Screen(name string) {
	s.logger.Info("screen",
		zap.String("event_id", s.newID()),
		zap.String("screen", name),
	)
}

func (s *ZapSink) Event(name string, props map[string]any) {
	fields := make([]zap.Field, 0, len(props)+2)
	fields = append(fields, zap.String("event_id", s.newID()), zap.String("event", name))
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, props[k]))
	}
	s.logger.Info("event", fields...)
}

type Record struct {
	Name   string
	Screen bool
	Props  map[string]any
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Screen(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Name: name, Screen: true})
}

func (r *Recorder) Event(name string, props map[string]any) {
	copied := make(map[string]any, len(props))
	for k, v := range props {
		copied[k] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Name: name, Props: copied})
}

func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Count(name string) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent record named name.
func (r *Recorder) Last(name string) (Record, bool) {
	records := r.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Name == name {
			return records[i], true
		}
	}
	return Record{}, false
}
