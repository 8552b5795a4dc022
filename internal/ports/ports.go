// Package ports declares the collaborators the coach presenter is built on.
// Storage, analytics, and navigation adapters satisfy these interfaces.
package ports

import (
	"context"
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
)

type TimelineSource interface {
	DaySummaries(ctx context.Context) ([]model.DaySummary, error)
	TipsForDay(ctx context.Context, day time.Time) (model.DailyTipSet, error)
	UnlockTip(ctx context.Context, id string, day time.Time, isDaily bool) (model.DailyTipSet, error)
}

type TipActions interface {
	SkipTip(ctx context.Context, id string) (model.Tip, error)
	SaveTip(ctx context.Context, id string) error
	UnsaveTip(ctx context.Context, id string) error
	IsTipSaved(ctx context.Context, id string) (bool, error)
	CompleteTip(ctx context.Context, id string) (model.DailyTipSet, error)
	// Completed streams the refreshed tip set after every completion.
	Completed() <-chan model.DailyTipSet
}

type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AnalyticsSink is fire-and-forget: callers never branch on its outcome.
type AnalyticsSink interface {
	Screen(name string)
	Event(name string, props map[string]any)
}

type TipSource string

const (
	TipSourceDaily TipSource = "daily_tip"
	TipSourceOther TipSource = "other"
)

type Navigator interface {
	OpenTip(id string, source TipSource)
	OpenExplore()
	OpenChat()
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type NoopNavigator struct{}

func (NoopNavigator) OpenTip(string, TipSource) {}
func (NoopNavigator) OpenExplore()              {}
func (NoopNavigator) OpenChat()                 {}
