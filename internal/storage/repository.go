package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
)

// ErrNotFound matches model.ErrNotFound under errors.Is.
var ErrNotFound = fmt.Errorf("storage: %w", model.ErrNotFound)

// Repository is the local tip store behind the coach screen.
type Repository interface {
	UpsertTip(ctx context.Context, in TipRow) error
	GetTip(ctx context.Context, id string) (TipRow, error)
	ListTips(ctx context.Context, filter TipListFilter) ([]TipRow, error)

	UpsertDay(ctx context.Context, in DayRow) error
	AssignTip(ctx context.Context, in DayTipRow) error
	ListDayTips(ctx context.Context, day time.Time) ([]DayTipRow, error)

	DaySummaries(ctx context.Context) ([]model.DaySummary, error)
	TipsForDay(ctx context.Context, day time.Time) (model.DailyTipSet, error)
	UnlockTip(ctx context.Context, id string, day time.Time, isDaily bool) (model.DailyTipSet, error)

	SkipTip(ctx context.Context, id string) (model.Tip, error)
	SaveTip(ctx context.Context, id string) error
	UnsaveTip(ctx context.Context, id string) error
	IsTipSaved(ctx context.Context, id string) (bool, error)
	CompleteTip(ctx context.Context, id string) (model.DailyTipSet, error)
	Completed() <-chan model.DailyTipSet
}
