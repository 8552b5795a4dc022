package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
)

// CompletedTimestampKey holds the Unix time the daily session was closed.
const CompletedTimestampKey = "daily_session_completed_timestamp"

type Tracker struct {
	store ports.KeyValueStore
}

func NewTracker(store ports.KeyValueStore) *Tracker {
	return &Tracker{store: store}
}

// Timestamp returns the persisted completion time, if any.
func (t *Tracker) Timestamp(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := t.store.Get(ctx, CompletedTimestampKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read session timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return time.Time{}, false, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse session timestamp %q: %w", raw, err)
	}
	return time.Unix(secs, 0), true, nil
}

// IsClosed reports whether the session was completed on day's calendar day.
func (t *Tracker) IsClosed(ctx context.Context, day time.Time) (bool, error) {
	ts, ok, err := t.Timestamp(ctx)
	if err != nil || !ok {
		return false, err
	}
	return model.SameDay(day, ts), nil
}

// Reopen forgets the completion time so today's session is open again.
func (t *Tracker) Reopen(ctx context.Context) error {
	if err := t.store.Delete(ctx, CompletedTimestampKey); err != nil {
		return fmt.Errorf("clear session timestamp: %w", err)
	}
	return nil
}

func (t *Tracker) Complete(ctx context.Context, now time.Time) error {
	if err := t.store.Set(ctx, CompletedTimestampKey, strconv.FormatInt(now.Unix(), 10)); err != nil {
		return fmt.Errorf("write session timestamp: %w", err)
	}
	return nil
}
