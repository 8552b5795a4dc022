package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db     *sql.DB
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	mu        sync.Mutex
	closed    bool
	completed chan model.DailyTipSet
	dropped   uint64
}

type Option func(*SQLiteRepository)

// WithClock overrides the time source used for completion stamps and for
// resolving "today".
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation sets the location calendar days are keyed in.
func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *SQLiteRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCompletionBuffer sizes the completion event channel.
func WithCompletionBuffer(size int) Option {
	return func(r *SQLiteRepository) {
		if size > 0 {
			r.completed = make(chan model.DailyTipSet, size)
		}
	}
}

func NewSQLiteRepository(db *sql.DB, opts ...Option) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	r := &SQLiteRepository{
		db:        db,
		loc:       time.Local,
		now:       time.Now,
		logger:    zap.NewNop(),
		completed: make(chan model.DailyTipSet, 8),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OpenSQLite opens path, applies migrations, and returns a repository.
func OpenSQLite(path string, opts ...Option) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.completed)
	}
	r.mu.Unlock()
	return r.db.Close()
}

func (r *SQLiteRepository) Completed() <-chan model.DailyTipSet {
	return r.completed
}

// Dropped counts completion events discarded because no one was reading.
func (r *SQLiteRepository) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

func (r *SQLiteRepository) UpsertTip(ctx context.Context, in TipRow) error {
	topics, err := json.Marshal(nonNilTopics(in.Topics))
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tips (id, headline, body, topics, background_image_url, saved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			headline = excluded.headline,
			body = excluded.body,
			topics = excluded.topics,
			background_image_url = excluded.background_image_url`,
		in.ID, in.Headline, in.Body, string(topics), in.BackgroundImageURL, boolInt(in.Saved), mustTime(created),
	)
	return err
}

func (r *SQLiteRepository) GetTip(ctx context.Context, id string) (TipRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, headline, body, topics, background_image_url, saved, created_at
		FROM tips WHERE id = ?`, id)
	tip, err := scanTip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TipRow{}, ErrNotFound
		}
		return TipRow{}, err
	}
	return tip, nil
}

func (r *SQLiteRepository) ListTips(ctx context.Context, filter TipListFilter) ([]TipRow, error) {
	query := `SELECT id, headline, body, topics, background_image_url, saved, created_at FROM tips`
	args := make([]any, 0, 3)
	if filter.Saved != nil {
		query += ` WHERE saved = ?`
		args = append(args, boolInt(*filter.Saved))
	}
	query += ` ORDER BY created_at ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TipRow, 0)
	for rows.Next() {
		tip, scanErr := scanTip(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, tip)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertDay(ctx context.Context, in DayRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO days (day, before_program) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET before_program = excluded.before_program`,
		r.dayKey(in.Day), boolInt(in.BeforeProgram),
	)
	return err
}

func (r *SQLiteRepository) AssignTip(ctx context.Context, in DayTipRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO day_tips (day, tip_id, slot, position, locked, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.dayKey(in.Day), in.TipID, string(in.Slot), in.Position, boolInt(in.Locked), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) ListDayTips(ctx context.Context, day time.Time) ([]DayTipRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, tip_id, slot, position, locked, completed_at
		FROM day_tips WHERE day = ? ORDER BY slot ASC, position ASC`, r.dayKey(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DayTipRow, 0)
	for rows.Next() {
		item, scanErr := r.scanDayTip(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DaySummaries(ctx context.Context) ([]model.DaySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.day, d.before_program,
			EXISTS (
				SELECT 1 FROM day_tips dt
				WHERE dt.day = d.day AND dt.slot != 'explore' AND dt.completed_at IS NOT NULL
			)
		FROM days d ORDER BY d.day ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DaySummary, 0)
	for rows.Next() {
		var key string
		var before, completed int
		if err := rows.Scan(&key, &before, &completed); err != nil {
			return nil, err
		}
		day, err := model.ParseShortDate(key, r.loc)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", key, err)
		}
		out = append(out, model.DaySummary{Day: day, BeforeProgram: before == 1, Completed: completed == 1})
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) TipsForDay(ctx context.Context, day time.Time) (model.DailyTipSet, error) {
	key := r.dayKey(day)
	rows, err := r.db.QueryContext(ctx, `
		SELECT dt.tip_id, dt.slot, dt.locked, dt.completed_at,
			t.headline, t.body, t.topics, t.background_image_url, t.saved
		FROM day_tips dt JOIN tips t ON t.id = dt.tip_id
		WHERE dt.day = ?
		ORDER BY dt.position ASC, dt.tip_id ASC`, key)
	if err != nil {
		return model.DailyTipSet{}, err
	}
	defer rows.Close()

	set := model.DailyTipSet{Day: model.StartOfDay(day.In(r.loc))}
	hasDaily := false
	for rows.Next() {
		var slot string
		var locked, saved int
		var completed sql.NullString
		var topics string
		tip := model.Tip{}
		if err := rows.Scan(&tip.ID, &slot, &locked, &completed, &tip.Headline, &tip.Body, &topics, &tip.BackgroundImageURL, &saved); err != nil {
			return model.DailyTipSet{}, err
		}
		if tip.Topics, err = decodeTopics(topics); err != nil {
			return model.DailyTipSet{}, err
		}
		tip.Locked = locked == 1
		tip.Saved = saved == 1
		tip.Completed = completed.Valid && completed.String != ""
		switch Slot(slot) {
		case SlotDaily:
			set.DailyTip = tip
			hasDaily = true
		case SlotExtra:
			set.ExtraTips = append(set.ExtraTips, tip)
		case SlotExplore:
			set.ExploreTips = append(set.ExploreTips, tip)
		}
	}
	if err := rows.Err(); err != nil {
		return model.DailyTipSet{}, err
	}
	if !hasDaily {
		return model.DailyTipSet{}, fmt.Errorf("tips for %s: %w", key, ErrNotFound)
	}
	return set, nil
}

func (r *SQLiteRepository) UnlockTip(ctx context.Context, id string, day time.Time, isDaily bool) (model.DailyTipSet, error) {
	slot := SlotExtra
	if isDaily {
		slot = SlotDaily
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE day_tips SET locked = 0 WHERE day = ? AND tip_id = ? AND slot = ?`,
		r.dayKey(day), id, string(slot),
	)
	if err != nil {
		return model.DailyTipSet{}, err
	}
	if err := checkRowsAffected(res); err != nil {
		return model.DailyTipSet{}, fmt.Errorf("unlock %s: %w", id, err)
	}
	return r.TipsForDay(ctx, day)
}

// SkipTip swaps tip id on its latest day for the least used tip that is not
// already part of that day, and returns the replacement.
func (r *SQLiteRepository) SkipTip(ctx context.Context, id string) (model.Tip, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Tip{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var day, slot string
	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT day, slot, position FROM day_tips
		WHERE tip_id = ? AND slot != 'explore'
		ORDER BY day DESC LIMIT 1`, id).Scan(&day, &slot, &position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tip{}, fmt.Errorf("skip %s: %w", id, ErrNotFound)
		}
		return model.Tip{}, err
	}

	var nextID string
	err = tx.QueryRowContext(ctx, `
		SELECT t.id FROM tips t
		WHERE t.id NOT IN (SELECT tip_id FROM day_tips WHERE day = ?)
		ORDER BY (SELECT COUNT(1) FROM day_tips x WHERE x.tip_id = t.id) ASC, t.created_at ASC, t.id ASC
		LIMIT 1`, day).Scan(&nextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tip{}, fmt.Errorf("skip %s: no replacement: %w", id, ErrNotFound)
		}
		return model.Tip{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM day_tips WHERE day = ? AND tip_id = ?`, day, id); err != nil {
		return model.Tip{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO day_tips (day, tip_id, slot, position, locked, completed_at)
		VALUES (?, ?, ?, ?, 0, NULL)`, day, nextID, slot, position); err != nil {
		return model.Tip{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Tip{}, err
	}

	row, err := r.GetTip(ctx, nextID)
	if err != nil {
		return model.Tip{}, err
	}
	r.logger.Debug("tip skipped", zap.String("tip_id", id), zap.String("replacement", nextID), zap.String("day", day))
	return row.toModel(), nil
}

func (r *SQLiteRepository) SaveTip(ctx context.Context, id string) error {
	return r.setSaved(ctx, id, true)
}

func (r *SQLiteRepository) UnsaveTip(ctx context.Context, id string) error {
	return r.setSaved(ctx, id, false)
}

func (r *SQLiteRepository) IsTipSaved(ctx context.Context, id string) (bool, error) {
	var saved int
	err := r.db.QueryRowContext(ctx, `SELECT saved FROM tips WHERE id = ?`, id).Scan(&saved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return saved == 1, nil
}

// CompleteTip stamps the latest day row of id, then publishes the refreshed
// day on Completed without blocking.
func (r *SQLiteRepository) CompleteTip(ctx context.Context, id string) (model.DailyTipSet, error) {
	var key string
	err := r.db.QueryRowContext(ctx, `
		SELECT day FROM day_tips WHERE tip_id = ? ORDER BY day DESC LIMIT 1`, id).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DailyTipSet{}, fmt.Errorf("complete %s: %w", id, ErrNotFound)
		}
		return model.DailyTipSet{}, err
	}
	if _, err := r.db.ExecContext(ctx, `
		UPDATE day_tips SET completed_at = COALESCE(completed_at, ?), locked = 0
		WHERE day = ? AND tip_id = ?`, mustTime(r.now()), key, id); err != nil {
		return model.DailyTipSet{}, err
	}
	day, err := model.ParseShortDate(key, r.loc)
	if err != nil {
		return model.DailyTipSet{}, err
	}
	set, err := r.TipsForDay(ctx, day)
	if err != nil {
		return model.DailyTipSet{}, err
	}
	r.publish(set)
	return set, nil
}

func (r *SQLiteRepository) publish(set model.DailyTipSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.completed <- set:
	default:
		atomic.AddUint64(&r.dropped, 1)
		r.logger.Warn("completion event dropped", zap.String("day", r.dayKey(set.Day)))
	}
}

func (r *SQLiteRepository) setSaved(ctx context.Context, id string, saved bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tips SET saved = ? WHERE id = ?`, boolInt(saved), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) dayKey(t time.Time) string {
	return model.ShortDate(t.In(r.loc))
}

func (row TipRow) toModel() model.Tip {
	return model.Tip{
		ID:                 row.ID,
		Headline:           row.Headline,
		Body:               row.Body,
		Topics:             row.Topics,
		BackgroundImageURL: row.BackgroundImageURL,
		Saved:              row.Saved,
	}
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			clause += " LIMIT -1"
		}
		clause += " OFFSET ?"
		*args = append(*args, offset)
	}
	return clause
}

func nonNilTopics(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func decodeTopics(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTip(s scanner) (TipRow, error) {
	var out TipRow
	var topics, created string
	var saved int
	if err := s.Scan(&out.ID, &out.Headline, &out.Body, &topics, &out.BackgroundImageURL, &saved, &created); err != nil {
		return TipRow{}, err
	}
	var err error
	if out.Topics, err = decodeTopics(topics); err != nil {
		return TipRow{}, err
	}
	createdAt, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return TipRow{}, err
	}
	out.Saved = saved == 1
	out.CreatedAt = createdAt
	return out, nil
}

func (r *SQLiteRepository) scanDayTip(s scanner) (DayTipRow, error) {
	var out DayTipRow
	var key, slot string
	var locked int
	var completed sql.NullString
	if err := s.Scan(&key, &out.TipID, &slot, &out.Position, &locked, &completed); err != nil {
		return DayTipRow{}, err
	}
	day, err := model.ParseShortDate(key, r.loc)
	if err != nil {
		return DayTipRow{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return DayTipRow{}, err
	}
	out.Day = day
	out.Slot = Slot(slot)
	out.Locked = locked == 1
	out.CompletedAt = completedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
