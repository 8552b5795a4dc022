package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/analytics"
	"github.com/sandeepkv93/coachd/internal/coach"
	"github.com/sandeepkv93/coachd/internal/config"
	"github.com/sandeepkv93/coachd/internal/ports"
	"github.com/sandeepkv93/coachd/internal/scheduler"
	"github.com/sandeepkv93/coachd/internal/storage"
)

// app holds the long-lived collaborators of one coachd process.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	repo   *storage.SQLiteRepository
	kv     *storage.DiskKV
	sched  *scheduler.Engine
}

func openApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	repo, err := storage.OpenSQLite(cfg.DBPath(),
		storage.WithLocation(time.Local),
		storage.WithLogger(logger),
		storage.WithCompletionBuffer(cfg.CompletionBuffer),
	)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		kv:     storage.NewDiskKV(cfg.KVPath()),
		sched:  scheduler.NewEngine(cfg.SchedulerBuffer),
	}, nil
}

// newPresenter builds a presenter over the app's repository. store holds
// session state; pass a.kv to share it with other runs.
func (a *app) newPresenter(nav ports.Navigator, store ports.KeyValueStore) (*coach.Presenter, error) {
	return coach.New(coach.Deps{
		Timeline:  a.repo,
		Actions:   a.repo,
		Store:     store,
		Analytics: analytics.NewZapSink(a.logger),
		Navigator: nav,
		Logger:    a.logger,
		Scheduler: a.sched,
	}, coach.Config{
		DisplayName:  a.cfg.DisplayName,
		FetchTimeout: a.cfg.FetchTimeout,
		ReloadDelay:  a.cfg.ReloadDelay,
	})
}

func (a *app) Close() error {
	a.sched.Stop()
	if dropped := a.sched.Dropped(); dropped > 0 {
		a.logger.Warn("scheduler dropped events", zap.Uint64("dropped", dropped))
	}
	if dropped := a.repo.Dropped(); dropped > 0 {
		a.logger.Warn("completion stream dropped updates", zap.Uint64("dropped", dropped))
	}
	return a.repo.Close()
}
