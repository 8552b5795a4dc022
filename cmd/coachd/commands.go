package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/coach"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
	"github.com/sandeepkv93/coachd/internal/session"
	"github.com/sandeepkv93/coachd/internal/storage"
	"github.com/sandeepkv93/coachd/internal/update"
	"github.com/sandeepkv93/coachd/internal/views"
)

func newUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Start the interactive coach view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context(), opts)
		},
	}
}

func runUI(parent context.Context, opts *rootOptions) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := openApp(opts.cfg, opts.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	bridge := update.NewBridge()
	p, err := a.newPresenter(bridge, a.kv)
	if err != nil {
		return err
	}
	unsubscribe := p.Subscribe(bridge.Publish)
	a.sched.Start()
	defer func() {
		unsubscribe()
		p.Close()
	}()

	go func() {
		if err := p.Start(ctx); err != nil && !errors.Is(err, coach.ErrClosed) {
			opts.logger.Warn("initial load failed", zap.Error(err))
		}
	}()

	m := update.NewModel(ctx, update.Deps{
		Coach:     p,
		Completer: a.repo,
		Bridge:    bridge,
		Logger:    opts.logger,
		Markdown:  true,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newTimelineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "List the days on record and whether any tip was completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := a.repo.DaySummaries(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]views.SummaryRow, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, views.SummaryRow{
					Day:           model.ShortDate(s.Day),
					Completed:     s.Completed,
					BeforeProgram: s.BeforeProgram,
				})
			}
			views.PrintTimeline(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func newTipsCmd(opts *rootOptions) *cobra.Command {
	var day string
	var width int
	var ephemeral bool
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Print the tips list for a day",
		Example: `
coachd tips
coachd tips --day yesterday
coachd tips --day 2026-02-01
coachd tips --ephemeral
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := model.ResolveDay(day, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --day: %w", err)
			}
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var store ports.KeyValueStore = a.kv
			if ephemeral {
				store = storage.NewMemoryKV()
			}
			p, err := a.newPresenter(ports.NoopNavigator{}, store)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx := cmd.Context()
			if err := p.Start(ctx); err != nil {
				return err
			}
			if !model.SameDay(target, time.Now()) {
				if _, err := p.SelectDay(ctx, target); err != nil {
					return err
				}
			}
			state := p.State()
			out := cmd.OutOrStdout()
			if state.Overlay.Shown() {
				fmt.Fprintln(out, noticeText(state.Overlay))
				return nil
			}
			views.PrintCells(out, state.Cells, width)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "today", "YYYY-MM-DD, today, yesterday, tomorrow, or a signed offset")
	cmd.Flags().IntVar(&width, "width", 72, "wrap tip bodies at this width")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "ignore saved session state and show today as an open session")
	return cmd
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or change today's session state",
	}
	run := func(fn func(ctx context.Context, tracker *session.Tracker, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(cmd.Context(), session.NewTracker(a.kv), cmd.OutOrStdout())
		}
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Report whether today's session was called a day",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, tracker *session.Tracker, out io.Writer) error {
				closed, err := tracker.IsClosed(ctx, time.Now())
				if err != nil {
					return err
				}
				if closed {
					fmt.Fprintln(out, "session closed for today")
				} else {
					fmt.Fprintln(out, "session open")
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "close",
			Short: "Call it a day",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, tracker *session.Tracker, out io.Writer) error {
				if err := tracker.Complete(ctx, time.Now()); err != nil {
					return err
				}
				fmt.Fprintln(out, "session closed for today")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reopen",
			Short: "Reopen today's session after calling it a day",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, tracker *session.Tracker, out io.Writer) error {
				if err := tracker.Reopen(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "session open")
				return nil
			}),
		},
	)
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load tips and day assignments from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := storage.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := storage.Seed(cmd.Context(), a.repo, cat, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tips across %d days\n", len(cat.Tips), len(cat.Days))
			return nil
		},
	}
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <tip-id>",
		Aliases: []string{"done"},
		Short:   "Mark one of today's tips as completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			set, err := a.repo.CompleteTip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %s (%d of %d done today)\n", args[0], set.CompletedCount(), len(set.FlowTips()))
			return nil
		},
	}
}

func newSkipCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <tip-id>",
		Short: "Swap a tip for a different one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			tip, err := a.repo.SkipTip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replaced %s with %s: %s\n", args[0], tip.ID, tip.Headline)
			return nil
		},
	}
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "save <tip-id>",
		Short: "Add a tip to saved tips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, id := cmd.Context(), args[0]
			if remove {
				err = a.repo.UnsaveTip(ctx, id)
			} else {
				err = a.repo.SaveTip(ctx, id)
			}
			if err != nil {
				return err
			}
			msg := coach.ToastSaved
			if remove {
				msg = coach.ToastUnsaved
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the tip from saved tips instead")
	return cmd
}

func noticeText(n coach.Notice) string {
	switch n.Kind {
	case coach.NoticePastNoActivity:
		return fmt.Sprintf("No tips on %s.", model.LongDate(n.Day))
	case coach.NoticeFutureDate:
		return fmt.Sprintf("Come back on %s for new tips.", model.LongDate(n.Day))
	case coach.NoticeBeforeProgramStart:
		return "Your program had not started yet on that day."
	default:
		return "Something went wrong loading tips. Try again."
	}
}
