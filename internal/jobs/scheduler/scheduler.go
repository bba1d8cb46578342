package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	rulesconfig "github.com/yungbote/healthwhisperer-backend/internal/rules/config"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

// Evaluator runs one evaluation pass for a user.
type Evaluator interface {
	EvaluateUser(ctx context.Context, userID uuid.UUID, trigger string) (*services.EvaluationResult, error)
}

// UserPager lists users in id order after afterID.
type UserPager interface {
	ListPage(dbc dbctx.Context, afterID uuid.UUID, limit int) ([]*types.User, error)
}

type SweepResult struct {
	Users  int `json:"users"`
	Fired  int `json:"fired"`
	Failed int `json:"failed"`
}

// Scheduler periodically evaluates every user that has auto nudges enabled.
type Scheduler struct {
	log     *logger.Logger
	users   UserPager
	eval    Evaluator
	cfg     rulesconfig.Scheduler
	metrics *observability.Metrics
}

func New(baseLog *logger.Logger, users UserPager, eval Evaluator, cfg rulesconfig.Scheduler, metrics *observability.Metrics) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 100
	}
	return &Scheduler{
		log:     baseLog.With("component", "NudgeScheduler"),
		users:   users,
		eval:    eval,
		cfg:     cfg,
		metrics: metrics,
	}
}

func (s *Scheduler) Interval() time.Duration { return s.cfg.Tick }

// Start runs a sweep every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Starting nudge scheduler", "tick", s.cfg.Tick, "concurrency", s.cfg.Concurrency)
	go s.runLoop(ctx)
}

func (s *Scheduler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Nudge scheduler stopped")
			return
		case <-ticker.C:
			res, err := s.Sweep(ctx)
			if err != nil {
				s.log.Warn("nudge sweep failed", "error", err)
				continue
			}
			if res.Fired > 0 || res.Failed > 0 {
				s.log.Info("nudge sweep done", "users", res.Users, "fired", res.Fired, "failed", res.Failed)
			}
		}
	}
}

// Sweep pages through all users and evaluates the ones with auto nudges on.
// A failing user is logged and counted; the rest of the sweep continues. Only
// a failure to list users aborts the sweep.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	var users, fired, failed atomic.Int64
	defer func() {
		s.metrics.ObserveSweep(time.Since(start), int(users.Load()-failed.Load()), int(failed.Load()))
	}()

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return s.result(&users, &fired, &failed), err
		}
		page, err := s.users.ListPage(dbctx.Context{Ctx: ctx}, after, s.cfg.PageSize)
		if err != nil {
			_ = g.Wait()
			return s.result(&users, &fired, &failed), fmt.Errorf("list users: %w", err)
		}
		for _, u := range page {
			if u == nil || !types.DecodePreferences(u.Preferences).AutoNudges {
				continue
			}
			userID := u.ID
			users.Add(1)
			g.Go(func() error {
				res, err := s.evaluate(ctx, userID)
				if err != nil {
					failed.Add(1)
					s.log.Warn("scheduled evaluation failed", "user_id", userID, "error", err)
					return nil
				}
				fired.Add(int64(len(res.Fired)))
				return nil
			})
		}
		if len(page) < s.cfg.PageSize {
			break
		}
		after = page[len(page)-1].ID
	}
	_ = g.Wait()
	return s.result(&users, &fired, &failed), nil
}

func (s *Scheduler) evaluate(ctx context.Context, userID uuid.UUID) (res *services.EvaluationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.eval.EvaluateUser(ctx, userID, services.TriggerScheduler)
}

func (s *Scheduler) result(users, fired, failed *atomic.Int64) SweepResult {
	return SweepResult{Users: int(users.Load()), Fired: int(fired.Load()), Failed: int(failed.Load())}
}
