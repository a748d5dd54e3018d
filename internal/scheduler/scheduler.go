package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// ExecutionStarter is the part of the engine the scheduler fires into.
type ExecutionStarter interface {
	StartExecution(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error)
}

// Scheduler keeps one live cron trigger per active schedule, keyed by schedule id.
type Scheduler struct {
	repo    engine.ScheduleRepo
	starter ExecutionStarter
	clock   core.Clock
	cron    *cron.Cron
	log     cronLogger

	mu       sync.Mutex
	ctx      context.Context
	entries  map[int64]cron.EntryID
	stopOnce sync.Once
}

func NewScheduler(repo engine.ScheduleRepo, starter ExecutionStarter, clock core.Clock) *Scheduler {
	log := cronLogger{logger: slog.Default()}
	return &Scheduler{
		repo:    repo,
		starter: starter,
		clock:   clock,
		log:     log,
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(time.UTC),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log)),
		),
		ctx:     context.Background(),
		entries: make(map[int64]cron.EntryID),
	}
}

// Start registers every active schedule and runs the triggers until ctx is done.
// Reconciliation is the only recovery after a restart: missed fires are not replayed.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if err := s.Reconcile(); err != nil {
		return err
	}
	s.cron.Start()
	slog.InfoContext(ctx, "Scheduler started", "triggers", s.Registered())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the triggers and waits for any fire in progress to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		slog.Info("Scheduler stopped")
	})
}

// Reconcile registers a trigger for every active schedule. Schedules with an
// invalid expression are logged and skipped.
func (s *Scheduler) Reconcile() error {
	active, err := s.repo.FindActive()
	if err != nil {
		return err
	}
	for i := range *active {
		sw := &(*active)[i]
		if err := s.Register(sw); err != nil {
			slog.Error("Failed to register schedule", "scheduleId", sw.ID, "cron", sw.CronExpression, "error", err)
		}
	}
	return nil
}

// Register creates or replaces the trigger for sw. A missing or past nextRunAt
// is recomputed from now and persisted.
func (s *Scheduler) Register(sw *domain.ScheduledWorkflow) error {
	schedule, err := ParseCronExpression(sw.CronExpression)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	if !sw.NextRunAt.Valid || !sw.NextRunAt.Time.After(now) {
		sw.NextRunAt = sql.NullTime{Time: schedule.Next(now).UTC(), Valid: true}
		if err := s.repo.UpdateRunTimes(sw.ID, sw.LastRunAt, sw.NextRunAt); err != nil {
			return err
		}
	}

	id := sw.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[id]; ok {
		s.cron.Remove(existing)
	}
	s.entries[id] = s.cron.Schedule(schedule, cron.FuncJob(func() { s.fire(id) }))
	slog.Info("Schedule registered", "scheduleId", id, "workflowId", sw.WorkflowID, "cron", sw.CronExpression,
		"nextRunAt", sw.NextRunAt.Time)
	return nil
}

// Unregister removes the trigger for id. Unknown ids are ignored.
func (s *Scheduler) Unregister(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[id]; ok {
		s.cron.Remove(existing)
		delete(s.entries, id)
		slog.Info("Schedule unregistered", "scheduleId", id)
	}
}

func (s *Scheduler) IsRegistered(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

func (s *Scheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// fire starts one execution of the scheduled workflow. Run times are only
// written after the execution was accepted.
func (s *Scheduler) fire(id int64) {
	sw, err := s.repo.FindByID(id)
	if err != nil {
		s.log.Error(err, "failed to load schedule", "scheduleId", id)
		return
	}
	if sw == nil || !sw.IsActive {
		s.Unregister(id)
		return
	}

	input := "{}"
	if sw.Parameters.Valid && strings.TrimSpace(sw.Parameters.String) != "" {
		input = sw.Parameters.String
	}
	executionID, err := s.starter.StartExecution(s.runContext(), sw.WorkflowID, 0, input)
	if err != nil {
		s.log.Error(err, "scheduled execution failed to start", "scheduleId", id, "workflowId", sw.WorkflowID)
		return
	}

	now := s.clock.Now().UTC()
	next, err := NextRunAfter(sw.CronExpression, now)
	lastRunAt := sql.NullTime{Time: now, Valid: true}
	nextRunAt := sql.NullTime{Time: next, Valid: err == nil}
	if err := s.repo.UpdateRunTimes(id, lastRunAt, nextRunAt); err != nil {
		s.log.Error(err, "failed to store schedule run times", "scheduleId", id)
	}
	slog.Info("Scheduled execution started", "scheduleId", id, "workflowId", sw.WorkflowID, "executionId", executionID,
		"nextRunAt", next)
}
