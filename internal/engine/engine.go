package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/nodes"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const interruptedMessage = "interrupted by engine restart"

// AdmissionPolicy decides what StartExecution does once every worker is busy
// and the queue is full.
type AdmissionPolicy string

const (
	AdmissionQueue  AdmissionPolicy = config.ADMISSION_POLICY_QUEUE
	AdmissionReject AdmissionPolicy = config.ADMISSION_POLICY_REJECT
)

type Options struct {
	PoolSize          int
	QueueSize         int
	AdmissionPolicy   AdmissionPolicy
	ValidateWorkflows bool
}

// OptionsFromConfig reads the engine options from the system settings.
func OptionsFromConfig() Options {
	return Options{
		PoolSize:          config.GetSystemSettingInteger(config.ENGINE_WORKER_POOL_SIZE),
		QueueSize:         config.GetSystemSettingInteger(config.ENGINE_QUEUE_SIZE),
		AdmissionPolicy:   AdmissionPolicy(strings.ToUpper(config.GetSystemSettingString(config.ENGINE_ADMISSION_POLICY))),
		ValidateWorkflows: config.GetSystemSettingBool(config.ENGINE_VALIDATE_WORKFLOWS),
	}
}

type job struct {
	execution *domain.Execution
	workflow  *domain.Workflow
	input     any
	ctx       context.Context
	cancel    context.CancelFunc
}

// WorkflowEngine admits executions, runs them on a bounded worker pool and
// persists their lifecycle and per node logs.
type WorkflowEngine struct {
	WorkflowRepo  WorkflowRepo
	ExecutionRepo ExecutionRepo
	LogRepo       ExecutionLogRepo
	recorder      *LogRecorder
	registry      nodes.Registry
	clock         core.Clock
	opts          Options

	admission *semaphore.Weighted
	queue     chan *job

	mu      sync.Mutex
	baseCtx context.Context
	stop    context.CancelFunc
	cancels map[int64]context.CancelFunc
	workers sync.WaitGroup

	running  atomic.Int64
	admitted atomic.Int64
	rejected atomic.Int64
	finished atomic.Int64
}

func NewWorkflowEngine(workflowRepo WorkflowRepo, executionRepo ExecutionRepo, logRepo ExecutionLogRepo,
	registry nodes.Registry, clock core.Clock, opts Options) *WorkflowEngine {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 5 // fallback default
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.AdmissionPolicy != AdmissionReject {
		opts.AdmissionPolicy = AdmissionQueue
	}
	capacity := opts.PoolSize + opts.QueueSize
	return &WorkflowEngine{
		WorkflowRepo:  workflowRepo,
		ExecutionRepo: executionRepo,
		LogRepo:       logRepo,
		recorder:      NewLogRecorder(logRepo, clock),
		registry:      registry,
		clock:         clock,
		opts:          opts,
		admission:     semaphore.NewWeighted(int64(capacity)),
		queue:         make(chan *job, capacity),
		cancels:       make(map[int64]context.CancelFunc),
	}
}

// Start fails executions left behind by a previous process and launches the
// workers. Workers stop when ctx is cancelled or Stop is called, which also
// cancels every running execution.
func (e *WorkflowEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.baseCtx != nil {
		return errors.New("workflow engine already started")
	}

	repaired, err := e.ExecutionRepo.FailInterrupted(interruptedMessage, e.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("fail interrupted executions: %w", err)
	}
	if repaired > 0 {
		slog.WarnContext(ctx, "Marked interrupted executions as failed", "count", repaired)
	}

	e.baseCtx, e.stop = context.WithCancel(ctx)
	for i := 0; i < e.opts.PoolSize; i++ {
		e.workers.Add(1)
		go func(id int) {
			defer e.workers.Done()
			Worker(e.baseCtx, id, e, e.queue)
		}(i)
	}
	slog.InfoContext(ctx, "Workflow engine started",
		"workers", e.opts.PoolSize,
		"queue_size", e.opts.QueueSize,
		"admission_policy", e.opts.AdmissionPolicy,
		"validate_workflows", e.opts.ValidateWorkflows)
	return nil
}

// Stop cancels every running execution and waits for the workers to persist
// their terminal status. Executions still queued stay Pending and are failed by
// the next Start.
func (e *WorkflowEngine) Stop() {
	e.mu.Lock()
	stop := e.stop
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
	e.Wait()
}

// Wait blocks until every worker has returned.
func (e *WorkflowEngine) Wait() {
	e.workers.Wait()
}

// StartExecution validates the request, admits it and enqueues it for a worker.
// It returns as soon as the Pending execution row exists.
func (e *WorkflowEngine) StartExecution(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error) {
	input, err := core.ParseInputData(inputData)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(inputData) == "" {
		inputData = "{}"
	}

	baseCtx := e.engineContext()
	if baseCtx == nil || baseCtx.Err() != nil {
		return 0, ErrEngineNotRunning
	}

	wf, err := e.WorkflowRepo.FindByID(workflowID)
	if err != nil {
		return 0, err
	}
	if wf == nil {
		return 0, ErrWorkflowNotFound
	}
	if !wf.IsActive {
		return 0, ErrWorkflowInactive
	}

	if err := e.admit(ctx); err != nil {
		return 0, err
	}

	execution := &domain.Execution{
		WorkflowID: workflowID,
		UserID:     sql.NullInt64{Int64: userID, Valid: userID > 0},
		Status:     domain.ExecutionStatusPending,
		InputData:  inputData,
		Created:    e.clock.Now().UTC(),
	}
	id, err := e.ExecutionRepo.Save(execution)
	if err != nil {
		e.admission.Release(1)
		return 0, fmt.Errorf("save execution: %w", err)
	}

	runCtx, cancel := context.WithCancel(baseCtx)
	e.mu.Lock()
	e.cancels[id] = cancel
	e.mu.Unlock()

	e.admitted.Add(1)
	e.queue <- &job{execution: execution, workflow: wf, input: input, ctx: runCtx, cancel: cancel}
	slog.InfoContext(ctx, "Execution queued", "executionId", id, "workflowId", workflowID)
	return id, nil
}

func (e *WorkflowEngine) admit(ctx context.Context) error {
	if e.opts.AdmissionPolicy == AdmissionReject {
		if !e.admission.TryAcquire(1) {
			e.rejected.Add(1)
			return ErrQueueFull
		}
		return nil
	}
	return e.admission.Acquire(ctx, 1)
}

func (e *WorkflowEngine) engineContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseCtx
}

// StopExecution requests cancellation of a Running execution. The node in
// flight observes the cancellation and no further node starts. A Running row
// with no live run in this process is cancelled directly.
func (e *WorkflowEngine) StopExecution(ctx context.Context, id int64) (*domain.Execution, error) {
	execution, err := e.ExecutionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, ErrExecutionNotFound
	}
	if execution.Status != domain.ExecutionStatusRunning {
		return nil, ErrExecutionNotRunning
	}

	e.mu.Lock()
	cancel, live := e.cancels[id]
	e.mu.Unlock()
	if live {
		cancel()
		slog.InfoContext(ctx, "Cancellation requested", "executionId", id)
		return execution, nil
	}

	slog.WarnContext(ctx, "Cancelling execution with no live run", "executionId", id)
	if _, err := e.ExecutionRepo.Finish(id, domain.ExecutionStatusCancelled, e.clock.Now().UTC(),
		cancelledMessage, execution.ContextSnapshot.String); err != nil {
		return nil, err
	}
	return e.ExecutionRepo.FindByID(id)
}

func (e *WorkflowEngine) release(j *job) {
	j.cancel()
	e.mu.Lock()
	delete(e.cancels, j.execution.ID)
	e.mu.Unlock()
	e.admission.Release(1)
	e.finished.Add(1)
}

// Stats reports the saturation of the worker pool.
func (e *WorkflowEngine) Stats() models.EngineStatsResponse {
	return models.EngineStatsResponse{
		PoolSize:        e.opts.PoolSize,
		QueueCapacity:   e.opts.QueueSize,
		Queued:          len(e.queue),
		Running:         e.running.Load(),
		Admitted:        e.admitted.Load(),
		Rejected:        e.rejected.Load(),
		Finished:        e.finished.Load(),
		AdmissionPolicy: string(e.opts.AdmissionPolicy),
	}
}

// RunningExecutions lists executions currently in the Running state.
func (e *WorkflowEngine) RunningExecutions() (*[]domain.Execution, error) {
	return e.ExecutionRepo.FindByStatus(domain.ExecutionStatusRunning)
}

// GetExecution returns ErrExecutionNotFound for unknown ids.
func (e *WorkflowEngine) GetExecution(id int64) (*domain.Execution, error) {
	execution, err := e.ExecutionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, ErrExecutionNotFound
	}
	return execution, nil
}

func (e *WorkflowEngine) GetExecutionLogs(id int64) (*[]domain.ExecutionLog, error) {
	if _, err := e.GetExecution(id); err != nil {
		return nil, err
	}
	return e.LogRepo.FindAllByExecutionID(id)
}

// ListExecutions delegates to the repository to search based on request filters.
func (e *WorkflowEngine) ListExecutions(req models.SearchExecutionsRequest) (*[]domain.Execution, error) {
	return e.ExecutionRepo.Search(req)
}
