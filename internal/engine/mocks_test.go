package engine

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// memWorkflowRepo is a thread safe in memory WorkflowRepo.
type memWorkflowRepo struct {
	mu        sync.Mutex
	nextID    int64
	workflows map[int64]domain.Workflow
}

func newMemWorkflowRepo() *memWorkflowRepo {
	return &memWorkflowRepo{workflows: map[int64]domain.Workflow{}}
}

func (r *memWorkflowRepo) Save(wf *domain.Workflow) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	wf.ID = r.nextID
	r.workflows[wf.ID] = *wf
	return wf.ID, nil
}

func (r *memWorkflowRepo) Update(wf *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[wf.ID]; !ok {
		return sql.ErrNoRows
	}
	wf.Version++
	r.workflows[wf.ID] = *wf
	return nil
}

func (r *memWorkflowRepo) FindByID(id int64) (*domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wf, ok := r.workflows[id]
	if !ok {
		return nil, nil
	}
	return &wf, nil
}

func (r *memWorkflowRepo) FindAll() (*[]domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &out, nil
}

func (r *memWorkflowRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, id)
	return nil
}

// memExecutionRepo is a thread safe in memory ExecutionRepo with the same
// conditional transitions as the SQL repository.
type memExecutionRepo struct {
	mu         sync.Mutex
	nextID     int64
	executions map[int64]domain.Execution
}

func newMemExecutionRepo() *memExecutionRepo {
	return &memExecutionRepo{executions: map[int64]domain.Execution{}}
}

func (r *memExecutionRepo) Save(e *domain.Execution) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.executions[e.ID] = *e
	return e.ID, nil
}

func (r *memExecutionRepo) FindByID(id int64) (*domain.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *memExecutionRepo) MarkRunning(id int64, started time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[id]
	if !ok || e.Status != domain.ExecutionStatusPending {
		return false, nil
	}
	e.Status = domain.ExecutionStatusRunning
	e.Started = sql.NullTime{Time: started, Valid: true}
	r.executions[id] = e
	return true, nil
}

func (r *memExecutionRepo) Finish(id int64, status domain.ExecutionStatus, completed time.Time, errorMessage string, contextSnapshot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[id]
	if !ok || e.Status != domain.ExecutionStatusRunning {
		return false, nil
	}
	e.Status = status
	e.Completed = sql.NullTime{Time: completed, Valid: true}
	e.ErrorMessage = sql.NullString{String: errorMessage, Valid: errorMessage != ""}
	e.ContextSnapshot = sql.NullString{String: contextSnapshot, Valid: contextSnapshot != ""}
	r.executions[id] = e
	return true, nil
}

func (r *memExecutionRepo) FailInterrupted(message string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.executions {
		if e.Status == domain.ExecutionStatusPending || e.Status == domain.ExecutionStatusRunning {
			e.Status = domain.ExecutionStatusFailed
			e.ErrorMessage = sql.NullString{String: message, Valid: true}
			e.Completed = sql.NullTime{Time: at, Valid: true}
			r.executions[id] = e
			n++
		}
	}
	return n, nil
}

func (r *memExecutionRepo) FindByStatus(status domain.ExecutionStatus) (*[]domain.Execution, error) {
	return r.Search(models.SearchExecutionsRequest{Status: string(status)})
}

func (r *memExecutionRepo) Search(req models.SearchExecutionsRequest) (*[]domain.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Execution, 0)
	for _, e := range r.executions {
		if req.WorkflowID != 0 && e.WorkflowID != req.WorkflowID {
			continue
		}
		if req.Status != "" && string(e.Status) != req.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return &out, nil
}

// memLogRepo is a thread safe in memory ExecutionLogRepo.
type memLogRepo struct {
	mu     sync.Mutex
	nextID int64
	logs   []domain.ExecutionLog
}

func (r *memLogRepo) Save(l *domain.ExecutionLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.logs = append(r.logs, *l)
	return l.ID, nil
}

func (r *memLogRepo) Finish(l *domain.ExecutionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == l.ID && r.logs[i].Status == domain.ExecutionLogStatusRunning {
			r.logs[i] = *l
		}
	}
	return nil
}

func (r *memLogRepo) FindAllByExecutionID(executionID int64) (*[]domain.ExecutionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ExecutionLog, 0)
	for _, l := range r.logs {
		if l.ExecutionID == executionID {
			out = append(out, l)
		}
	}
	return &out, nil
}
