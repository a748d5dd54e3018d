package scheduler

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

type memScheduleRepo struct {
	mu        sync.Mutex
	nextID    int64
	schedules map[int64]domain.ScheduledWorkflow
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{schedules: map[int64]domain.ScheduledWorkflow{}}
}

func (r *memScheduleRepo) Save(s *domain.ScheduledWorkflow) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.schedules[s.ID] = *s
	return s.ID, nil
}

func (r *memScheduleRepo) Update(s *domain.ScheduledWorkflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.ID]; !ok {
		return sql.ErrNoRows
	}
	r.schedules[s.ID] = *s
	return nil
}

func (r *memScheduleRepo) UpdateRunTimes(id int64, lastRunAt sql.NullTime, nextRunAt sql.NullTime) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil
	}
	s.LastRunAt = lastRunAt
	s.NextRunAt = nextRunAt
	r.schedules[id] = s
	return nil
}

func (r *memScheduleRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, id)
	return nil
}

func (r *memScheduleRepo) FindByID(id int64) (*domain.ScheduledWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memScheduleRepo) FindAll() (*[]domain.ScheduledWorkflow, error) {
	return r.filter(func(domain.ScheduledWorkflow) bool { return true })
}

func (r *memScheduleRepo) FindActive() (*[]domain.ScheduledWorkflow, error) {
	return r.filter(func(s domain.ScheduledWorkflow) bool { return s.IsActive })
}

func (r *memScheduleRepo) filter(keep func(domain.ScheduledWorkflow) bool) (*[]domain.ScheduledWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScheduledWorkflow, 0)
	for _, s := range r.schedules {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &out, nil
}

type startCall struct {
	workflowID int64
	userID     int64
	inputData  string
}

// MockStarter records StartExecution calls.
type MockStarter struct {
	mu    sync.Mutex
	calls []startCall
	err   error
}

func (m *MockStarter) StartExecution(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.calls = append(m.calls, startCall{workflowID: workflowID, userID: userID, inputData: inputData})
	return int64(len(m.calls)), nil
}

func (m *MockStarter) Calls() []startCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]startCall(nil), m.calls...)
}

// MockWorkflowRepo only answers FindByID.
type MockWorkflowRepo struct {
	FindByIDFunc func(id int64) (*domain.Workflow, error)
}

func (m *MockWorkflowRepo) Save(wf *domain.Workflow) (int64, error) { return 0, nil }
func (m *MockWorkflowRepo) Update(wf *domain.Workflow) error        { return nil }
func (m *MockWorkflowRepo) FindByID(id int64) (*domain.Workflow, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}
func (m *MockWorkflowRepo) FindAll() (*[]domain.Workflow, error) { return nil, nil }
func (m *MockWorkflowRepo) Delete(id int64) error                { return nil }
