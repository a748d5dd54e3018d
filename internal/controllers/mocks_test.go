package controllers

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const testApiKey = "test-api-key"

// Mock repos for controller tests, in the func-field style: nil funcs return zero values.

type MockUserRepo struct {
	SaveFunc           func(user *domain.User) (int64, error)
	FindByUsernameFunc func(username string) (*domain.User, error)
	FindByApiKeyFunc   func(apiKey string) (*domain.User, error)
	FindByIdFunc       func(id int64) (*domain.User, error)
	DeleteByIdFunc     func(id int64) error
	FindAllFunc        func() (*[]domain.User, error)
}

func (m *MockUserRepo) Save(user *domain.User) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(user)
	}
	user.ID = 1
	return 1, nil
}
func (m *MockUserRepo) FindByUsername(username string) (*domain.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(username)
	}
	return nil, nil
}
func (m *MockUserRepo) FindByApiKey(apiKey string) (*domain.User, error) {
	if m.FindByApiKeyFunc != nil {
		return m.FindByApiKeyFunc(apiKey)
	}
	if apiKey == testApiKey {
		return &domain.User{ID: 7, Username: "tester", ApiKey: sql.NullString{String: testApiKey, Valid: true}}, nil
	}
	return nil, nil
}
func (m *MockUserRepo) FindById(id int64) (*domain.User, error) {
	if m.FindByIdFunc != nil {
		return m.FindByIdFunc(id)
	}
	return nil, nil
}
func (m *MockUserRepo) DeleteById(id int64) error {
	if m.DeleteByIdFunc != nil {
		return m.DeleteByIdFunc(id)
	}
	return nil
}
func (m *MockUserRepo) FindAll() (*[]domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc()
	}
	return &[]domain.User{}, nil
}

type MockEngine struct {
	StartExecutionFunc    func(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error)
	StopExecutionFunc     func(ctx context.Context, id int64) (*domain.Execution, error)
	GetExecutionFunc      func(id int64) (*domain.Execution, error)
	GetExecutionLogsFunc  func(id int64) (*[]domain.ExecutionLog, error)
	ListExecutionsFunc    func(req models.SearchExecutionsRequest) (*[]domain.Execution, error)
	RunningExecutionsFunc func() (*[]domain.Execution, error)
	StatsFunc             func() models.EngineStatsResponse
}

func (m *MockEngine) StartExecution(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error) {
	if m.StartExecutionFunc != nil {
		return m.StartExecutionFunc(ctx, workflowID, userID, inputData)
	}
	return 1, nil
}
func (m *MockEngine) StopExecution(ctx context.Context, id int64) (*domain.Execution, error) {
	if m.StopExecutionFunc != nil {
		return m.StopExecutionFunc(ctx, id)
	}
	return &domain.Execution{ID: id}, nil
}
func (m *MockEngine) GetExecution(id int64) (*domain.Execution, error) {
	if m.GetExecutionFunc != nil {
		return m.GetExecutionFunc(id)
	}
	return &domain.Execution{ID: id}, nil
}
func (m *MockEngine) GetExecutionLogs(id int64) (*[]domain.ExecutionLog, error) {
	if m.GetExecutionLogsFunc != nil {
		return m.GetExecutionLogsFunc(id)
	}
	return &[]domain.ExecutionLog{}, nil
}
func (m *MockEngine) ListExecutions(req models.SearchExecutionsRequest) (*[]domain.Execution, error) {
	if m.ListExecutionsFunc != nil {
		return m.ListExecutionsFunc(req)
	}
	return &[]domain.Execution{}, nil
}
func (m *MockEngine) RunningExecutions() (*[]domain.Execution, error) {
	if m.RunningExecutionsFunc != nil {
		return m.RunningExecutionsFunc()
	}
	return &[]domain.Execution{}, nil
}
func (m *MockEngine) Stats() models.EngineStatsResponse {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return models.EngineStatsResponse{}
}

type MockScheduleManager struct {
	CreateFunc     func(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error)
	UpdateFunc     func(id int64, req models.ScheduleRequest) (*domain.ScheduledWorkflow, error)
	DeleteFunc     func(id int64) error
	ActivateFunc   func(id int64) (*domain.ScheduledWorkflow, error)
	DeactivateFunc func(id int64) (*domain.ScheduledWorkflow, error)
	GetFunc        func(id int64) (*domain.ScheduledWorkflow, error)
	ListFunc       func() (*[]domain.ScheduledWorkflow, error)
}

func (m *MockScheduleManager) Create(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(req)
	}
	return &domain.ScheduledWorkflow{ID: 1, WorkflowID: req.WorkflowID, CronExpression: req.CronExpression}, nil
}
func (m *MockScheduleManager) Update(id int64, req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(id, req)
	}
	return &domain.ScheduledWorkflow{ID: id, WorkflowID: req.WorkflowID, CronExpression: req.CronExpression}, nil
}
func (m *MockScheduleManager) Delete(id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}
func (m *MockScheduleManager) Activate(id int64) (*domain.ScheduledWorkflow, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(id)
	}
	return &domain.ScheduledWorkflow{ID: id, IsActive: true}, nil
}
func (m *MockScheduleManager) Deactivate(id int64) (*domain.ScheduledWorkflow, error) {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(id)
	}
	return &domain.ScheduledWorkflow{ID: id}, nil
}
func (m *MockScheduleManager) Get(id int64) (*domain.ScheduledWorkflow, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return &domain.ScheduledWorkflow{ID: id}, nil
}
func (m *MockScheduleManager) List() (*[]domain.ScheduledWorkflow, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return &[]domain.ScheduledWorkflow{}, nil
}

type MockWorkflowRepo struct {
	SaveFunc     func(wf *domain.Workflow) (int64, error)
	UpdateFunc   func(wf *domain.Workflow) error
	FindByIDFunc func(id int64) (*domain.Workflow, error)
	FindAllFunc  func() (*[]domain.Workflow, error)
	DeleteFunc   func(id int64) error
}

func (m *MockWorkflowRepo) Save(wf *domain.Workflow) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(wf)
	}
	return 1, nil
}
func (m *MockWorkflowRepo) Update(wf *domain.Workflow) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(wf)
	}
	return nil
}
func (m *MockWorkflowRepo) FindByID(id int64) (*domain.Workflow, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}
func (m *MockWorkflowRepo) FindAll() (*[]domain.Workflow, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc()
	}
	return &[]domain.Workflow{}, nil
}
func (m *MockWorkflowRepo) Delete(id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}

type routeRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// serve sends an authenticated request through a mux holding the controller's routes.
func serve(c routeRegistrar, method string, target string, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(apiKeyHeader, testApiKey)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
