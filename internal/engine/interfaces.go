package engine

import (
	"database/sql"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// WorkflowRepo defines the interface for workflow definition persistence, matching repository.WorkflowRepository.
type WorkflowRepo interface {
	Save(wf *domain.Workflow) (int64, error)
	Update(wf *domain.Workflow) error
	FindByID(id int64) (*domain.Workflow, error)
	FindAll() (*[]domain.Workflow, error)
	Delete(id int64) error
}

// ExecutionRepo defines the interface for execution persistence.
type ExecutionRepo interface {
	Save(e *domain.Execution) (int64, error)
	FindByID(id int64) (*domain.Execution, error)
	MarkRunning(id int64, started time.Time) (bool, error)
	Finish(id int64, status domain.ExecutionStatus, completed time.Time, errorMessage string, contextSnapshot string) (bool, error)
	FailInterrupted(message string, at time.Time) (int64, error)
	FindByStatus(status domain.ExecutionStatus) (*[]domain.Execution, error)
	Search(req models.SearchExecutionsRequest) (*[]domain.Execution, error)
}

// ExecutionLogRepo defines the interface for the per node audit trail.
type ExecutionLogRepo interface {
	Save(l *domain.ExecutionLog) (int64, error)
	Finish(l *domain.ExecutionLog) error
	FindAllByExecutionID(executionID int64) (*[]domain.ExecutionLog, error)
}

// ScheduleRepo defines the interface for scheduled workflow persistence.
type ScheduleRepo interface {
	Save(s *domain.ScheduledWorkflow) (int64, error)
	Update(s *domain.ScheduledWorkflow) error
	UpdateRunTimes(id int64, lastRunAt sql.NullTime, nextRunAt sql.NullTime) error
	Delete(id int64) error
	FindByID(id int64) (*domain.ScheduledWorkflow, error)
	FindAll() (*[]domain.ScheduledWorkflow, error)
	FindActive() (*[]domain.ScheduledWorkflow, error)
}

// UserRepo defines the interface for user persistence.
type UserRepo interface {
	Save(user *domain.User) (int64, error)
	FindByUsername(username string) (*domain.User, error)
	FindByApiKey(apiKey string) (*domain.User, error)
	FindById(id int64) (*domain.User, error)
	DeleteById(id int64) error
	FindAll() (*[]domain.User, error)
}
