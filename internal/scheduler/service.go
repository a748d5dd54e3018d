package scheduler

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

var ErrScheduleNotFound = errors.New("schedule not found")

// ScheduleService manages schedules and keeps their triggers in step with
// storage. Every change (de)registers the trigger before returning.
type ScheduleService struct {
	repo      engine.ScheduleRepo
	workflows engine.WorkflowRepo
	scheduler *Scheduler
	clock     core.Clock
}

func NewScheduleService(repo engine.ScheduleRepo, workflows engine.WorkflowRepo, scheduler *Scheduler, clock core.Clock) *ScheduleService {
	return &ScheduleService{repo: repo, workflows: workflows, scheduler: scheduler, clock: clock}
}

func (s *ScheduleService) Create(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
	sw := &domain.ScheduledWorkflow{IsActive: true}
	if err := s.apply(sw, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Save(sw); err != nil {
		return nil, err
	}
	return sw, s.sync(sw)
}

func (s *ScheduleService) Update(id int64, req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
	sw, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(sw, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(sw); err != nil {
		return nil, err
	}
	return sw, s.sync(sw)
}

func (s *ScheduleService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.scheduler.Unregister(id)
	return s.repo.Delete(id)
}

func (s *ScheduleService) Activate(id int64) (*domain.ScheduledWorkflow, error) {
	return s.setActive(id, true)
}

func (s *ScheduleService) Deactivate(id int64) (*domain.ScheduledWorkflow, error) {
	return s.setActive(id, false)
}

func (s *ScheduleService) Get(id int64) (*domain.ScheduledWorkflow, error) {
	sw, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, ErrScheduleNotFound
	}
	return sw, nil
}

func (s *ScheduleService) List() (*[]domain.ScheduledWorkflow, error) {
	return s.repo.FindAll()
}

func (s *ScheduleService) setActive(id int64, active bool) (*domain.ScheduledWorkflow, error) {
	sw, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sw.IsActive = active
	if active {
		if err := s.scheduleNext(sw); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(sw); err != nil {
		return nil, err
	}
	return sw, s.sync(sw)
}

// apply validates req and copies it onto sw, recomputing the next run time.
func (s *ScheduleService) apply(sw *domain.ScheduledWorkflow, req models.ScheduleRequest) error {
	if err := ValidateCronExpression(req.CronExpression); err != nil {
		return err
	}
	wf, err := s.workflows.FindByID(req.WorkflowID)
	if err != nil {
		return err
	}
	if wf == nil {
		return engine.ErrWorkflowNotFound
	}

	parameters := strings.TrimSpace(string(req.Parameters))
	if parameters == "null" {
		parameters = ""
	}
	if _, err := core.ParseInputData(parameters); err != nil {
		return fmt.Errorf("%w: parameters: %v", engine.ErrInvalidInput, err)
	}

	sw.WorkflowID = req.WorkflowID
	sw.CronExpression = strings.TrimSpace(req.CronExpression)
	sw.Parameters = sql.NullString{String: parameters, Valid: parameters != ""}
	if req.IsActive != nil {
		sw.IsActive = *req.IsActive
	}
	return s.scheduleNext(sw)
}

func (s *ScheduleService) scheduleNext(sw *domain.ScheduledWorkflow) error {
	next, err := NextRunAfter(sw.CronExpression, s.clock.Now())
	if err != nil {
		return err
	}
	sw.NextRunAt = sql.NullTime{Time: next, Valid: true}
	return nil
}

func (s *ScheduleService) sync(sw *domain.ScheduledWorkflow) error {
	if !sw.IsActive {
		s.scheduler.Unregister(sw.ID)
		return nil
	}
	return s.scheduler.Register(sw)
}
