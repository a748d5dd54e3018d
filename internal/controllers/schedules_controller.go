package controllers

import (
	"net/http"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// ScheduleManager is implemented by scheduler.ScheduleService.
type ScheduleManager interface {
	Create(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error)
	Update(id int64, req models.ScheduleRequest) (*domain.ScheduledWorkflow, error)
	Delete(id int64) error
	Activate(id int64) (*domain.ScheduledWorkflow, error)
	Deactivate(id int64) (*domain.ScheduledWorkflow, error)
	Get(id int64) (*domain.ScheduledWorkflow, error)
	List() (*[]domain.ScheduledWorkflow, error)
}

type SchedulesController struct {
	AuthController
	Schedules ScheduleManager
}

func NewSchedulesController(schedules ScheduleManager, auth *AuthController) *SchedulesController {
	return &SchedulesController{AuthController: *auth, Schedules: schedules}
}

func (c *SchedulesController) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := c.Schedules.List()
	if err != nil {
		writeServiceError(w, r, err, "list schedules")
		return
	}
	out := make([]models.ScheduleApiResponse, 0)
	if schedules != nil {
		for i := range *schedules {
			out = append(out, mapSchedule(&(*schedules)[i]))
		}
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *SchedulesController) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.ScheduleRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	schedule, err := c.Schedules.Create(req)
	if err != nil {
		writeServiceError(w, r, err, "create schedule")
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, mapSchedule(schedule))
}

func (c *SchedulesController) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	c.withScheduleID(w, r, "get schedule", c.Schedules.Get)
}

func (c *SchedulesController) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.ScheduleRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	schedule, err := c.Schedules.Update(id, req)
	if err != nil {
		writeServiceError(w, r, err, "update schedule")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapSchedule(schedule))
}

func (c *SchedulesController) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Schedules.Delete(id); err != nil {
		writeServiceError(w, r, err, "delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *SchedulesController) handleActivateSchedule(w http.ResponseWriter, r *http.Request) {
	c.withScheduleID(w, r, "activate schedule", c.Schedules.Activate)
}

func (c *SchedulesController) handleDeactivateSchedule(w http.ResponseWriter, r *http.Request) {
	c.withScheduleID(w, r, "deactivate schedule", c.Schedules.Deactivate)
}

func (c *SchedulesController) withScheduleID(w http.ResponseWriter, r *http.Request, action string,
	op func(id int64) (*domain.ScheduledWorkflow, error)) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, err := op(id)
	if err != nil {
		writeServiceError(w, r, err, action)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapSchedule(schedule))
}
