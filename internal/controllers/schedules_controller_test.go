package controllers

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/scheduler"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

func newSchedulesController(m *MockScheduleManager) *SchedulesController {
	return NewSchedulesController(m, NewAuthController(&MockUserRepo{}))
}

func TestCreateSchedule(t *testing.T) {
	next := time.Date(2025, 6, 2, 10, 10, 0, 0, time.UTC)
	var got models.ScheduleRequest
	c := newSchedulesController(&MockScheduleManager{
		CreateFunc: func(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
			got = req
			return &domain.ScheduledWorkflow{
				ID:             11,
				WorkflowID:     req.WorkflowID,
				CronExpression: req.CronExpression,
				IsActive:       true,
				Parameters:     sql.NullString{String: string(req.Parameters), Valid: true},
				NextRunAt:      sql.NullTime{Time: next, Valid: true},
			}, nil
		},
	})

	rec := serve(c, http.MethodPost, "/api/schedules", `{"workflowId": 2, "cronExpression": "*/5 * * * *", "parameters": {"region": "eu"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2), got.WorkflowID)
	assert.Equal(t, "*/5 * * * *", got.CronExpression)
	resp, err := util.DecodeJSONBodyResponse[models.ScheduleApiResponse](rec.Result())
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.True(t, resp.IsActive)
	assert.JSONEq(t, `{"region": "eu"}`, string(resp.Parameters))
	require.NotNil(t, resp.NextRunAt)
	assert.True(t, next.Equal(*resp.NextRunAt))
	assert.Nil(t, resp.LastRunAt)
}

func TestCreateSchedule_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad cron", err: fmt.Errorf("%w: expected 5 fields", scheduler.ErrInvalidCron), want: http.StatusBadRequest},
		{name: "bad parameters", err: engine.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "unknown workflow", err: engine.ErrWorkflowNotFound, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newSchedulesController(&MockScheduleManager{
				CreateFunc: func(req models.ScheduleRequest) (*domain.ScheduledWorkflow, error) {
					return nil, tt.err
				},
			})
			rec := serve(c, http.MethodPost, "/api/schedules", `{"workflowId": 2, "cronExpression": "nope"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	c := newSchedulesController(&MockScheduleManager{})
	assert.Equal(t, http.StatusBadRequest, serve(c, http.MethodPost, "/api/schedules", `[`).Code)
}

func TestScheduleByID(t *testing.T) {
	missing := func(id int64) (*domain.ScheduledWorkflow, error) {
		return nil, scheduler.ErrScheduleNotFound
	}
	c := newSchedulesController(&MockScheduleManager{
		GetFunc:        missing,
		ActivateFunc:   missing,
		DeactivateFunc: missing,
		DeleteFunc: func(id int64) error {
			return scheduler.ErrScheduleNotFound
		},
	})

	assert.Equal(t, http.StatusNotFound, serve(c, http.MethodGet, "/api/schedules/4", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(c, http.MethodPost, "/api/schedules/4/activate", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(c, http.MethodPost, "/api/schedules/4/deactivate", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(c, http.MethodDelete, "/api/schedules/4", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(c, http.MethodGet, "/api/schedules/0", "").Code)
}

func TestScheduleLifecycle(t *testing.T) {
	c := newSchedulesController(&MockScheduleManager{})

	rec := serve(c, http.MethodPost, "/api/schedules/3/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp, err := util.DecodeJSONBodyResponse[models.ScheduleApiResponse](rec.Result())
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	rec = serve(c, http.MethodPost, "/api/schedules/3/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp, err = util.DecodeJSONBodyResponse[models.ScheduleApiResponse](rec.Result())
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	rec = serve(c, http.MethodPut, "/api/schedules/3", `{"workflowId": 1, "cronExpression": "0 9 * * 1-5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp, err = util.DecodeJSONBodyResponse[models.ScheduleApiResponse](rec.Result())
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * 1-5", resp.CronExpression)

	assert.Equal(t, http.StatusNoContent, serve(c, http.MethodDelete, "/api/schedules/3", "").Code)
}

func TestListSchedules(t *testing.T) {
	c := newSchedulesController(&MockScheduleManager{
		ListFunc: func() (*[]domain.ScheduledWorkflow, error) {
			return &[]domain.ScheduledWorkflow{
				{ID: 1, WorkflowID: 1, CronExpression: "@hourly", IsActive: true},
				{ID: 2, WorkflowID: 1, CronExpression: "0 0 * * *"},
			}, nil
		},
	})

	rec := serve(c, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp, err := util.DecodeJSONBodyResponse[[]models.ScheduleApiResponse](rec.Result())
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "@hourly", resp[0].CronExpression)
	assert.Nil(t, resp[1].Parameters)
}
