package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/scheduler"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

func writeError(w http.ResponseWriter, status int, message string) {
	util.WriteJSONResponse(w, status, models.ErrorResponse{Error: message})
}

func statusForError(err error) int {
	var validationErr *engine.ValidationError
	switch {
	case errors.Is(err, engine.ErrWorkflowNotFound),
		errors.Is(err, engine.ErrExecutionNotFound),
		errors.Is(err, scheduler.ErrScheduleNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrWorkflowInactive),
		errors.Is(err, engine.ErrExecutionNotRunning):
		return http.StatusConflict
	case errors.Is(err, engine.ErrQueueFull),
		errors.Is(err, engine.ErrEngineNotRunning):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, scheduler.ErrInvalidCron),
		errors.As(err, &validationErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a domain error to its status code. Unexpected errors
// are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Failed to "+action, "error", err)
		writeError(w, status, "failed to "+action)
		return
	}
	writeError(w, status, err.Error())
}
