package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const apiKeyHeader = "X-API-Key"

type AuthController struct {
	UserRepo engine.UserRepo
}

func NewAuthController(userRepo engine.UserRepo) *AuthController {
	return &AuthController{UserRepo: userRepo}
}

// RequireAuth only lets requests through that carry the API key of an enabled user.
// The user is added to the request context.
func (c *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "missing "+apiKeyHeader+" header")
			return
		}
		u, err := c.UserRepo.FindByApiKey(apiKey)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to look up api key", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
			return
		}
		if u == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), core.CtxKeyUsername, u.Username)
		ctx = context.WithValue(ctx, core.CtxKeyUserID, u.ID)
		next(w, r.WithContext(ctx))
	}
}

// handleLogin exchanges a username and password for the user's API key.
func (c *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.LoginRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := c.UserRepo.FindByUsername(req.Username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load user", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if u == nil || (u.Enabled.Valid && !u.Enabled.Bool) ||
		bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		slog.WarnContext(r.Context(), "Failed login", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if !u.ApiKey.Valid || u.ApiKey.String == "" {
		writeError(w, http.StatusForbidden, "user has no api key")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "username", u.Username)
	util.WriteJSONResponse(w, http.StatusOK, models.LoginResponse{Username: u.Username, ApiKey: u.ApiKey.String})
}

func (c *AuthController) handleHealth(w http.ResponseWriter, r *http.Request) {
	util.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userIDFromContext returns the authenticated user's id, or 0.
func userIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(core.CtxKeyUserID).(int64); ok {
		return id
	}
	return 0
}
