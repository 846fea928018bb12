package handler

import (
	"log/slog"
	"net/http"

	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/response"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// GoalHandler holds dependencies for goal tracking handlers.
type GoalHandler struct {
	uc     usecase.GoalUsecase
	logger *slog.Logger
}

// NewGoalHandler is the constructor for GoalHandler, injected by Fx.
func NewGoalHandler(uc usecase.GoalUsecase, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{
		uc:     uc,
		logger: logger,
	}
}

// CreateGoal adds a goal to the org.
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	var input usecase.SaveGoalInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid goal input")
	}

	goal, err := h.uc.CreateGoal(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, goal, "Goal created successfully")
}

// GetGoal retrieves one goal with its computed progress.
func (h *GoalHandler) GetGoal(c echo.Context) error {
	goal, err := h.uc.GetGoal(c.Request().Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, goal, "")
}

// ListGoals retrieves the org's goals with progress.
func (h *GoalHandler) ListGoals(c echo.Context) error {
	goals, err := h.uc.ListGoals(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, goals, "")
}

// UpdateGoal replaces a goal.
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	var input usecase.SaveGoalInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid goal input")
	}

	goal, err := h.uc.UpdateGoal(c.Request().Context(), middleware.OrgID(c), c.Param("id"), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, goal, "Goal updated successfully")
}

// progressRequest carries the new current value for a goal.
type progressRequest struct {
	Current float64 `json:"current"`
}

// RecordProgress sets the goal's current value.
func (h *GoalHandler) RecordProgress(c echo.Context) error {
	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid progress input")
	}

	goal, err := h.uc.RecordProgress(c.Request().Context(), middleware.OrgID(c), c.Param("id"), req.Current)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, goal, "Progress recorded successfully")
}

// DeleteGoal removes a goal.
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	if err := h.uc.DeleteGoal(c.Request().Context(), middleware.OrgID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Goal deleted successfully")
}
