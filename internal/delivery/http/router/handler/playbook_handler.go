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

// PlaybookHandler holds dependencies for playbook automation handlers.
type PlaybookHandler struct {
	uc     usecase.PlaybookUsecase
	logger *slog.Logger
}

// NewPlaybookHandler is the constructor for PlaybookHandler, injected by Fx.
func NewPlaybookHandler(uc usecase.PlaybookUsecase, logger *slog.Logger) *PlaybookHandler {
	return &PlaybookHandler{
		uc:     uc,
		logger: logger,
	}
}

// CreatePlaybook parses the submitted YAML and stores the playbook.
func (h *PlaybookHandler) CreatePlaybook(c echo.Context) error {
	var input usecase.SavePlaybookInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid playbook input")
	}

	playbook, err := h.uc.CreatePlaybook(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, playbook, "Playbook created successfully")
}

// GetPlaybook retrieves one playbook.
func (h *PlaybookHandler) GetPlaybook(c echo.Context) error {
	playbook, err := h.uc.GetPlaybook(c.Request().Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, playbook, "")
}

// ListPlaybooks retrieves the org's playbooks.
func (h *PlaybookHandler) ListPlaybooks(c echo.Context) error {
	playbooks, err := h.uc.ListPlaybooks(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, playbooks, "")
}

// UpdatePlaybook re-parses the YAML source and replaces the playbook.
func (h *PlaybookHandler) UpdatePlaybook(c echo.Context) error {
	var input usecase.SavePlaybookInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid playbook input")
	}

	playbook, err := h.uc.UpdatePlaybook(c.Request().Context(), middleware.OrgID(c), c.Param("id"), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, playbook, "Playbook updated successfully")
}

// DeletePlaybook removes a playbook.
func (h *PlaybookHandler) DeletePlaybook(c echo.Context) error {
	if err := h.uc.DeletePlaybook(c.Request().Context(), middleware.OrgID(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Playbook deleted successfully")
}

// executeRequest carries the manual-run payload for a playbook.
type executeRequest struct {
	Payload map[string]string `json:"payload"`
}

// Execute runs a playbook immediately with the given payload.
func (h *PlaybookHandler) Execute(c echo.Context) error {
	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid execution input")
	}

	run, err := h.uc.Execute(c.Request().Context(), middleware.OrgID(c), c.Param("id"), req.Payload)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, run, "Playbook executed")
}
