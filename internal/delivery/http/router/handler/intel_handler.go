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

// IntelHandler holds dependencies for competitive intelligence handlers.
type IntelHandler struct {
	uc     usecase.IntelUsecase
	logger *slog.Logger
}

// NewIntelHandler is the constructor for IntelHandler, injected by Fx.
func NewIntelHandler(uc usecase.IntelUsecase, logger *slog.Logger) *IntelHandler {
	return &IntelHandler{
		uc:     uc,
		logger: logger,
	}
}

// SnapshotCompetitors pulls competitor pricing for the org's tracked
// retailers and stores the aggregates.
func (h *IntelHandler) SnapshotCompetitors(c echo.Context) error {
	snapshot, err := h.uc.SnapshotCompetitors(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, snapshot, "Competitor snapshot created")
}

// ListSnapshots retrieves the org's snapshots, newest first.
func (h *IntelHandler) ListSnapshots(c echo.Context) error {
	snapshots, err := h.uc.ListSnapshots(c.Request().Context(), middleware.OrgID(c), queryInt(c, "limit", 20))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, snapshots, "")
}
