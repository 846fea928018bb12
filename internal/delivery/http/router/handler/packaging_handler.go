package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"canopy/internal/delivery/http/middleware"
	"canopy/internal/delivery/http/response"
	"canopy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PackagingHandler holds dependencies for packaging compliance handlers.
type PackagingHandler struct {
	uc     usecase.PackagingUsecase
	logger *slog.Logger
}

// NewPackagingHandler is the constructor for PackagingHandler, injected by Fx.
func NewPackagingHandler(uc usecase.PackagingUsecase, logger *slog.Logger) *PackagingHandler {
	return &PackagingHandler{
		uc:     uc,
		logger: logger,
	}
}

// Submit accepts packaging artwork as a multipart upload or a JSON
// body with base64 image data, then runs the compliance review.
func (h *PackagingHandler) Submit(c echo.Context) error {
	input, err := h.readSubmission(c)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid packaging submission")
	}

	analysis, err := h.uc.Submit(c.Request().Context(), middleware.OrgID(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, analysis, "Packaging submitted for review")
}

// readSubmission extracts the image from either encoding.
func (h *PackagingHandler) readSubmission(c echo.Context) (usecase.SubmitPackagingInput, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return usecase.SubmitPackagingInput{}, errors.WithStack(err)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return usecase.SubmitPackagingInput{}, errors.WithStack(err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return usecase.SubmitPackagingInput{}, errors.WithStack(err)
		}

		return usecase.SubmitPackagingInput{
			Image:       data,
			ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		}, nil
	}

	var input usecase.SubmitPackagingInput
	if err := c.Bind(&input); err != nil {
		return usecase.SubmitPackagingInput{}, errors.WithStack(err)
	}

	return input, nil
}

// GetAnalysis retrieves one compliance analysis.
func (h *PackagingHandler) GetAnalysis(c echo.Context) error {
	analysis, err := h.uc.GetAnalysis(c.Request().Context(), middleware.OrgID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, analysis, "")
}

// ListAnalyses retrieves the org's analyses, newest first.
func (h *PackagingHandler) ListAnalyses(c echo.Context) error {
	analyses, err := h.uc.ListAnalyses(c.Request().Context(), middleware.OrgID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, analyses, "")
}
