package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/internal/server/middleware"
	"github.com/vendange/backend/pkg/jobs"
)

// GetIndexHandler returns the status snapshot of a build job.
func GetIndexHandler(c echo.Context) error {
	type getIndexParams struct {
		JobID string `param:"id" validate:"required"`
	}

	params := new(getIndexParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	snapshot, err := app.Jobs.GetStatus(params.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to read job status"})
	}

	return c.JSON(http.StatusOK, snapshot)
}
