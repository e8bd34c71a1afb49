package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/internal/server/middleware"
)

// DeleteIndexHandler removes a job in any state. Deleting a building job
// halts its build; deleting a ready job releases its graph.
func DeleteIndexHandler(c echo.Context) error {
	type deleteIndexParams struct {
		JobID string `param:"id" validate:"required"`
	}

	params := new(deleteIndexParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	if !app.Jobs.Delete(params.JobID) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Job not found"})
	}

	return c.NoContent(http.StatusNoContent)
}
