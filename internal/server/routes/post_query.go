package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/internal/server/middleware"
	"github.com/vendange/backend/pkg/jobs"
	"github.com/vendange/backend/pkg/query"
)

type queryBody struct {
	Query string `json:"query"`
}

// QueryIndexHandler runs a query against the graph of a specific job.
func QueryIndexHandler(c echo.Context) error {
	type queryIndexParams struct {
		JobID string `param:"id" validate:"required"`
		Query string `json:"query"`
	}

	params := new(queryIndexParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Executor.Execute(params.JobID, params.Query)
	if err != nil {
		return queryErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// QueryLatestHandler runs a query against the most recently completed graph.
func QueryLatestHandler(c echo.Context) error {
	body := new(queryBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	jobID, result, err := app.Executor.ExecuteLatest(body.Query)
	if err != nil {
		return queryErrorResponse(c, err)
	}

	c.Response().Header().Set("X-Job-Id", jobID)
	return c.JSON(http.StatusOK, result)
}

func queryErrorResponse(c echo.Context, err error) error {
	var engineErr *query.EngineError
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Job not found"})
	case errors.Is(err, jobs.ErrNotReady):
		return c.JSON(http.StatusConflict, map[string]string{"message": "Graph is not ready"})
	case errors.As(err, &engineErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": engineErr.Message})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Query failed"})
	}
}
