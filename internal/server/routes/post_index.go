package routes

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/internal/server/middleware"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/record"
)

// CreateIndexHandler accepts a batch of records and schedules a graph build.
// The batch arrives either as a JSON body or as a CSV export uploaded as
// multipart form data under the "file" field.
func CreateIndexHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	records, err := bindRecords(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	jobID, err := app.Jobs.Submit(records)
	if err != nil {
		logger.Error("[Server] Failed to submit build", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to submit build"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"jobId": jobID})
}

func bindRecords(c echo.Context) ([]record.Record, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		file, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("missing file upload")
		}
		src, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()

		content, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}

		app := c.(*middleware.AppContext).App
		return app.Loader.Load(c.Request().Context(), content)
	}

	var body struct {
		Records []record.Record `json:"records"`
	}
	if err := c.Bind(&body); err != nil {
		return nil, err
	}
	// This slice is owned by the request; the loader path above returns
	// cached records that must never be written to.
	for i := range body.Records {
		if body.Records[i].TypeNorm == "" {
			body.Records[i].TypeNorm = record.NormalizeType(body.Records[i].Type)
		}
	}
	return body.Records, nil
}
