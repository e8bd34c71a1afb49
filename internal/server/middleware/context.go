package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/pkg/jobs"
	"github.com/vendange/backend/pkg/loader"
	"github.com/vendange/backend/pkg/query"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// App carries the long-lived collaborators handlers need.
type App struct {
	Jobs     *jobs.Store
	Executor *query.Executor
	Loader   loader.RecordSource

	// Key is nil when no identity provider is configured; auth then falls
	// back to the master API key, or is disabled entirely when that is
	// empty too.
	Key          *keyfunc.Keyfunc
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app, nil})
		}
	}
}
