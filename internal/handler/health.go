package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health is used by load balancers and monitoring.  The process answers
// 200 even when the store is down, because the catalog keeps serving its
// fallback; the "db" field reports the store separately.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "up"
		if db == nil {
			status = "unknown"
		} else {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status = "down"
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "db": status})
	}
}
