package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parkseva/internal/logger"
)

// RequestLogger logs one line per request with method, route, status and
// latency.  Server errors go to the error logger.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			fields := logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"route":      c.Path(),
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
				"ip":         c.RealIP(),
			}
			if uid := UserID(c); uid != "" {
				fields["user_id"] = uid
			}
			if status >= 500 {
				logger.ErrorLogger.WithFields(fields).Error("request failed")
			} else {
				logger.InfoLogger.WithFields(fields).Info("request")
			}
			return nil
		}
	}
}
