package router // package router defines how HTTP routes are registered for the API

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/model"
)

// allRoles is every role that may call an authenticated endpoint.
var allRoles = []string{model.RoleUser, model.RoleAdmin, model.RoleOwner}

// New builds the Echo instance with the process-wide middleware.  limiter
// applies to /v1 routes only; pass nil to disable it.
func New(limiter echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger())
	if limiter != nil {
		e.Use(onlyPrefix("/v1/", limiter))
	}
	return e
}

// onlyPrefix runs mw for request paths under prefix and skips it for the
// rest (health checks, function proxies).
func onlyPrefix(prefix string, mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, prefix) {
				return wrapped(c)
			}
			return next(c)
		}
	}
}

// RegisterRoutes registers routes that do not belong to any API group.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the account endpoints.  Token exchange and
// password reset live under /v1/auth without a session; /v1/me and
// /v1/profile require one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps it
	g.POST("/logout", a.Logout)                // refresh token or bearer, no JWT middleware
	g.POST("/password-reset", a.RequestPasswordReset)
	g.POST("/password-reset/confirm", a.ConfirmPasswordReset)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(allRoles...))
	auth.GET("/me", a.Me)
	auth.GET("/profile", p.Get)
	auth.PATCH("/profile", p.Update)
}

// RegisterPublic registers the unauthenticated catalog endpoints.  cache
// may be nil; fallback responses are never cached.
func RegisterPublic(e *echo.Echo, h *handler.PublicHandler, cache echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	if cache != nil {
		mws = append(mws, cache)
	}
	g := e.Group("/v1", mws...)
	g.GET("/lots", h.GetLots)
	g.GET("/lots/:id/slots", h.GetSlots)
	g.GET("/lots/:id/grid", h.GetGrid)
	g.GET("/quote", h.GetQuote)
}
