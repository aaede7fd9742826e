package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/model"
)

// RegisterAdmin registers the operator console under /v1/admin.  All
// routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/lots", h.ListLots)
	g.GET("/slots", h.ListSlots)
	g.GET("/bookings", h.ListBookings)
	g.PATCH("/slots/:id/availability", h.ToggleSlot)
	g.POST("/slots/:id/maintenance", h.MaintainSlot)
}
