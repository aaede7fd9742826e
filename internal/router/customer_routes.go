package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/middleware"
)

// RegisterCustomer registers booking endpoints under /v1.  Every signed-in
// role may book; the handlers only ever return the caller's own bookings.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(allRoles...),
	)
	g.POST("/bookings", h.CreateBooking)
	g.GET("/my-bookings", h.ListMyBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/bookings/:id/receipt", h.GetReceipt)
}
