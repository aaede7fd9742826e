package router

// Function routes keep provider credentials on the server.  They are
// registered for every method so that the handlers themselves answer
// non-POST requests with 405 and a JSON body.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/middleware"
)

// RegisterFunctions registers the /functions/v1 proxies.
func RegisterFunctions(e *echo.Echo, p *handler.PaymentHandler, n *handler.NotifyHandler) {
	g := e.Group("/functions/v1")
	g.Any("/create-payment-intent", p.CreatePaymentIntent)
	g.Any("/send-sms", n.SendSMS)
	g.Any("/send-whatsapp", n.SendWhatsApp)
}

// RegisterPayments registers the simulated UPI wallet helpers.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1/payments",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(allRoles...),
	)
	g.POST("/upi/session", p.CreateUPISession)
	g.GET("/upi/qr", p.UPIQRCode)
}
