package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/pricing"
)

// PaymentHandler exposes the hosted-gateway session proxy and the
// simulated UPI wallet helpers.
type PaymentHandler struct {
	Gateway payment.Gateway // nil when no gateway is configured
	Wallet  *payment.UPIInitiator
}

func NewPaymentHandler(gw payment.Gateway, wallet *payment.UPIInitiator) *PaymentHandler {
	if wallet == nil {
		panic("nil wallet passed to NewPaymentHandler")
	}
	return &PaymentHandler{Gateway: gw, Wallet: wallet}
}

type amountReq struct {
	Amount float64 `json:"amount"`
}

func methodNotAllowed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)
	return c.JSON(http.StatusMethodNotAllowed, echo.Map{"error": "method not allowed"})
}

// CreatePaymentIntent handles POST /functions/v1/create-payment-intent.
// The body carries a rupee amount; the gateway is charged in paise with
// the provider minimum applied.
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return methodNotAllowed(c)
	}
	var req amountReq
	if err := c.Bind(&req); err != nil || req.Amount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount is required"})
	}
	minor, err := pricing.MinorUnits(req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if h.Gateway == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": payment.ErrNoGateway.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sess, err := h.Gateway.CreateSession(ctx, minor)
	if err != nil {
		logger.ErrorLogger.WithError(err).WithField("gateway", h.Gateway.Name()).Error("create payment intent")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sess)
}

// UPISession is what the wallet screen renders.
type UPISession struct {
	Payee     string  `json:"payee"`
	PayeeName string  `json:"payee_name"`
	Amount    float64 `json:"amount"`
	Payload   string  `json:"payload"`
	QRCode    string  `json:"qr_png_base64"`
	Notice    string  `json:"notice"`
}

// CreateUPISession handles POST /v1/payments/upi/session.
func (h *PaymentHandler) CreateUPISession(c echo.Context) error {
	var req amountReq
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount is required"})
	}
	png, err := h.Wallet.QR(req.Amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr generation failed"})
	}
	return c.JSON(http.StatusOK, UPISession{
		Payee:     h.Wallet.Payee,
		PayeeName: h.Wallet.PayeeName,
		Amount:    req.Amount,
		Payload:   h.Wallet.Payload(req.Amount),
		QRCode:    base64.StdEncoding.EncodeToString(png),
		Notice:    payment.DemoNotice,
	})
}

// UPIQRCode handles GET /v1/payments/upi/qr?amount= and returns a PNG.
func (h *PaymentHandler) UPIQRCode(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil || amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount is required"})
	}
	png, err := h.Wallet.QR(amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr generation failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
