package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/notify"
)

// NotifyHandler proxies ad-hoc messages to the SMS and WhatsApp providers
// so credentials never reach the browser.
type NotifyHandler struct {
	SMS      notify.Sender
	WhatsApp notify.Sender
}

func NewNotifyHandler(sms, whatsapp notify.Sender) *NotifyHandler {
	if sms == nil || whatsapp == nil {
		panic("nil sender passed to NewNotifyHandler")
	}
	return &NotifyHandler{SMS: sms, WhatsApp: whatsapp}
}

type sendReq struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendSMS handles POST /functions/v1/send-sms.
func (h *NotifyHandler) SendSMS(c echo.Context) error { return h.send(c, h.SMS, "sms") }

// SendWhatsApp handles POST /functions/v1/send-whatsapp.
func (h *NotifyHandler) SendWhatsApp(c echo.Context) error {
	return h.send(c, h.WhatsApp, "whatsapp")
}

func (h *NotifyHandler) send(c echo.Context, s notify.Sender, channel string) error {
	if c.Request().Method != http.MethodPost {
		return methodNotAllowed(c)
	}
	var req sendReq
	_ = c.Bind(&req)
	req.To, req.Message = strings.TrimSpace(req.To), strings.TrimSpace(req.Message)
	if req.To == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to and message required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := s.Send(ctx, req.To, req.Message)
	if err != nil {
		logger.ErrorLogger.WithError(err).WithField("channel", channel).Error("notify proxy")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "result": result})
}
