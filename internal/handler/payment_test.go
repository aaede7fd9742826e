package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parkseva/internal/payment"
)

type fakeGateway struct {
	minor int64
	err   error
}

func (g *fakeGateway) Name() string { return payment.ChannelStripe }

func (g *fakeGateway) CreateSession(_ context.Context, amountMinor int64) (payment.Session, error) {
	g.minor = amountMinor
	if g.err != nil {
		return payment.Session{}, g.err
	}
	return payment.Session{ClientSecret: "pi_1_secret_x", ID: "pi_1"}, nil
}

func (g *fakeGateway) Verify(context.Context, payment.Confirmation) (string, error) {
	return "pi_1", nil
}

func wallet() *payment.UPIInitiator { return payment.NewUPIInitiator("parkseva@upi", "ParkSeva", 0) }

func TestCreatePaymentIntent(t *testing.T) {
	gw := &fakeGateway{}
	h := NewPaymentHandler(gw, wallet())
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/functions/v1/create-payment-intent", `{"amount":120.5}`, "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "pi_1_secret_x", body["clientSecret"])
	assert.Equal(t, "pi_1", body["paymentIntentId"])
	assert.Equal(t, int64(12050), gw.minor)

	c, _ = newCtx(e, http.MethodPost, "/", `{"amount":0.2}`, "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	assert.Equal(t, int64(50), gw.minor, "provider minimum")

	gw.minor = 0
	c, rec = newCtx(e, http.MethodPost, "/", `{"amount":0}`, "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	assert.Equal(t, http.StatusOK, rec.Code, "free slot still opens a session")
	assert.Equal(t, int64(50), gw.minor)

	c, rec = newCtx(e, http.MethodGet, "/", "", "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	c, rec = newCtx(e, http.MethodPost, "/", `{"amount":"lots"}`, "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, body := range []string{`{"amount":-1}`, `{"amount":1e17}`, `{"amount":1e300}`} {
		gw.minor = 0
		c, rec = newCtx(e, http.MethodPost, "/", body, "", "")
		require.NoError(t, h.CreatePaymentIntent(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Zero(t, gw.minor, body)
	}

	gw.err = errors.New("Invalid API Key provided")
	c, rec = newCtx(e, http.MethodPost, "/", `{"amount":10}`, "", "")
	require.NoError(t, h.CreatePaymentIntent(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Invalid API Key provided", decode(t, rec)["error"])

	c, rec = newCtx(e, http.MethodPost, "/", `{"amount":10}`, "", "")
	require.NoError(t, NewPaymentHandler(nil, wallet()).CreatePaymentIntent(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUPISessionAndQR(t *testing.T) {
	h := NewPaymentHandler(nil, wallet())
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/payments/upi/session", `{"amount":80}`, testUser, "user")
	require.NoError(t, h.CreateUPISession(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "upi://pay?pa=parkseva@upi&pn=ParkSeva&am=80", body["payload"])
	assert.Equal(t, payment.DemoNotice, body["notice"])
	png, err := base64.StdEncoding.DecodeString(body["qr_png_base64"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	c, rec = newCtx(e, http.MethodGet, "/v1/payments/upi/qr?amount=80", "", testUser, "user")
	require.NoError(t, h.UPIQRCode(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	c, rec = newCtx(e, http.MethodGet, "/v1/payments/upi/qr", "", testUser, "user")
	require.NoError(t, h.UPIQRCode(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
