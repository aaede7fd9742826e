package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parkseva/internal/catalog"
	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/notify"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/utils"
)

const secret = "test-secret"

var errDown = errors.New("store down")

// downStore fails every read, which is enough to exercise routing and the
// catalog fallback.
type downStore struct{}

func (downStore) ListActive(context.Context, int) ([]model.Lot, error) { return nil, errDown }
func (downStore) GetByID(context.Context, string) (model.Lot, error) { return model.Lot{}, errDown }
func (downStore) List(context.Context, int) ([]model.Lot, error) { return nil, errDown }
func (downStore) ListRecent(context.Context, int) ([]model.Booking, error) { return nil, errDown }
func (downStore) ListByUser(context.Context, string) ([]model.Booking, error) { return nil, errDown }
func (downStore) GetForUser(context.Context, string, string) (model.Booking, error) {
	return model.Booking{}, errDown
}

type downSlots struct{}

func (downSlots) ListByLots(context.Context, []string) ([]model.Slot, error) { return nil, errDown }
func (downSlots) ListAvailable(context.Context, string, int) ([]model.Slot, error) { return nil, errDown }
func (downSlots) GetByID(context.Context, string) (model.Slot, error) { return model.Slot{}, errDown }
func (downSlots) List(context.Context, int) ([]model.Slot, error) { return nil, errDown }
func (downSlots) ToggleAvailability(context.Context, string) (bool, error) { return false, errDown }
func (downSlots) MarkUnavailable(context.Context, string) error { return errDown }

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger.Discard()
	demo, err := catalog.LoadDataset("")
	require.NoError(t, err)
	reader := catalog.NewReader(downStore{}, downSlots{}, demo, config.CatalogConfig{FallbackEnabled: true, GridSize: 30})

	e := New(nil)
	RegisterRoutes(e, okPinger{})
	RegisterPublic(e, handler.NewPublicHandler(reader), nil)
	RegisterAdmin(e, handler.NewAdminHandler(downStore{}, downSlots{}, downStore{}), secret)
	payments := handler.NewPaymentHandler(nil, payment.NewUPIInitiator("parkseva@upi", "ParkSeva", 0))
	sender := notify.NewSMSSender(config.NotifyConfig{})
	RegisterFunctions(e, payments, handler.NewNotifyHandler(sender, notify.NewWhatsAppSender(config.NotifyConfig{})))
	RegisterPayments(e, payments, secret)
	return e
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)
	user, err := utils.NewAccessToken(secret, "u-1", model.RoleUser, 5)
	require.NoError(t, err)

	rec := do(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"up"}`, rec.Body.String())

	rec = do(srv, http.MethodGet, "/v1/lots", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Catalog-Fallback"))

	assert.Equal(t, http.StatusUnauthorized, do(srv, http.MethodGet, "/v1/admin/bookings", "").Code)
	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodGet, "/v1/admin/bookings", user.Token).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, do(srv, http.MethodGet, "/functions/v1/create-payment-intent", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(srv, http.MethodPut, "/functions/v1/send-sms", "").Code)

	assert.Equal(t, http.StatusUnauthorized, do(srv, http.MethodGet, "/v1/payments/upi/qr?amount=10", "").Code)
	rec = do(srv, http.MethodGet, "/v1/payments/upi/qr?amount=10", user.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
