package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/repository"
)

const (
	testUser = "0b1c2d3e-4f50-4617-8293-a4b5c6d7e8f9"
	lotID    = "8f14e45f-ceea-467a-9b36-1a2b3c4d5e6f"
	slotID   = "45c48cce-2e2d-4fbd-8a6c-0a1b2c3d4e5f"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

// newCtx builds a request context.  A non-empty userID mimics JWTAuth.
func newCtx(e *echo.Echo, method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ----- profile and token fakes -----

type fakeProfiles struct {
	byEmail   map[string]model.Profile
	createErr error
	created   []string // roles
	updated   *repository.ProfileUpdate
	passwords map[string]string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byEmail: map[string]model.Profile{}, passwords: map[string]string{}}
}

func (f *fakeProfiles) Create(_ context.Context, email, _ string, role string, _ *string, _ int) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, role)
	id := testUser
	f.byEmail[email] = model.Profile{ID: id, Email: email, Role: role}
	return id, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (model.Profile, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return model.Profile{}, errNoRows
	}
	return p, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (model.Profile, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, errNoRows
}

func (f *fakeProfiles) Update(_ context.Context, id string, u repository.ProfileUpdate) (model.Profile, error) {
	f.updated = &u
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, repository.ErrNotFound
}

func (f *fakeProfiles) SetPassword(_ context.Context, id, password string, _ int) error {
	f.passwords[id] = password
	return nil
}

type fakeTokens struct {
	refresh    map[string]string // hash -> user
	resets     map[string]string // hash -> user
	revokedAll []string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{refresh: map[string]string{}, resets: map[string]string{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID, hash string, _ time.Time) error {
	f.refresh[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
	uid, ok := f.refresh[hash]
	if !ok {
		return "", errNoRows
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.refresh, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

func (f *fakeTokens) StoreReset(_ context.Context, userID, hash string, _ time.Time) error {
	f.resets[hash] = userID
	return nil
}

func (f *fakeTokens) ConsumeReset(_ context.Context, hash string) (string, error) {
	uid, ok := f.resets[hash]
	if !ok {
		return "", errNoRows
	}
	delete(f.resets, hash)
	return uid, nil
}

type fakeMailer struct {
	configured bool
	to, token  string
}

func (m *fakeMailer) Configured() bool { return m.configured }

func (m *fakeMailer) SendPasswordReset(to, token string) error {
	m.to, m.token = to, token
	return nil
}


var errNoRows = sql.ErrNoRows
