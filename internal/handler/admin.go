package handler

// Admin handlers back the operator console: recent lots, slots and
// bookings, plus the two availability actions.  Routes are restricted to
// the admin role by middleware.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parkseva/internal/booking"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/repository"
)

const (
	adminLotLimit     = 50
	adminSlotLimit    = 100
	adminBookingLimit = 50
)

// LotLister lists lots regardless of their active flag.
type LotLister interface {
	List(ctx context.Context, limit int) ([]model.Lot, error)
}

// SlotAdmin is the slot store as seen by the admin console.
type SlotAdmin interface {
	List(ctx context.Context, limit int) ([]model.Slot, error)
	ToggleAvailability(ctx context.Context, id string) (bool, error)
	MarkUnavailable(ctx context.Context, id string) error
}

// AdminHandler groups the stores used by the admin console.
type AdminHandler struct {
	Lots     LotLister
	Slots    SlotAdmin
	Bookings BookingReader
}

func NewAdminHandler(lots LotLister, slots SlotAdmin, bookings BookingReader) *AdminHandler {
	if lots == nil || slots == nil || bookings == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Lots: lots, Slots: slots, Bookings: bookings}
}

// ListLots handles GET /v1/admin/lots.
func (h *AdminHandler) ListLots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lots, err := h.Lots.List(ctx, adminLotLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if lots == nil {
		lots = []model.Lot{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lots})
}

// ListSlots handles GET /v1/admin/slots; each slot carries its lot name.
func (h *AdminHandler) ListSlots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.List(ctx, adminSlotLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// ListBookings handles GET /v1/admin/bookings?channel=.  The channel
// filter runs after the query so stores without the optional payment
// columns still answer.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Bookings.ListRecent(ctx, adminBookingLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": booking.FilterByChannel(rows, c.QueryParam("channel"))})
}

// ToggleSlot handles PATCH /v1/admin/slots/:id/availability.
func (h *AdminHandler) ToggleSlot(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now, err := h.Slots.ToggleAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	logger.InfoLogger.WithFields(logrus.Fields{"slot_id": id, "available": now, "by": middleware.UserID(c)}).Info("admin: slot toggled")
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_available": now})
}

// MaintainSlot handles POST /v1/admin/slots/:id/maintenance.
func (h *AdminHandler) MaintainSlot(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Slots.MarkUnavailable(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	logger.InfoLogger.WithFields(logrus.Fields{"slot_id": id, "by": middleware.UserID(c)}).Info("admin: slot under maintenance")
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_available": false})
}
