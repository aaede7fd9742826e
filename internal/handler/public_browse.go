// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public catalog API: lots with their availability
// aggregates, bookable slots, the padded slot grid and price quotes.  None
// of these routes require authentication.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/catalog"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/pricing"
	"github.com/iliyamo/parkseva/internal/repository"
)

const defaultLotLimit = 50

// PublicHandler serves the catalog to unauthenticated users.
type PublicHandler struct {
	Catalog *catalog.Reader
}

func NewPublicHandler(r *catalog.Reader) *PublicHandler {
	if r == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Catalog: r}
}

// QuoteResponse prices a slot for a time window.
type QuoteResponse struct {
	SlotID       string    `json:"slot_id"`
	Start        time.Time `json:"start_time"`
	End          time.Time `json:"end_time"`
	Hours        int       `json:"hours"`
	PricePerHour float64   `json:"price_per_hour"`
	Amount       float64   `json:"amount"`
}

func markFallback(c echo.Context, fallback bool) {
	if fallback {
		c.Response().Header().Set(middleware.HeaderFallback, "1")
	}
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// GetLots lists active lots.  Query params: q, ev, covered, accessible,
// sort (price|availability) and limit.
func (h *PublicHandler) GetLots(c echo.Context) error {
	limit := defaultLotLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listing, err := h.Catalog.ListActiveLots(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog unavailable", "items": listing.Items})
	}
	listing.Items = catalog.Filter(listing.Items, catalog.Criteria{
		Query:      c.QueryParam("q"),
		EV:         queryBool(c, "ev"),
		Covered:    queryBool(c, "covered"),
		Accessible: queryBool(c, "accessible"),
		Sort:       c.QueryParam("sort"),
	})
	markFallback(c, listing.Fallback)
	return c.JSON(http.StatusOK, listing)
}

// GetSlots lists the bookable slots of a lot.
func (h *PublicHandler) GetSlots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listing, err := h.Catalog.ListAvailableSlots(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog unavailable", "items": listing.Items})
	}
	markFallback(c, listing.Fallback)
	return c.JSON(http.StatusOK, listing)
}

// GetGrid lists a lot's bookable slots padded to ?size= (default from
// configuration) for the slot picker.
func (h *PublicHandler) GetGrid(c echo.Context) error {
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size > repository.MaxBookableSlots {
		size = repository.MaxBookableSlots
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listing, err := h.Catalog.Grid(ctx, c.Param("id"), size)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		case errors.Is(err, catalog.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog unavailable", "items": listing.Items})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	markFallback(c, listing.Fallback)
	return c.JSON(http.StatusOK, listing)
}

// GetQuote prices ?slot_id= between ?start= and ?end= (RFC 3339).
func (h *PublicHandler) GetQuote(c echo.Context) error {
	slotID := c.QueryParam("slot_id")
	start, err1 := time.Parse(time.RFC3339, c.QueryParam("start"))
	end, err2 := time.Parse(time.RFC3339, c.QueryParam("end"))
	if slotID == "" || err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id, start and end (RFC3339) required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Catalog.ResolveSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, QuoteResponse{
		SlotID:       slot.ID,
		Start:        start,
		End:          end,
		Hours:        pricing.Hours(start, end),
		PricePerHour: slot.PricePerHour,
		Amount:       pricing.Quote(start, end, slot.PricePerHour),
	})
}
