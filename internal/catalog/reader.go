// Package catalog serves the lot and slot listings customers browse
// before booking.  Reads fail soft: when the store is unreachable the
// listing carries a notice and a fixed demonstration dataset.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/repository"
)

// ErrUnavailable is returned when the store failed and no fallback
// dataset is configured.
var ErrUnavailable = errors.New("catalog unavailable")

// LotStore is the lot half of the availability store.
type LotStore interface {
	ListActive(ctx context.Context, limit int) ([]model.Lot, error)
	GetByID(ctx context.Context, id string) (model.Lot, error)
}

// SlotStore is the slot half of the availability store.
type SlotStore interface {
	ListByLots(ctx context.Context, lotIDs []string) ([]model.Slot, error)
	ListAvailable(ctx context.Context, lotID string, limit int) ([]model.Slot, error)
	GetByID(ctx context.Context, id string) (model.Slot, error)
}

// LotListing is the response of ListActiveLots.
type LotListing struct {
	Items    []model.LotSummary `json:"items"`
	Fallback bool               `json:"fallback"`
	Notice   string             `json:"notice,omitempty"`
}

// SlotListing is the response of ListAvailableSlots.
type SlotListing struct {
	Items    []model.Slot `json:"items"`
	Fallback bool         `json:"fallback"`
	Notice   string       `json:"notice,omitempty"`
}

// Reader reads the catalog.  demo is nil when the fallback is disabled.
type Reader struct {
	lots     LotStore
	slots    SlotStore
	demo     *Dataset
	onEmpty  bool
	gridSize int
}

// NewReader builds a Reader.  demo may be nil.
func NewReader(lots LotStore, slots SlotStore, demo *Dataset, cfg config.CatalogConfig) *Reader {
	if lots == nil || slots == nil {
		panic("nil dependency passed to catalog.NewReader")
	}
	if !cfg.FallbackEnabled {
		demo = nil
	}
	return &Reader{lots: lots, slots: slots, demo: demo, onEmpty: cfg.FallbackOnEmpty, gridSize: cfg.GridSize}
}

// GridSize is the configured display grid size.
func (r *Reader) GridSize() int { return r.gridSize }

// ListActiveLots returns active lots with aggregates computed from all of
// their slots.  Lots and slots are two separate queries: the lot query is
// filtered on is_active, the slot query is not filtered on availability.
func (r *Reader) ListActiveLots(ctx context.Context, limit int) (LotListing, error) {
	lots, err := r.lots.ListActive(ctx, limit)
	if err != nil {
		return r.lotFallback(err)
	}
	if len(lots) == 0 {
		if r.onEmpty && r.demo != nil {
			return LotListing{Items: r.demo.lots(), Fallback: true, Notice: r.demo.EmptyNotice}, nil
		}
		return LotListing{Items: []model.LotSummary{}}, nil
	}
	ids := make([]string, len(lots))
	for i, l := range lots {
		ids[i] = l.ID
	}
	slots, err := r.slots.ListByLots(ctx, ids)
	if err != nil {
		return r.lotFallback(err)
	}
	return LotListing{Items: Summarize(lots, slots)}, nil
}

func (r *Reader) lotFallback(cause error) (LotListing, error) {
	if r.demo == nil {
		return LotListing{Items: []model.LotSummary{}}, fmt.Errorf("%w: %v", ErrUnavailable, cause)
	}
	logger.ErrorLogger.WithError(cause).Warn("catalog: lot read failed, serving demo lots")
	return LotListing{Items: r.demo.lots(), Fallback: true, Notice: r.demo.Notice}, nil
}

// ListAvailableSlots returns the bookable slots of lotID.  Demo lots are
// answered from the dataset without touching the store; a store failure
// or an empty result falls back to the demo slots of that lot, if any.
func (r *Reader) ListAvailableSlots(ctx context.Context, lotID string) (SlotListing, error) {
	if r.demo != nil {
		if _, ok := r.demo.Lot(lotID); ok {
			return SlotListing{Items: r.demo.SlotsForLot(lotID), Fallback: true}, nil
		}
	}
	slots, err := r.slots.ListAvailable(ctx, lotID, repository.MaxBookableSlots)
	if err != nil {
		if r.demo == nil {
			return SlotListing{Items: []model.Slot{}}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		logger.ErrorLogger.WithError(err).WithField("lot_id", lotID).Warn("catalog: slot read failed, serving demo slots")
		return SlotListing{Items: r.demo.SlotsForLot(lotID), Fallback: true, Notice: r.demo.Notice}, nil
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return SlotListing{Items: slots}, nil
}

// Grid returns a lot's bookable slots padded with fillers up to size.
func (r *Reader) Grid(ctx context.Context, lotID string, size int) (SlotListing, error) {
	listing, err := r.ListAvailableSlots(ctx, lotID)
	if err != nil {
		return listing, err
	}
	lot, err := r.lot(ctx, lotID)
	if err != nil {
		return listing, err
	}
	if size <= 0 {
		size = r.gridSize
	}
	listing.Items = PadGrid(lot, listing.Items, size)
	return listing, nil
}

// ResolveSlot finds a slot by id: a persisted slot (UUID), a demo slot, or
// a filler slot priced at its lot's rate.
func (r *Reader) ResolveSlot(ctx context.Context, id string) (model.Slot, error) {
	if _, err := uuid.Parse(id); err == nil {
		return r.slots.GetByID(ctx, id)
	}
	if r.demo != nil {
		if s, ok := r.demo.Slot(id); ok {
			return s, nil
		}
	}
	lotID, n, ok := parseFillerID(id)
	if !ok {
		return model.Slot{}, repository.ErrNotFound
	}
	lot, err := r.lot(ctx, lotID)
	if err != nil {
		return model.Slot{}, err
	}
	return filler(lot, n), nil
}

func (r *Reader) lot(ctx context.Context, id string) (model.Lot, error) {
	if r.demo != nil {
		if l, ok := r.demo.Lot(id); ok {
			return l.Lot, nil
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.Lot{}, repository.ErrNotFound
	}
	return r.lots.GetByID(ctx, id)
}

const fillerPrefix = "filler-"

func fillerID(lotID string, n int) string {
	return fillerPrefix + lotID + "-" + strconv.Itoa(n)
}

func parseFillerID(id string) (lotID string, n int, ok bool) {
	rest, found := strings.CutPrefix(id, fillerPrefix)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndexByte(rest, '-')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(rest[i+1:])
	if err != nil || n <= 0 {
		return "", 0, false
	}
	return rest[:i], n, true
}
