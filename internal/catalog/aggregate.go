package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/parkseva/internal/model"
)

// Summarize joins lots with their slots by lot id and derives the
// aggregates.  slots must be the unfiltered slot set; unavailable slots
// still count toward HasEV, HasCovered and HasAccessible.
func Summarize(lots []model.Lot, slots []model.Slot) []model.LotSummary {
	byLot := make(map[string]*model.LotAggregates, len(lots))
	for _, l := range lots {
		byLot[l.ID] = &model.LotAggregates{}
	}
	for _, s := range slots {
		agg, ok := byLot[s.LotID]
		if !ok {
			continue
		}
		if s.IsAvailable {
			agg.AvailableCount++
		}
		if s.EVSupported != "" && s.EVSupported != model.EVNone {
			agg.HasEV = true
		}
		agg.HasCovered = agg.HasCovered || s.IsCovered
		agg.HasAccessible = agg.HasAccessible || s.IsAccessible
	}
	out := make([]model.LotSummary, len(lots))
	for i, l := range lots {
		out[i] = model.LotSummary{Lot: l, LotAggregates: *byLot[l.ID]}
	}
	return out
}

// Criteria narrows and orders a lot listing.
type Criteria struct {
	Query      string // case-insensitive match on name or address
	EV         bool
	Covered    bool
	Accessible bool
	Sort       string // "price", "availability" or "" (store order)
}

// Filter applies c to lots and returns a new slice.
func Filter(lots []model.LotSummary, c Criteria) []model.LotSummary {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	out := make([]model.LotSummary, 0, len(lots))
	for _, l := range lots {
		if q != "" && !strings.Contains(strings.ToLower(l.Name), q) && !strings.Contains(strings.ToLower(l.Address), q) {
			continue
		}
		if (c.EV && !l.HasEV) || (c.Covered && !l.HasCovered) || (c.Accessible && !l.HasAccessible) {
			continue
		}
		out = append(out, l)
	}
	switch c.Sort {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyRate < out[j].HourlyRate })
	case "availability":
		sort.SliceStable(out, func(i, j int) bool { return out[i].AvailableCount > out[j].AvailableCount })
	}
	return out
}

// PadGrid fills a sparse lot's display grid with synthesized slots up to
// size.  Fillers are available, priced at the lot rate and never stored.
func PadGrid(lot model.Lot, slots []model.Slot, size int) []model.Slot {
	out := append([]model.Slot(nil), slots...)
	for n := len(slots) + 1; n <= size; n++ {
		out = append(out, filler(lot, n))
	}
	if out == nil {
		out = []model.Slot{}
	}
	return out
}

func filler(lot model.Lot, n int) model.Slot {
	return model.Slot{
		ID:           fillerID(lot.ID, n),
		LotID:        lot.ID,
		LotName:      lot.Name,
		SlotNumber:   fmt.Sprintf("F-%02d", n),
		PricePerHour: lot.HourlyRate,
		IsAvailable:  true,
		EVSupported:  model.EVNone,
	}
}
