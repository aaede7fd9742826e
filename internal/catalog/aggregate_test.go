package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/parkseva/internal/model"
)

func summaries() []model.LotSummary {
	return []model.LotSummary{
		{Lot: model.Lot{ID: "1", Name: "Phoenix Marketcity", Address: "Viman Nagar", HourlyRate: 40},
			LotAggregates: model.LotAggregates{AvailableCount: 5, HasEV: true, HasCovered: true}},
		{Lot: model.Lot{ID: "2", Name: "FC Road", Address: "Shivajinagar", HourlyRate: 35},
			LotAggregates: model.LotAggregates{AvailableCount: 12, HasAccessible: true}},
		{Lot: model.Lot{ID: "3", Name: "Shivajinagar Multi-level", Address: "Pune", HourlyRate: 30},
			LotAggregates: model.LotAggregates{AvailableCount: 1, HasEV: true, HasAccessible: true}},
	}
}

func ids(lots []model.LotSummary) []string {
	out := make([]string, len(lots))
	for i, l := range lots {
		out[i] = l.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"1", "2", "3"}},
		{"search matches name and address", Criteria{Query: "shivaji"}, []string{"2", "3"}},
		{"ev", Criteria{EV: true}, []string{"1", "3"}},
		{"ev and accessible", Criteria{EV: true, Accessible: true}, []string{"3"}},
		{"covered", Criteria{Covered: true}, []string{"1"}},
		{"sort by price", Criteria{Sort: "price"}, []string{"3", "2", "1"}},
		{"sort by availability", Criteria{Sort: "availability"}, []string{"2", "1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(summaries(), tt.c)))
		})
	}
}

func TestPadGrid(t *testing.T) {
	lot := model.Lot{ID: "lot", Name: "Lot", HourlyRate: 20}
	assert.Empty(t, PadGrid(lot, nil, 0))

	full := make([]model.Slot, 4)
	assert.Len(t, PadGrid(lot, full, 3), 4)

	got := PadGrid(lot, []model.Slot{{ID: "real"}}, 3)
	assert.Equal(t, []string{"real", "filler-lot-2", "filler-lot-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "F-03", got[2].SlotNumber)
	assert.Equal(t, 20.0, got[2].PricePerHour)
	assert.True(t, got[2].IsAvailable)
}

func TestParseFillerID(t *testing.T) {
	lotID, n, ok := parseFillerID("filler-demo-lot-1-12")
	assert.True(t, ok)
	assert.Equal(t, "demo-lot-1", lotID)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"demo-slot-1", "filler-", "filler-x-y", "filler-7", "filler-x-0"} {
		_, _, ok := parseFillerID(bad)
		assert.False(t, ok, bad)
	}
}
