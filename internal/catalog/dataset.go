package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/parkseva/internal/model"
)

//go:embed demo.yaml
var embeddedDataset []byte

// Dataset is the demonstration catalog.  Its ids are not UUIDs, so a
// booking against a demo slot never reaches the store.
type Dataset struct {
	Notice      string             `yaml:"notice"`
	EmptyNotice string             `yaml:"empty_notice"`
	Lots        []model.LotSummary `yaml:"lots"`
	Slots       []model.Slot       `yaml:"slots"`
}

// LoadDataset reads the dataset from path, or the embedded default when
// path is empty.
func LoadDataset(path string) (*Dataset, error) {
	raw := embeddedDataset
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog fallback: %w", err)
		}
		raw = b
	}
	return ParseDataset(raw)
}

// ParseDataset decodes a YAML dataset.  Every slot must belong to a lot of
// the same dataset.
func ParseDataset(raw []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse catalog fallback: %w", err)
	}
	if len(d.Lots) == 0 {
		return nil, errors.New("catalog fallback has no lots")
	}
	for _, s := range d.Slots {
		if _, ok := d.Lot(s.LotID); !ok {
			return nil, fmt.Errorf("catalog fallback slot %s references unknown lot %s", s.ID, s.LotID)
		}
	}
	return &d, nil
}

func (d *Dataset) Lot(id string) (model.LotSummary, bool) {
	for _, l := range d.Lots {
		if l.ID == id {
			return l, true
		}
	}
	return model.LotSummary{}, false
}

func (d *Dataset) Slot(id string) (model.Slot, bool) {
	for _, s := range d.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return model.Slot{}, false
}

// SlotsForLot returns the demo slots of one lot; never nil.
func (d *Dataset) SlotsForLot(lotID string) []model.Slot {
	out := []model.Slot{}
	for _, s := range d.Slots {
		if s.LotID == lotID {
			out = append(out, s)
		}
	}
	return out
}

// lots returns a copy callers may reorder.
func (d *Dataset) lots() []model.LotSummary {
	return append([]model.LotSummary(nil), d.Lots...)
}
