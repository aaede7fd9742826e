package model

import "time"

// EVType enumerates the charging capability of a slot.
type EVType string

const (
	EVNone   EVType = "none"
	EVLevel1 EVType = "level1"
	EVLevel2 EVType = "level2"
	EVDCFast EVType = "dc_fast"
)

// Valid reports whether t is one of the known charging levels.
func (t EVType) Valid() bool {
	switch t {
	case EVNone, EVLevel1, EVLevel2, EVDCFast:
		return true
	}
	return false
}

// VehicleSize enumerates the preferred vehicle size stored on a profile.
type VehicleSize string

const (
	SizeCompact    VehicleSize = "compact"
	SizeStandard   VehicleSize = "standard"
	SizeLarge      VehicleSize = "large"
	SizeMotorcycle VehicleSize = "motorcycle"
)

// Valid reports whether s is one of the known sizes.
func (s VehicleSize) Valid() bool {
	switch s {
	case SizeCompact, SizeStandard, SizeLarge, SizeMotorcycle:
		return true
	}
	return false
}

// Slot is one bookable parking space within a lot (`slots` table).  The
// single IsAvailable flag is the only availability state; there is no
// version column and no hold concept.
//
// Fields:
//  ID           – primary key (UUID string, or a synthetic id for demo/filler slots).
//  LotID        – owning lot.
//  SlotNumber   – human readable label such as "W-01".
//  PricePerHour – hourly rate for this slot.
//  IsAvailable  – false once a booking has been written for the slot.
//  IsAccessible – reserved for disabled drivers.
//  IsCovered    – roofed slot.
//  EVSupported  – charging level.
//  WidthInches  – informational dimension (nullable).
//  LengthInches – informational dimension (nullable).
type Slot struct {
	ID           string    `json:"id" yaml:"id"`                                         // slots.id
	LotID        string    `json:"lot_id" yaml:"lot_id"`                                 // slots.lot_id
	SlotNumber   string    `json:"slot_number" yaml:"slot_number"`                       // slots.slot_number
	PricePerHour float64   `json:"price_per_hour" yaml:"price_per_hour"`                 // slots.price_per_hour
	IsAvailable  bool      `json:"is_available" yaml:"is_available"`                     // slots.is_available
	IsAccessible bool      `json:"is_accessible" yaml:"is_accessible"`                   // slots.is_accessible
	IsCovered    bool      `json:"is_covered" yaml:"is_covered"`                         // slots.is_covered
	EVSupported  EVType    `json:"ev_supported" yaml:"ev_supported"`                     // slots.ev_supported
	WidthInches  *int      `json:"width_inches,omitempty" yaml:"width_inches,omitempty"` // slots.width_inches
	LengthInches *int      `json:"length_inches,omitempty" yaml:"length_inches,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`

	// Joined from parking_lots when a listing needs it.
	LotName string `json:"lot_name,omitempty" yaml:"lot_name,omitempty"`
}
