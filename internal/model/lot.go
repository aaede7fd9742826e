package model

import "time"

// Lot is a physical parking facility as stored in the `parking_lots`
// table.  Lots are created by seed or admin data entry and are read-only
// to the booking workflow.
//
// Fields:
//  ID         – primary key (UUID string).
//  OwnerID    – profile that operates the lot (nullable).
//  Name       – display name.
//  Address    – street address.
//  Latitude   – map coordinate.
//  Longitude  – map coordinate.
//  HourlyRate – default rate per hour; slots may override it.
//  IsActive   – only active lots are listed to customers.
//  TotalSlots – advertised slot capacity.
type Lot struct {
	ID         string    `json:"id" yaml:"id"`                   // parking_lots.id
	OwnerID    *string   `json:"owner_id,omitempty" yaml:"-"`    // parking_lots.owner_id (nullable)
	Name       string    `json:"name" yaml:"name"`               // parking_lots.name
	Address    string    `json:"address" yaml:"address"`         // parking_lots.address
	Latitude   float64   `json:"latitude" yaml:"latitude"`       // parking_lots.latitude
	Longitude  float64   `json:"longitude" yaml:"longitude"`     // parking_lots.longitude
	HourlyRate float64   `json:"hourly_rate" yaml:"hourly_rate"` // parking_lots.hourly_rate
	IsActive   bool      `json:"is_active" yaml:"is_active"`     // parking_lots.is_active
	TotalSlots int       `json:"total_slots" yaml:"total_slots"` // parking_lots.total_slots
	CreatedAt  time.Time `json:"created_at" yaml:"-"`            // parking_lots.created_at
	UpdatedAt  time.Time `json:"updated_at" yaml:"-"`            // parking_lots.updated_at
}

// LotAggregates are derived per lot from the full, unfiltered slot set.
type LotAggregates struct {
	AvailableCount int  `json:"available_slots" yaml:"available_slots"`
	HasEV          bool `json:"has_ev" yaml:"has_ev"`
	HasCovered     bool `json:"has_covered" yaml:"has_covered"`
	HasAccessible  bool `json:"has_accessible" yaml:"has_accessible"`
}

// LotSummary is a lot together with its derived aggregates, the shape
// returned by the catalog listing.
type LotSummary struct {
	Lot           `yaml:",inline"`
	LotAggregates `yaml:",inline"`
}
