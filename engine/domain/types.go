// Package domain defines the sports-car record types, the make/model
// enumerations derived from a loaded dataset, and the dataset error types.
package domain

import "fmt"

// Make is a car manufacturer as it appears in the dataset ("Audi", "BMW").
// The zero value means "no make selected".
type Make string

// Model is a car model name as it appears in the dataset ("R8", "M3").
// The zero value means "no model selected".
type Model string

// IsSet reports whether the make filter is active.
func (m Make) IsSet() bool { return m != "" }

// IsSet reports whether the model filter is active.
func (m Model) IsSet() bool { return m != "" }

// CarRecord is one normalized row of the sports-car table.
type CarRecord struct {
	Make         Make     `json:"make"`
	Model        Model    `json:"model"`
	Year         int      `json:"year"`
	Horsepower   *float64 `json:"horsepower"` // nil when the source value was not numeric
	PriceUSD     float64  `json:"price_usd"`
	AccelTimeSec float64  `json:"accel_time_sec"`
}

// HasHorsepower reports whether the horsepower value is present.
func (r CarRecord) HasHorsepower() bool { return r.Horsepower != nil }

// DisplayLabel returns the chart annotation for the record, e.g. "R8 (2020)".
func (r CarRecord) DisplayLabel() string {
	return fmt.Sprintf("%s (%d)", r.Model, r.Year)
}

// HP is a convenience for building records with a present horsepower value.
func HP(v float64) *float64 { return &v }
