package models

import (
	"time"
)

// LogType identifies what an entry tracks.
type LogType string

const (
	// Water entries record a drunk volume.
	Water LogType = "water"
	// Plastic entries record plastic consumption.
	Plastic LogType = "plastic"
)

// Valid reports whether t is a known log type.
func (t LogType) Valid() bool {
	return t == Water || t == Plastic
}

// Unit is a volume unit accepted in entry payloads.
type Unit string

const (
	Millilitre Unit = "ml"
	Ounce      Unit = "oz"
	Litre      Unit = "L"
	Gallon     Unit = "gal"
)

// millilitres per unit
var unitFactors = map[Unit]float64{
	Millilitre: 1,
	Ounce:      29.5735,
	Litre:      1000,
	Gallon:     3785.41,
}

// Valid reports whether u is a known unit. The empty unit is valid and means ml.
func (u Unit) Valid() bool {
	if u == "" {
		return true
	}
	_, ok := unitFactors[u]
	return ok
}

// ToMillilitres converts amount expressed in u to millilitres.
func (u Unit) ToMillilitres(amount float64) float64 {
	f, ok := unitFactors[u]
	if !ok {
		return amount
	}
	return amount * f
}

// Data is the payload of a tracking entry. Which fields are meaningful
// depends on the entry's LogType: water uses Amount and Unit, plastic uses
// Amount and optionally Items.
type Data struct {
	Amount *float64       `json:"amount" validate:"required,gte=0,lte=1000000"`
	Unit   Unit           `json:"unit,omitempty" validate:"omitempty,oneof=ml oz L gal"`
	Notes  string         `json:"notes,omitempty" validate:"max=500"`
	Items  map[string]int `json:"items,omitempty" validate:"omitempty,dive,keys,min=1,max=64,endkeys,gte=0"`
}

// AmountValue returns the amount, or 0 when absent.
func (d Data) AmountValue() float64 {
	if d.Amount == nil {
		return 0
	}
	return *d.Amount
}

// Quantity is the number aggregated for an entry of type t: millilitres
// for water, the raw amount for plastic.
func (d Data) Quantity(t LogType) float64 {
	if t == Water {
		return d.Unit.ToMillilitres(d.AmountValue())
	}
	return d.AmountValue()
}

// Entry is a single persisted tracking record.
type Entry struct {
	ID      string  `json:"id"`
	UserID  string  `json:"userId"`
	LogType LogType `json:"logType"`
	Data    Data    `json:"data"`
	// Amount is the derived quantity used by aggregations.
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatedEntry is the summary returned after creating an entry.
type CreatedEntry struct {
	ID     string    `json:"id"`
	Type   LogType   `json:"type"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// RankEntry is one row of the daily water ranking.
type RankEntry struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	TotalAmount float64 `json:"totalAmount"`
}
