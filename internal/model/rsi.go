package model

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// RSIValue is an RSI reading in [0, 100]. The zero value is undefined.
type RSIValue struct {
	value   float64
	defined bool
}

// UndefinedRSI is returned when the price history is too short or the math is indeterminate.
var UndefinedRSI = RSIValue{}

// NewRSIValue wraps v as a defined reading. NaN and infinities map to UndefinedRSI.
func NewRSIValue(v float64) RSIValue {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return UndefinedRSI
	}
	return RSIValue{value: v, defined: true}
}

// Defined reports whether the reading carries a value.
func (r RSIValue) Defined() bool { return r.defined }

// Value returns the full precision reading and whether it is defined.
func (r RSIValue) Value() (float64, bool) { return r.value, r.defined }

// Rounded returns the reading rounded to 2 decimal places for display.
// It returns 0 for an undefined reading.
func (r RSIValue) Rounded() float64 {
	if !r.defined {
		return 0
	}
	f, _ := decimal.NewFromFloat(r.value).Round(2).Float64()
	return f
}

// Display returns the reading as the rounded value wrapped in a new RSIValue.
func (r RSIValue) Display() RSIValue {
	if !r.defined {
		return r
	}
	return RSIValue{value: r.Rounded(), defined: true}
}

func (r RSIValue) String() string {
	if !r.defined {
		return "undefined"
	}
	return decimal.NewFromFloat(r.value).StringFixed(2)
}

// MarshalJSON encodes an undefined reading as null.
func (r RSIValue) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.Rounded(), 'f', 2, 64), nil
}
