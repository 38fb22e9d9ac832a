package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidWeight indicates a weight field held something other than a
// non-negative number.
var ErrInvalidWeight = errors.New("invalid weight")

// Derivation holds the values computed from the weight and rate inputs.
type Derivation struct {
	NetKg float64 `json:"netKg"`
	Price int64   `json:"price"`
	// Alarm is set when the alarm preference is on and loaded < empty.
	Alarm bool `json:"alarm"`
	// NetNegative is set when both weights are present and loaded < empty.
	NetNegative bool `json:"netNegative"`
}

// NetWeight returns loaded minus empty, floored at zero.
func NetWeight(loaded, empty float64) float64 {
	return math.Max(0, loaded-empty)
}

// Derive computes net weight, price and the alarm condition. Blank weights
// count as zero.
func Derive(loaded, empty *float64, rate Rate, alarmEnabled bool) Derivation {
	l, e := valueOrZero(loaded), valueOrZero(empty)
	return Derivation{
		NetKg:       NetWeight(l, e),
		Price:       int64(rate),
		Alarm:       alarmEnabled && l < e,
		NetNegative: loaded != nil && empty != nil && l < e,
	}
}

// ParseWeight converts a form value into kilograms. Thousands separators are
// ignored and a blank value yields nil.
func ParseWeight(raw string) (*float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, ErrInvalidWeight
	}
	return &v, nil
}
