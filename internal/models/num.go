// Package models defines data structures for vire-valuation
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Num is an optional number. The zero value is missing, which is distinct
// from a valid zero.
type Num struct {
	Value float64
	Valid bool
}

// Missing is the absent number.
var Missing = Num{}

// Some returns a valid Num. NaN and infinities are treated as missing.
func Some(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Num{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (n Num) Get() (float64, bool) {
	return n.Value, n.Valid
}

// IsMissing reports whether no value is present.
func (n Num) IsMissing() bool {
	return !n.Valid
}

// Or returns the value, or def when missing.
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Ptr returns a pointer to the value, nil when missing.
func (n Num) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// NumFromPtr converts a nullable float into a Num.
func NumFromPtr(p *float64) Num {
	if p == nil {
		return Missing
	}
	return Some(*p)
}

// MarshalJSON writes null for a missing value.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (n *Num) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}
