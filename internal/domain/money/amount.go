package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a value cannot be read as a decimal amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a decimal money value stored in cents.
// The backend sends decimals either as JSON strings ("25.00") or numbers (25).
type Amount struct {
	Cents int64
}

// FromFloat rounds v to the nearest cent.
func FromFloat(v float64) Amount {
	return Amount{Cents: int64(math.Round(v * 100))}
}

// Parse reads a decimal string such as "25", "25.5" or "25.00".
// PRE: none
// POST: Returns ErrInvalidAmount for anything that is not a finite decimal
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, ErrInvalidAmount
	}
	return FromFloat(f), nil
}

// Float returns the amount in currency units.
func (a Amount) Float() float64 {
	return float64(a.Cents) / 100
}

// String formats the amount with two decimals ("25.00").
func (a Amount) String() string {
	sign := ""
	c := a.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Display formats the amount for pages ("$25.00").
func (a Amount) Display() string {
	return "$" + a.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string, number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	*a = parsed
	return nil
}
