package domain

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary wire value. The upstream commerce API emits amounts
// inconsistently as JSON numbers or strings, so Amount keeps the raw text
// and defers numeric interpretation to the consumer. A malformed value is
// only detected when someone asks for its decimal form, which lets callers
// decide per record whether that is fatal.
type Amount string

var errEmptyAmount = errors.New("empty amount")

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(data)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// Decimal parses the amount as an exact decimal value.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a == "" {
		return decimal.Decimal{}, errEmptyAmount
	}
	return decimal.NewFromString(string(a))
}

// IsPresent reports whether a value was supplied at all.
func (a Amount) IsPresent() bool {
	return a != ""
}
