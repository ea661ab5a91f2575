package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// unknownTimestamp is substituted for entries that arrive without one.
const unknownTimestamp = "unknown"

// Reading is a single vital-sign measurement. Values are kept as exact
// decimals from parse to storage; they become float64 only at the HTTP
// response boundary.
type Reading struct {
	Value     decimal.Decimal
	Timestamp string
	// Malformed marks entries that did not arrive as a [value, timestamp]
	// pair. They are tolerated and flagged, never rejected.
	Malformed bool
	// Unparsed marks entries where no numeric value could be extracted at
	// all. The rule evaluator skips these.
	Unparsed bool
}

// Sample maps a metric name (e.g. "hr", "hrv", "spo2", "rr") to its reading.
type Sample map[string]Reading

// NewReading builds a well-formed reading from an exact decimal string.
// Intended for tests and fixtures; returns an error on non-numeric input.
func NewReading(value, timestamp string) (Reading, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid reading value %q: %w", value, err)
	}
	return Reading{Value: d, Timestamp: timestamp}, nil
}

// UnmarshalJSON parses the wire shape of a health sample:
//
//	{"hr": [130, "2024-01-01T00:00:00Z"], "spo2": 97.1, ...}
//
// A [value, timestamp] pair is the well-formed shape. A bare numeric value,
// or any other shape, is tolerated and flagged Malformed with the timestamp
// substituted by "unknown". Only a non-object sample is an error.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("health data is not a mapping: %w", err)
	}
	// A JSON null unmarshals into a nil map without error; it is not a
	// mapping either.
	if raw == nil {
		return errors.New("health data is not a mapping: null")
	}

	out := make(Sample, len(raw))
	for metric, entry := range raw {
		out[metric] = parseReading(entry)
	}
	*s = out
	return nil
}

// parseReading never fails; anything unparseable degrades to a flagged
// zero-value reading.
func parseReading(entry json.RawMessage) Reading {
	var pair []json.RawMessage
	if err := json.Unmarshal(entry, &pair); err == nil && len(pair) >= 2 {
		value, verr := parseDecimal(pair[0])
		var ts string
		terr := json.Unmarshal(pair[1], &ts)
		if verr == nil && terr == nil && ts != "" {
			return Reading{Value: value, Timestamp: ts}
		}
		return Reading{Value: value, Timestamp: unknownTimestamp, Malformed: true}
	}

	// Bare value: usable, but flagged since the timestamp is missing.
	if value, err := parseDecimal(entry); err == nil {
		return Reading{Value: value, Timestamp: unknownTimestamp, Malformed: true}
	}

	return Reading{Timestamp: unknownTimestamp, Malformed: true, Unparsed: true}
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("non-numeric value %q: %w", num, err)
	}
	return d, nil
}

// MarshalJSON renders each reading back to the [value, timestamp] wire shape
// with the value converted to floating point. This is the read boundary; the
// exact decimal form never leaves the process in any other way. Entries that
// never carried a value render null instead of a fabricated zero.
func (s Sample) MarshalJSON() ([]byte, error) {
	out := make(map[string][2]interface{}, len(s))
	for metric, r := range s {
		var v interface{}
		if !r.Unparsed {
			v, _ = r.Value.Float64()
		}
		out[metric] = [2]interface{}{v, r.Timestamp}
	}
	return json.Marshal(out)
}

// MalformedCount returns the number of flagged entries in the sample.
func (s Sample) MalformedCount() int {
	n := 0
	for _, r := range s {
		if r.Malformed {
			n++
		}
	}
	return n
}
