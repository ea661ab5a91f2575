// Package repository defines the risk record store port and its backends.
package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drivefit/riskd/internal/domain/model"
)

// Store provides keyed, timestamp-ordered persistence for risk records.
type Store interface {
	// Put appends a record. Records are immutable once written.
	Put(ctx context.Context, rec model.Record) error

	// Recent returns up to limit records for userID, newest-first by the
	// record timestamp. An unknown user yields an empty slice, not an error.
	Recent(ctx context.Context, userID string, limit int) ([]model.Record, error)
}

// recordDoc is the storage document shared by every backend. Numeric values
// are stored as exact decimal strings, never as native floats, so a value
// like 98.6 round-trips unchanged.
type recordDoc struct {
	RecordID  string                `json:"record_id" dynamodbav:"record_id"`
	UserID    string                `json:"short_user_id" dynamodbav:"short_user_id"`
	Timestamp string                `json:"ts" dynamodbav:"ts"`
	DriverID  string                `json:"driver_id" dynamodbav:"driver_id"`
	Risk      string                `json:"risk" dynamodbav:"risk"`
	Health    map[string]readingDoc `json:"health_data" dynamodbav:"health_data"`
}

type readingDoc struct {
	Value     string `json:"value" dynamodbav:"value"`
	Timestamp string `json:"timestamp" dynamodbav:"timestamp"`
	Malformed bool   `json:"malformed,omitempty" dynamodbav:"malformed,omitempty"`
}

func encodeRecord(rec model.Record) recordDoc {
	health := make(map[string]readingDoc, len(rec.Health))
	for metric, r := range rec.Health {
		d := readingDoc{Timestamp: r.Timestamp, Malformed: r.Malformed}
		if !r.Unparsed {
			d.Value = r.Value.String()
		}
		health[metric] = d
	}
	return recordDoc{
		RecordID:  rec.RecordID,
		UserID:    rec.UserID,
		Timestamp: rec.Timestamp,
		DriverID:  rec.DriverID,
		Risk:      string(rec.Risk),
		Health:    health,
	}
}

func decodeRecord(doc recordDoc) (model.Record, error) {
	health := make(model.Sample, len(doc.Health))
	for metric, d := range doc.Health {
		r := model.Reading{Timestamp: d.Timestamp, Malformed: d.Malformed}
		if d.Value == "" {
			r.Unparsed = true
		} else {
			v, err := decimal.NewFromString(d.Value)
			if err != nil {
				return model.Record{}, fmt.Errorf("%w: metric %s value %q: %w", ErrCorruptRecord, metric, d.Value, err)
			}
			r.Value = v
		}
		health[metric] = r
	}
	return model.Record{
		RecordID:  doc.RecordID,
		UserID:    doc.UserID,
		Timestamp: doc.Timestamp,
		DriverID:  doc.DriverID,
		Risk:      model.Label(doc.Risk),
		Health:    health,
	}, nil
}
