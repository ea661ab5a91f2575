package repository

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/shopspring/decimal"

	"github.com/drivefit/riskd/internal/domain/model"
)

func TestRecordCodec(t *testing.T) {
	Convey("Given a record with exact decimal readings", t, func() {
		temp, err := model.NewReading("98.6", "2024-01-01T00:00:00Z")
		So(err, ShouldBeNil)
		hr, err := model.NewReading("130", "2024-01-01T00:00:00Z")
		So(err, ShouldBeNil)

		rec := model.Record{
			RecordID:  "r1",
			UserID:    "u1",
			DriverID:  "d1",
			Timestamp: "2024-01-01T00:00:00Z",
			Risk:      model.LabelHigh,
			Health:    model.Sample{"temp": temp, "hr": hr},
		}

		Convey("When encoded and decoded again", func() {
			got, err := decodeRecord(encodeRecord(rec))

			Convey("Then every field round-trips exactly", func() {
				So(err, ShouldBeNil)
				So(got.RecordID, ShouldEqual, "r1")
				So(got.Risk, ShouldEqual, model.LabelHigh)
				So(got.Health["temp"].Value.String(), ShouldEqual, "98.6")
				So(got.Health["hr"].Value.String(), ShouldEqual, "130")
			})
		})

		Convey("Then the stored document holds values as strings", func() {
			doc := encodeRecord(rec)
			So(doc.Health["temp"].Value, ShouldEqual, "98.6")
		})
	})

	Convey("Given a record with a flagged, valueless reading", t, func() {
		rec := model.Record{
			RecordID:  "r2",
			UserID:    "u1",
			Timestamp: "2024-01-01T00:00:00Z",
			Risk:      model.LabelUnknown,
			Health: model.Sample{
				"note": {Timestamp: "unknown", Malformed: true, Unparsed: true},
			},
		}

		Convey("Then the flags survive the round trip", func() {
			got, err := decodeRecord(encodeRecord(rec))
			So(err, ShouldBeNil)
			So(got.Health["note"].Malformed, ShouldBeTrue)
			So(got.Health["note"].Unparsed, ShouldBeTrue)
		})
	})

	Convey("Given a stored document with a corrupt value", t, func() {
		doc := recordDoc{
			RecordID:  "r3",
			UserID:    "u1",
			Timestamp: "2024-01-01T00:00:00Z",
			Risk:      "normal",
			Health:    map[string]readingDoc{"hr": {Value: "not-a-number", Timestamp: "t"}},
		}

		Convey("Then decoding reports corruption", func() {
			_, err := decodeRecord(doc)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrCorruptRecord), ShouldBeTrue)
		})
	})

	Convey("Given a zero decimal", t, func() {
		Convey("Then it encodes as the string 0, not empty", func() {
			rec := model.Record{
				Health: model.Sample{"hr": {Value: decimal.Zero, Timestamp: "t"}},
			}
			So(encodeRecord(rec).Health["hr"].Value, ShouldEqual, "0")
		})
	})
}
