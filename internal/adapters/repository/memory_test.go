package repository_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/drivefit/riskd/internal/adapters/repository"
	"github.com/drivefit/riskd/internal/domain/model"
)

func rec(id, user, driver, ts string) model.Record {
	return model.Record{
		RecordID:  id,
		UserID:    user,
		DriverID:  driver,
		Timestamp: ts,
		Risk:      model.LabelNormal,
		Health:    model.Sample{},
	}
}

func TestMemoryStore_Recent(t *testing.T) {
	ctx := context.Background()

	Convey("Given records written out of timestamp order", t, func() {
		store := repository.NewMemoryStore(ctx)
		So(store.Put(ctx, rec("b", "u1", "d1", "2024-01-02T00:00:00Z")), ShouldBeNil)
		So(store.Put(ctx, rec("a", "u1", "d1", "2024-01-01T00:00:00Z")), ShouldBeNil)
		So(store.Put(ctx, rec("c", "u1", "d2", "2024-01-03T00:00:00Z")), ShouldBeNil)

		Convey("When querying recent records", func() {
			got, err := store.Recent(ctx, "u1", 10)

			Convey("Then they come back newest-first", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].RecordID, ShouldEqual, "c")
				So(got[1].RecordID, ShouldEqual, "b")
				So(got[2].RecordID, ShouldEqual, "a")
			})
		})

		Convey("When querying with a limit below the record count", func() {
			got, err := store.Recent(ctx, "u1", 2)

			Convey("Then only the newest records are returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].RecordID, ShouldEqual, "c")
				So(got[1].RecordID, ShouldEqual, "b")
			})
		})
	})

	Convey("Given two records sharing a timestamp", t, func() {
		store := repository.NewMemoryStore(ctx)
		So(store.Put(ctx, rec("first", "u1", "d1", "2024-01-01T00:00:00Z")), ShouldBeNil)
		So(store.Put(ctx, rec("second", "u1", "d1", "2024-01-01T00:00:00Z")), ShouldBeNil)

		Convey("Then the later arrival wins the newest slot", func() {
			got, err := store.Recent(ctx, "u1", 10)
			So(err, ShouldBeNil)
			So(got[0].RecordID, ShouldEqual, "second")
			So(got[1].RecordID, ShouldEqual, "first")
		})
	})

	Convey("Given an unknown user", t, func() {
		store := repository.NewMemoryStore(ctx)

		Convey("Then recent yields an empty slice, not an error", func() {
			got, err := store.Recent(ctx, "nobody", 10)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given a non-positive limit", t, func() {
		store := repository.NewMemoryStore(ctx)

		Convey("Then recent rejects the query", func() {
			_, err := store.Recent(ctx, "u1", 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})

	Convey("Given records for several users", t, func() {
		store := repository.NewMemoryStore(ctx)
		So(store.Put(ctx, rec("a", "u1", "d1", "2024-01-01T00:00:00Z")), ShouldBeNil)
		So(store.Put(ctx, rec("b", "u2", "d1", "2024-01-01T00:00:00Z")), ShouldBeNil)

		Convey("Then queries are scoped per user and count spans all", func() {
			got, err := store.Recent(ctx, "u1", 10)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(store.Count(ctx), ShouldEqual, 2)
		})
	})
}
