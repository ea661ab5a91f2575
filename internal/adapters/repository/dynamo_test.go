package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/drivefit/riskd/internal/adapters/repository"
	"github.com/drivefit/riskd/internal/domain/model"
)

// fakeDynamo captures inputs and replays canned outputs.
type fakeDynamo struct {
	putInput   *dynamodb.PutItemInput
	putErr     error
	queryInput *dynamodb.QueryInput
	queryOut   *dynamodb.QueryOutput
	queryErr   error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInput = in
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, f.queryErr
	}
	return f.queryOut, f.queryErr
}

func TestDynamoStore_Put(t *testing.T) {
	ctx := context.Background()

	Convey("Given a record with decimal readings", t, func() {
		fake := &fakeDynamo{}
		store := repository.NewDynamoStore(fake, "HealthRiskRecords")

		temp, err := model.NewReading("98.6", "2024-01-01T00:00:00Z")
		So(err, ShouldBeNil)

		record := rec("r1", "u1", "d1", "2024-01-01T00:00:00Z")
		record.Health = model.Sample{"temp": temp}

		Convey("When putting it", func() {
			So(store.Put(ctx, record), ShouldBeNil)

			Convey("Then the item targets the configured table", func() {
				So(fake.putInput, ShouldNotBeNil)
				So(*fake.putInput.TableName, ShouldEqual, "HealthRiskRecords")
			})

			Convey("And the key attributes and decimal strings are present", func() {
				uid, ok := fake.putInput.Item["short_user_id"].(*types.AttributeValueMemberS)
				So(ok, ShouldBeTrue)
				So(uid.Value, ShouldEqual, "u1")

				health, ok := fake.putInput.Item["health_data"].(*types.AttributeValueMemberM)
				So(ok, ShouldBeTrue)
				entry, ok := health.Value["temp"].(*types.AttributeValueMemberM)
				So(ok, ShouldBeTrue)
				value, ok := entry.Value["value"].(*types.AttributeValueMemberS)
				So(ok, ShouldBeTrue)
				So(value.Value, ShouldEqual, "98.6")
			})
		})
	})

	Convey("Given a client that rejects the write", t, func() {
		fake := &fakeDynamo{putErr: errors.New("throttled")}
		store := repository.NewDynamoStore(fake, "HealthRiskRecords")

		Convey("Then the error is surfaced", func() {
			So(store.Put(ctx, rec("r1", "u1", "d1", "t")), ShouldNotBeNil)
		})
	})
}

func TestDynamoStore_Recent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a table holding records for a user", t, func() {
		items := make([]map[string]types.AttributeValue, 0, 2)
		for _, record := range []model.Record{
			rec("b", "u1", "d1", "2024-01-02T00:00:00Z"),
			rec("a", "u1", "d1", "2024-01-01T00:00:00Z"),
		} {
			item, err := attributevalue.MarshalMap(map[string]interface{}{
				"record_id":     record.RecordID,
				"short_user_id": record.UserID,
				"ts":            record.Timestamp,
				"driver_id":     record.DriverID,
				"risk":          string(record.Risk),
				"health_data":   map[string]interface{}{},
			})
			So(err, ShouldBeNil)
			items = append(items, item)
		}

		fake := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: items}}
		store := repository.NewDynamoStore(fake, "HealthRiskRecords")

		Convey("When querying recent records", func() {
			got, err := store.Recent(ctx, "u1", 10)

			Convey("Then the query walks the sort key backwards with a limit", func() {
				So(err, ShouldBeNil)
				So(*fake.queryInput.KeyConditionExpression, ShouldEqual, "short_user_id = :uid")
				So(*fake.queryInput.ScanIndexForward, ShouldBeFalse)
				So(*fake.queryInput.Limit, ShouldEqual, int32(10))

				uid, ok := fake.queryInput.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS)
				So(ok, ShouldBeTrue)
				So(uid.Value, ShouldEqual, "u1")
			})

			Convey("And the items decode in the order the table returned them", func() {
				So(got, ShouldHaveLength, 2)
				So(got[0].RecordID, ShouldEqual, "b")
				So(got[1].RecordID, ShouldEqual, "a")
			})
		})
	})

	Convey("Given a non-positive limit", t, func() {
		store := repository.NewDynamoStore(&fakeDynamo{}, "HealthRiskRecords")

		Convey("Then the query is rejected locally", func() {
			_, err := store.Recent(ctx, "u1", 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})

	Convey("Given a client that fails the query", t, func() {
		fake := &fakeDynamo{queryErr: errors.New("unavailable")}
		store := repository.NewDynamoStore(fake, "HealthRiskRecords")

		Convey("Then the error is surfaced", func() {
			_, err := store.Recent(ctx, "u1", 10)
			So(err, ShouldNotBeNil)
		})
	})
}
