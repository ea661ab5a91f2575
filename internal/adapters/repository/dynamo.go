package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/drivefit/riskd/internal/domain/model"
)

// DynamoAPI is the subset of the DynamoDB client used here. Narrowed for
// testability.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore persists records in a table keyed by (short_user_id, ts).
// A Put with a duplicate key overwrites, which matches PutItem semantics;
// per-key consistency is the store's concern, not the core's.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a store writing to the given table.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Put writes a single record item.
func (s *DynamoStore) Put(ctx context.Context, rec model.Record) error {
	item, err := attributevalue.MarshalMap(encodeRecord(rec))
	if err != nil {
		return fmt.Errorf("error marshalling record for dynamo: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error putting record to dynamo: %w", err)
	}
	return nil
}

// Recent queries the partition newest-first by sort key.
func (s *DynamoStore) Recent(ctx context.Context, userID string, limit int) ([]model.Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("short_user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("error querying records from dynamo: %w", err)
	}

	docs := make([]recordDoc, 0, len(resp.Items))
	if err := attributevalue.UnmarshalListOfMaps(resp.Items, &docs); err != nil {
		return nil, fmt.Errorf("error unmarshalling dynamo records: %w", err)
	}

	out := make([]model.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
