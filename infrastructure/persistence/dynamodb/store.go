// Package dynamodb implements the single-table data-access layer. One Store
// instance lives for the whole process and is shared by the entity
// repositories; the underlying client is safe for concurrent reuse.
package dynamodb

import (
	"context"
	"errors"
	"time"

	apperrors "calendar-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	// One internal retry for transient store errors, then surface
	transientRetryDelay = 100 * time.Millisecond

	// BatchWriteItem accepts at most 25 requests per call
	maxBatchWriteSize = 25

	maxBatchRetries = 5
	batchBackoff    = 50 * time.Millisecond
)

// Item is a raw table item
type Item = map[string]types.AttributeValue

// Key addresses one item by its composite primary key
type Key struct {
	PK string
	SK string
}

// Fieldset is a typed partial update: attribute name to new value. Absent
// attributes are left untouched.
type Fieldset map[string]interface{}

// Store wraps the table with the generic operations the entity repositories
// are built on.
type Store struct {
	client DynamoClient
	table  string
	gsi1   string
	gsi2   string
	logger *zap.Logger
}

// NewStore creates a Store over the given table and index names
func NewStore(client DynamoClient, table, gsi1, gsi2 string, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		table:  table,
		gsi1:   gsi1,
		gsi2:   gsi2,
		logger: logger,
	}
}

// Put writes an item unconditionally
func (s *Store) Put(ctx context.Context, item Item) error {
	do := func(ctx context.Context) error {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.table),
			Item:      item,
		})
		return err
	}
	return s.wrapErr(ctx, "put", do(ctx), do)
}

// Create writes an item only if no item with the same (PK, SK) exists.
// An existing key fails with a duplicate-key error and leaves the stored
// item unchanged.
func (s *Store) Create(ctx context.Context, item Item) error {
	cond := expression.AttributeNotExists(expression.Name("PK")).
		And(expression.AttributeNotExists(expression.Name("SK")))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewDatabaseError("create", err)
	}

	put := func(ctx context.Context) error {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(s.table),
			Item:                      item,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		return err
	}
	return s.wrapErr(ctx, "create", put(ctx), put)
}

// Get reads one item by key. A missing item returns (nil, nil).
func (s *Store) Get(ctx context.Context, key Key) (Item, error) {
	var out *dynamodb.GetItemOutput
	get := func(ctx context.Context) error {
		var err error
		out, err = s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.table),
			Key:       marshalKey(key),
		})
		return err
	}
	if err := s.wrapErr(ctx, "get", get(ctx), get); err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// Update applies a typed partial update to the item at key. Only the named
// attributes change. The write is unconditional, so updating an absent key
// succeeds and materializes just those attributes; the callers that need
// stricter semantics check existence first.
func (s *Store) Update(ctx context.Context, key Key, fields Fieldset) error {
	if len(fields) == 0 {
		return apperrors.NewValidationError("No fields to update")
	}

	var update expression.UpdateBuilder
	for name, value := range fields {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return apperrors.NewDatabaseError("update", err)
	}

	do := func(ctx context.Context) error {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.table),
			Key:                       marshalKey(key),
			UpdateExpression:          expr.Update(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		return err
	}
	return s.wrapErr(ctx, "update", do(ctx), do)
}

// Delete removes the item at key. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key Key) error {
	do := func(ctx context.Context) error {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.table),
			Key:       marshalKey(key),
		})
		return err
	}
	return s.wrapErr(ctx, "delete", do(ctx), do)
}

// Query runs the access path described by spec and pages through every
// result before returning. Callers never see a continuation token.
func (s *Store) Query(ctx context.Context, spec QuerySpec) ([]Item, error) {
	input, err := s.buildQuery(spec)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", err)
	}

	var items []Item
	for {
		var out *dynamodb.QueryOutput
		page := func(ctx context.Context) error {
			var err error
			out, err = s.client.Query(ctx, input)
			return err
		}
		if err := s.wrapErr(ctx, "query", page(ctx), page); err != nil {
			return nil, err
		}

		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// TransactPut writes the given items as one all-or-nothing transaction.
// Used for the multi-item entity creates (project+membership,
// task+relations).
func (s *Store) TransactPut(ctx context.Context, items ...Item) error {
	writes := make([]types.TransactWriteItem, 0, len(items))
	for _, item := range items {
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.table),
				Item:      item,
			},
		})
	}

	do := func(ctx context.Context) error {
		_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: writes,
		})
		return err
	}
	return s.wrapErr(ctx, "transact_put", do(ctx), do)
}

// BatchDelete removes the given keys in chunks of 25, retrying unprocessed
// items with exponential backoff. Best-effort: a failure partway leaves the
// remaining keys in place.
func (s *Store) BatchDelete(ctx context.Context, delKeys []Key) error {
	for start := 0; start < len(delKeys); start += maxBatchWriteSize {
		end := min(start+maxBatchWriteSize, len(delKeys))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range delKeys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: marshalKey(key)},
			})
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		}

		backoff := batchBackoff
		for attempt := 0; ; attempt++ {
			out, err := s.client.BatchWriteItem(ctx, input)
			if err != nil {
				werr := s.wrapErr(ctx, "batch_delete", err, func(ctx context.Context) error {
					out, err = s.client.BatchWriteItem(ctx, input)
					return err
				})
				if werr != nil {
					return werr
				}
			}
			if len(out.UnprocessedItems) == 0 {
				break
			}
			if attempt == maxBatchRetries {
				s.logger.Error("unprocessed items remain after batch delete retries",
					zap.Int("remaining", len(out.UnprocessedItems[s.table])),
				)
				return apperrors.NewDatabaseError("batch_delete",
					errors.New("unprocessed items after retries"))
			}

			select {
			case <-ctx.Done():
				return apperrors.NewDatabaseError("batch_delete", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			input.RequestItems = out.UnprocessedItems
		}
	}
	return nil
}

// buildQuery translates a QuerySpec into a QueryInput
func (s *Store) buildQuery(spec QuerySpec) (*dynamodb.QueryInput, error) {
	pkAttr, skAttr := s.keyAttrs(spec.Index)

	keyCond := expression.Key(pkAttr).Equal(expression.Value(spec.Partition))
	switch {
	case spec.SortPrefix != "":
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(spec.SortPrefix))
	case spec.SortLow != "" && spec.SortHigh != "":
		keyCond = keyCond.And(expression.Key(skAttr).Between(
			expression.Value(spec.SortLow), expression.Value(spec.SortHigh)))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	var hasFilter bool
	var filter expression.ConditionBuilder
	for name, value := range spec.Filters {
		cond := expression.Name(name).Equal(expression.Value(value))
		if hasFilter {
			filter = filter.And(cond)
		} else {
			filter = cond
			hasFilter = true
		}
	}
	if hasFilter {
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if spec.Index != IndexPrimary {
		input.IndexName = aws.String(s.physicalIndex(spec.Index))
	} else if spec.ConsistentRead {
		// Only the primary table supports strongly consistent reads
		input.ConsistentRead = aws.Bool(true)
	}
	return input, nil
}

// keyAttrs maps a logical index to its key attribute names
func (s *Store) keyAttrs(index string) (string, string) {
	switch index {
	case IndexUser:
		return "GSI1PK", "GSI1SK"
	case IndexDate:
		return "GSI2PK", "GSI2SK"
	default:
		return "PK", "SK"
	}
}

// physicalIndex maps a logical index to the configured index name
func (s *Store) physicalIndex(index string) string {
	switch index {
	case IndexUser:
		return s.gsi1
	case IndexDate:
		return s.gsi2
	default:
		return index
	}
}

// wrapErr classifies a store error, retrying once when it is transient.
// retry re-runs the failed call; err is its first outcome.
func (s *Store) wrapErr(ctx context.Context, op string, err error, retry func(context.Context) error) error {
	if err == nil {
		return nil
	}

	if isTransient(err) {
		s.logger.Warn("transient store error, retrying",
			zap.String("operation", op),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return apperrors.NewTransientStoreError(op, ctx.Err())
		case <-time.After(transientRetryDelay):
		}
		if err = retry(ctx); err == nil {
			return nil
		}
		if isTransient(err) {
			return apperrors.NewTransientStoreError(op, err)
		}
	}

	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return apperrors.NewDuplicateKeyError("item already exists").WithCause(err)
	}
	return apperrors.NewDatabaseError(op, err)
}

// isTransient reports whether the error is worth one internal retry
func isTransient(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ThrottlingException",
		"ProvisionedThroughputExceededException",
		"RequestLimitExceeded",
		"InternalServerError",
		"ServiceUnavailable":
		return true
	}
	return false
}

func marshalKey(key Key) Item {
	return Item{
		"PK": &types.AttributeValueMemberS{Value: key.PK},
		"SK": &types.AttributeValueMemberS{Value: key.SK},
	}
}
