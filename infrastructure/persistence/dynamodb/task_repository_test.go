package dynamodb

import (
	"context"
	"testing"

	"calendar-backend/domain/model"
	apperrors "calendar-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func taskRecordOutput(t *testing.T, task model.Task) *dynamodb.GetItemOutput {
	t.Helper()
	raw, err := marshalItem(newTaskItem(&task))
	require.NoError(t, err)
	return &dynamodb.GetItemOutput{Item: raw}
}

func TestTaskUpdateMovesAssigneeRelation(t *testing.T) {
	newClient := func(t *testing.T) *fakeClient {
		return &fakeClient{getByKey: map[string]*dynamodb.GetItemOutput{
			"TASK#t1/TASK#t1": taskRecordOutput(t, model.Task{
				ID: "t1", Title: "ship it", ProjectID: "p1", AssigneeID: "u2",
			}),
		}}
	}

	t.Run("reassignment removes the stale relation", func(t *testing.T) {
		client := newClient(t)
		repo := NewTaskRepository(newTestStore(client), zap.NewNop())

		err := repo.Update(context.Background(), "t1", model.TaskUpdate{AssigneeID: strPtr("u3")})
		require.NoError(t, err)

		require.Len(t, client.deletes, 1)
		assert.Equal(t, "USER#u2", itemString(client.deletes[0].Key, "PK"))
		assert.Equal(t, "TASK#t1", itemString(client.deletes[0].Key, "SK"))

		require.Len(t, client.putInputs, 1)
		assert.Equal(t, "USER#u3", itemString(client.putInputs[0].Item, "PK"))
		assert.Equal(t, "TASK#t1", itemString(client.putInputs[0].Item, "SK"))

		require.Len(t, client.updates, 1)
		var values []string
		for _, v := range client.updates[0].ExpressionAttributeValues {
			if s, ok := v.(*types.AttributeValueMemberS); ok {
				values = append(values, s.Value)
			}
		}
		assert.Contains(t, values, "u3")
	})

	t.Run("unassigning removes the relation without writing a new one", func(t *testing.T) {
		client := newClient(t)
		repo := NewTaskRepository(newTestStore(client), zap.NewNop())

		err := repo.Update(context.Background(), "t1", model.TaskUpdate{AssigneeID: strPtr("")})
		require.NoError(t, err)

		require.Len(t, client.deletes, 1)
		assert.Equal(t, "USER#u2", itemString(client.deletes[0].Key, "PK"))
		assert.Empty(t, client.putInputs)
	})

	t.Run("same assignee leaves the relation untouched", func(t *testing.T) {
		client := newClient(t)
		repo := NewTaskRepository(newTestStore(client), zap.NewNop())

		err := repo.Update(context.Background(), "t1", model.TaskUpdate{AssigneeID: strPtr("u2")})
		require.NoError(t, err)

		assert.Empty(t, client.deletes)
		assert.Empty(t, client.putInputs)
		require.Len(t, client.updates, 1)
	})

	t.Run("missing task is not found", func(t *testing.T) {
		client := &fakeClient{getByKey: map[string]*dynamodb.GetItemOutput{}}
		repo := NewTaskRepository(newTestStore(client), zap.NewNop())

		err := repo.Update(context.Background(), "t404", model.TaskUpdate{AssigneeID: strPtr("u3")})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestTaskDeleteRemovesAllRecords(t *testing.T) {
	client := &fakeClient{getByKey: map[string]*dynamodb.GetItemOutput{
		"TASK#t1/TASK#t1": taskRecordOutput(t, model.Task{
			ID: "t1", Title: "ship it", ProjectID: "p1", AssigneeID: "u2",
		}),
	}}
	repo := NewTaskRepository(newTestStore(client), zap.NewNop())

	require.NoError(t, repo.Delete(context.Background(), "t1"))

	require.Len(t, client.batchIns, 1)
	assert.ElementsMatch(t, []string{
		"TASK#t1/TASK#t1",
		"PROJECT#p1/TASK#t1",
		"USER#u2/TASK#t1",
	}, batchDeleteKeys(client.batchIns[0]))
}

// batchDeleteKeys flattens a batch request into "PK/SK" strings
func batchDeleteKeys(input *dynamodb.BatchWriteItemInput) []string {
	var keys []string
	for _, requests := range input.RequestItems {
		for _, req := range requests {
			if req.DeleteRequest == nil {
				continue
			}
			keys = append(keys,
				itemString(req.DeleteRequest.Key, "PK")+"/"+itemString(req.DeleteRequest.Key, "SK"))
		}
	}
	return keys
}
