package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestProjectionExpr_AliasesEveryAttribute(t *testing.T) {
	expr, names := projectionExpr([]string{"puzzle_id", "location", "title"})

	assert.Equal(t, "#p0, #p1, #p2", expr)
	assert.Equal(t, map[string]string{"#p0": "puzzle_id", "#p1": "location", "#p2": "title"}, names)
}

func TestListedPuzzleAttrs_ExcludeOwnerAndTimestamps(t *testing.T) {
	assert.NotContains(t, listedPuzzleAttrs, attrOwnerID)
	assert.NotContains(t, listedPuzzleAttrs, attrCreatedAt)
	assert.NotContains(t, listedPuzzleAttrs, attrUpdatedAt)
	assert.Contains(t, listedPuzzleAttrs, attrPuzzleID)
	assert.Contains(t, listedPuzzleAttrs, "image_key")
}

func TestIsConditionFailed(t *testing.T) {
	wrapped := fmt.Errorf("operation error DynamoDB: DeleteItem: %w", &types.ConditionalCheckFailedException{})
	assert.True(t, isConditionFailed(wrapped))
	assert.False(t, isConditionFailed(errors.New("throttled")))
	assert.False(t, isConditionFailed(nil))
}

func TestConditionExpressions(t *testing.T) {
	assert.Equal(t, "attribute_exists(puzzle_id)", exists(attrPuzzleID))
	assert.Equal(t, "attribute_not_exists(user_id)", notExists(attrUserID))
}

func TestGSI_WithSortKey(t *testing.T) {
	g := gsi(indexOwner, attrOwnerID, attrPuzzleID)

	assert.Equal(t, indexOwner, *g.IndexName)
	assert.Len(t, g.KeySchema, 2)
	assert.Equal(t, types.KeyTypeRange, g.KeySchema[1].KeyType)
	assert.Equal(t, types.ProjectionTypeAll, g.Projection.ProjectionType)
}
