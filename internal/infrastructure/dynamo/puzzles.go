package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-puzzle-api/internal/domain"
)

// PuzzleRepo provides typed DynamoDB operations for the puzzles table.
type PuzzleRepo struct {
	client    itemAPI
	tableName string
}

func NewPuzzleRepo(client itemAPI, tableName string) *PuzzleRepo {
	return &PuzzleRepo{client: client, tableName: tableName}
}

// Put inserts a new puzzle. An existing item with the same id is a conflict.
func (r *PuzzleRepo) Put(ctx context.Context, p *domain.Puzzle) error {
	if err := r.write(ctx, p, notExists(attrPuzzleID)); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("puzzle %s already exists: %w", p.PuzzleID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// Replace overwrites a stored puzzle as a whole. It fails with
// domain.ErrNotFound if the puzzle was deleted in the meantime.
func (r *PuzzleRepo) Replace(ctx context.Context, p *domain.Puzzle) error {
	if err := r.write(ctx, p, exists(attrPuzzleID)); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("puzzle not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *PuzzleRepo) write(ctx context.Context, p *domain.Puzzle, cond string) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal puzzle: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String(cond),
	})
	return err
}

func (r *PuzzleRepo) Get(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrPuzzleID, puzzleID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("puzzle not found: %w", domain.ErrNotFound)
	}
	var p domain.Puzzle
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal puzzle: %w", err)
	}
	return &p, nil
}

// ListByOwner queries the owner_id GSI, following pagination to the end.
// Owner and timestamp attributes are projected out.
func (r *PuzzleRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Puzzle, error) {
	proj, names := projectionExpr(listedPuzzleAttrs)
	names["#o"] = attrOwnerID

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexOwner),
		KeyConditionExpression:   aws.String("#o = :o"),
		ProjectionExpression:     aws.String(proj),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	puzzles := []domain.Puzzle{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Puzzle
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal puzzles: %w", err)
		}
		puzzles = append(puzzles, batch...)
	}
	return puzzles, nil
}

// Delete removes exactly one puzzle and reports domain.ErrNotFound when
// nothing was there to remove.
func (r *PuzzleRepo) Delete(ctx context.Context, puzzleID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrPuzzleID, puzzleID),
		ConditionExpression: aws.String(exists(attrPuzzleID)),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("puzzle not found: %w", domain.ErrNotFound)
	}
	return err
}
