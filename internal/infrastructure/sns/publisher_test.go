package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-puzzle-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublishAPI struct{ mock.Mock }

func (m *mockPublishAPI) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	return &sns.PublishOutput{}, args.Error(0)
}

func TestPublish_SendsJSONWithTypeAttribute(t *testing.T) {
	api := &mockPublishAPI{}
	var sent *sns.PublishInput
	api.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*sns.PublishInput)
	}).Return(nil)

	e := domain.PuzzleEvent{
		Type:     domain.PuzzleCreated,
		PuzzleID: "01HZY3J5WQ9M8N7P6R5S4T3V2X",
		OwnerID:  "u1",
		At:       time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewPublisher(api, "arn:aws:sns:eu-north-1:000000000000:puzzles").Publish(context.Background(), e))

	require.NotNil(t, sent)
	assert.Equal(t, "arn:aws:sns:eu-north-1:000000000000:puzzles", *sent.TopicArn)
	assert.Equal(t, "puzzle.created", *sent.MessageAttributes["event_type"].StringValue)

	var got domain.PuzzleEvent
	require.NoError(t, json.Unmarshal([]byte(*sent.Message), &got))
	assert.Equal(t, e, got)
}

func TestPublish_WrapsError(t *testing.T) {
	api := &mockPublishAPI{}
	api.On("Publish", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	err := NewPublisher(api, "arn").Publish(context.Background(), domain.PuzzleEvent{Type: domain.PuzzleDeleted})

	assert.ErrorContains(t, err, "sns publish")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), domain.PuzzleEvent{}))
}
