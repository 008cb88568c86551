package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/clothing-swap-settlement/pkg/events/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSQSPublisher(t *testing.T) {
	event := New(ItemRedeemed)
	event.UserIDs = []string{"redeemer", "uploader"}
	event.ItemIDs = []string{"item1"}

	t.Run("Success", func(t *testing.T) {
		client := mocks.NewSQSAPI(t)
		var captured *sqs.SendMessageInput
		client.On("SendMessage", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { captured = args.Get(1).(*sqs.SendMessageInput) }).
			Return(&sqs.SendMessageOutput{}, nil)

		err := NewSQSPublisher(client, "https://queue").Publish(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, "https://queue", aws.ToString(captured.QueueUrl))
		assert.Equal(t, "item.redeemed", aws.ToString(captured.MessageAttributes["event_type"].StringValue))

		var decoded Event
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.MessageBody)), &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, []string{"redeemer", "uploader"}, decoded.UserIDs)
	})

	t.Run("Send Fails", func(t *testing.T) {
		client := mocks.NewSQSAPI(t)
		client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("queue gone"))

		err := NewSQSPublisher(client, "https://queue").Publish(context.Background(), event)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("boom") }

func TestAnnounce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Announce(context.Background(), logger, NoOpPublisher{}, New(LedgerPosted))
	assert.Empty(t, buf.String())

	Announce(context.Background(), logger, failingPublisher{}, New(LedgerPosted))
	assert.Contains(t, buf.String(), "CRITICAL")
	assert.Contains(t, buf.String(), "ledger.posted")

	assert.NotPanics(t, func() { Announce(context.Background(), logger, nil, New(LedgerPosted)) })
}
