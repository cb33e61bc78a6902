package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("successful message processing", func(t *testing.T) {
		// given
		consumer := &Consumer{
			queueURL: "https://sqs.us-east-1.amazonaws.com/123456789/test-queue",
		}

		messageBody := `{"action":"created","product_id":"123","name":"Test Product","price":99.99}`
		message := types.Message{
			Body:          aws.String(messageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
	})

	t.Run("nil message body", func(t *testing.T) {
		// given
		consumer := &Consumer{
			queueURL: "https://sqs.us-east-1.amazonaws.com/123456789/test-queue",
		}

		message := types.Message{
			Body:          nil,
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		// given
		consumer := &Consumer{
			queueURL: "https://sqs.us-east-1.amazonaws.com/123456789/test-queue",
		}

		messageBody := `{"invalid json`
		message := types.Message{
			Body:          aws.String(messageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.NotNil(t, params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := &Consumer{
			client:   mockClient,
			queueURL: queueURL,
		}

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		expectedErr := errors.New("failed to delete")
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := &Consumer{
			client:   mockClient,
			queueURL: queueURL,
		}

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("receives and processes messages successfully", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		messageBody := `{"action":"created","product_id":"123","name":"Test Product","price":99.99}`
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(messageBody),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := &Consumer{
			client:   mockClient,
			queueURL: queueURL,
		}

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		expectedErr := errors.New("failed to receive")
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := &Consumer{
			client:   mockClient,
			queueURL: queueURL,
		}

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("continues processing on message processing error", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		// Invalid JSON to trigger processing error
		invalidMessageBody := `{"invalid json`
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(invalidMessageBody),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
		}

		consumer := &Consumer{
			client:   mockClient,
			queueURL: queueURL,
		}

		// when
		err := consumer.receiveMessages(ctx)

		// then
		// Should not return error - processing errors are logged but don't stop the consumer
		require.NoError(t, err)
	})
}

func TestNewConsumer(t *testing.T) {
	t.Run("creates consumer successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{}
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"

		// when
		consumer := NewConsumer(mockClient, queueURL)

		// then
		require.NotNil(t, consumer)
		assert.Equal(t, queueURL, consumer.queueURL)
	})
}

func TestConsumer_processMessage_outOfStock(t *testing.T) {
	consumer := &Consumer{
		queueURL: "https://sqs.us-east-1.amazonaws.com/123456789/test-queue",
	}

	messageBody := `{"action":"updated","product_id":"123","name":"Headset","price":"480.00","stock":0,"is_active":false}`
	message := types.Message{
		Body:          aws.String(messageBody),
		ReceiptHandle: aws.String("test-receipt-handle"),
	}

	err := consumer.processMessage(context.Background(), message)

	require.NoError(t, err)
}

func TestConsumer_Start(t *testing.T) {
	t.Run("processes and deletes messages until the context is cancelled", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := 0
		deleted := make([]string, 0, 2)
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				calls++
				if calls > 1 {
					cancel()
					return &sqs.ReceiveMessageOutput{}, nil
				}
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{Body: aws.String(`{"action":"created","product_id":"1","name":"A","price":"10.00","stock":1,"is_active":true}`), ReceiptHandle: aws.String("receipt-1")},
						{Body: aws.String(`not json`), ReceiptHandle: aws.String("receipt-2")},
						{Body: aws.String(`{"action":"deleted","product_id":"3","name":"C","price":"30.00","stock":0,"is_active":false}`), ReceiptHandle: aws.String("receipt-3")},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted = append(deleted, *params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, queueURL)

		// when
		err := consumer.Start(ctx)

		// then
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"receipt-1", "receipt-3"}, deleted, "invalid messages stay in the queue")
	})
}

func TestConsumer_WithHandler(t *testing.T) {
	t.Run("handler receives the decoded message", func(t *testing.T) {
		var got ProductMessage
		consumer := NewConsumer(&mockSQSConsumerClient{}, "queue").WithHandler(func(_ context.Context, msg ProductMessage) error {
			got = msg
			return nil
		})

		message := types.Message{
			Body: aws.String(`{"product_id":"42","name":"Cable","price":"9.90","stock":3,"is_active":true}`),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"action": {DataType: aws.String("String"), StringValue: aws.String(ActionUpdated)},
			},
		}

		err := consumer.processMessage(context.Background(), message)

		require.NoError(t, err)
		assert.Equal(t, "42", got.ProductID)
		assert.Equal(t, ActionUpdated, got.Action)
		assert.Equal(t, "9.90", got.Price.StringFixed(2))
	})

	t.Run("handler error keeps the message queued", func(t *testing.T) {
		deleted := false
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{Messages: []types.Message{
					{Body: aws.String(`{"action":"created","product_id":"1"}`), ReceiptHandle: aws.String("receipt-1")},
				}}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted = true
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, "queue").WithHandler(func(context.Context, ProductMessage) error {
			return errors.New("downstream unavailable")
		})

		err := consumer.receiveMessages(context.Background())

		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestLogNotification(t *testing.T) {
	for _, msg := range []ProductMessage{
		{Action: ActionCreated, ProductID: "1", IsActive: true, Stock: 2},
		{Action: ActionUpdated, ProductID: "2"},
		{Action: ActionDeleted, ProductID: "3"},
	} {
		assert.NoError(t, LogNotification(context.Background(), msg))
	}
}
