package producer

import (
	"context"
	"errors"
	"testing"

	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/mock"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failTopic string
	written   []kafkago.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if m.Topic == w.failTopic {
			return errors.New("broker unavailable")
		}
		w.written = append(w.written, m)
	}
	return nil
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		repo.EXPECT().ListPending(ctx, outboxBatchSize).Return([]kafka.OutboxEvent{
			{ID: "o-1", RequestID: "rid-1", AggregateType: "leave_request", AggregateID: "lr-1", EventType: "leave_approved", Topic: "hr.leave.lifecycle.v1", Payload: []byte(`{}`)},
		}, nil)
		repo.EXPECT().MarkSent(ctx, "o-1").Return(nil)

		err := processPendingEvents(ctx, repo, writer, zap.NewNop())
		require.NoError(t, err)
		require.Len(t, writer.written, 1)
		assert.Equal(t, []byte("lr-1"), writer.written[0].Key)
		assert.Equal(t, "leave_approved", header(writer.written[0], "event_type"))
		assert.Equal(t, "rid-1", header(writer.written[0], "request_id"))
	})

	t.Run("marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failTopic: "broken"}

		repo.EXPECT().ListPending(ctx, outboxBatchSize).Return([]kafka.OutboxEvent{
			{ID: "o-1", Topic: "broken", Payload: []byte(`{}`)},
			{ID: "o-2", Topic: "hr.employee.lifecycle.v1", Payload: []byte(`{}`)},
		}, nil)
		repo.EXPECT().MarkFailed(ctx, "o-1", "broker unavailable").Return(nil)
		repo.EXPECT().MarkSent(ctx, "o-2").Return(nil)

		err := processPendingEvents(ctx, repo, writer, zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, writer.written, 1)
	})

	t.Run("list error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(ctx, outboxBatchSize).Return(nil, errors.New("db down"))

		err := processPendingEvents(ctx, repo, &fakeWriter{}, zap.NewNop())
		assert.EqualError(t, err, "db down")
	})
}
