package consumer

import (
	"context"
	"encoding/json"
	"go-leave/internal/bootstrap"
	"go-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the slice of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type lifecycleEnvelope struct {
	EventType  string `json:"event_type"`
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
}

// ConsumeLifecycleEvents writes one audit entry per employee or leave
// lifecycle event until ctx is cancelled.
func ConsumeLifecycleEvents(
	ctx context.Context,
	reader MessageReader,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.lifecycle")
	log.Info("lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("lifecycle consumer stopped")
				return
			}
			log.Error("fetch lifecycle message failed", zap.Error(err))
			continue
		}

		if err := handleLifecycleMessage(ctx, msg, auditLogger); err != nil {
			log.Error("decode lifecycle event failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit lifecycle message failed", zap.Error(err))
		}
	}
}

func handleLifecycleMessage(ctx context.Context, msg kafkago.Message, auditLogger bootstrap.AuditLogger) error {
	var env lifecycleEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return err
	}

	meta := map[string]any{
		"topic":       msg.Topic,
		"employee_id": env.EmployeeID,
		"request_id":  env.RequestID,
	}

	switch msg.Topic {
	case events.LeaveLifecycleTopic:
		var event events.LeaveLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		meta["leave_request_id"] = event.LeaveRequestID
		meta["status"] = event.Status
		meta["days_requested"] = event.DaysRequested
		if event.DecidedBy != "" {
			meta["decided_by"] = event.DecidedBy
		}
	case events.EmployeeCreatedTopic:
		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		meta["initial_leave_balance"] = event.InitialLeaveBalance
	}

	auditLogger.Log(ctx, bootstrap.AuditLog{
		Action:  env.EventType,
		Message: "lifecycle event received",
		Meta:    meta,
	})
	return nil
}
