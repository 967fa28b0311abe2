package app

import (
	"context"
	"fmt"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/shared/connection"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

const consumerGroupID = "go-leave-audit"

// RunConsumer audits employee and leave lifecycle events until SIGINT or
// SIGTERM.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := connection.NewKafkaReader(
		cfg.KafkaBroker,
		consumerGroupID,
		events.EmployeeCreatedTopic,
		events.LeaveLifecycleTopic,
	)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	go consumer.ConsumeLifecycleEvents(ctx, reader, auditLogger, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
