package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/audit"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/events"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// errPoisonMessage marks messages that can never be processed; they are
// committed so the partition keeps moving.
var errPoisonMessage = errors.New("poison message")

var (
	retryBackoffBase = time.Second
	retryBackoffMax  = 30 * time.Second
)

// ConsumeLeaveLifecycle writes one audit row per leave lifecycle event until
// ctx is done. A message is committed only after its row exists.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	repo audit.Repository,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_audit")
	log.Info("leave audit consumer started")

	fetchFailures := 0
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave audit consumer stopped")
				return
			}
			fetchFailures++
			log.Error("fetch leave lifecycle message failed", zap.Int("attempt", fetchFailures), zap.Error(err))
			if !sleepCtx(ctx, retryBackoff(fetchFailures)) {
				log.Info("leave audit consumer stopped")
				return
			}
			continue
		}
		fetchFailures = 0

		// A later commit would acknowledge this offset too; retry until handled.
		for attempt := 1; ; attempt++ {
			err = handleLeaveLifecycleMessage(ctx, msg, repo, log)
			if err == nil || errors.Is(err, errPoisonMessage) {
				break
			}
			wait := retryBackoff(attempt)
			log.Warn("retrying leave lifecycle message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
			)
			if !sleepCtx(ctx, wait) {
				log.Info("leave audit consumer stopped", zap.Int64("uncommitted_offset", msg.Offset))
				return
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
		}
	}
}

// retryBackoff doubles from retryBackoffBase up to retryBackoffMax.
func retryBackoff(attempt int) time.Duration {
	d := retryBackoffBase
	for i := 1; i < attempt && d < retryBackoffMax; i++ {
		d *= 2
	}
	return min(d, retryBackoffMax)
}

// sleepCtx reports false when ctx ended before d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func handleLeaveLifecycleMessage(ctx context.Context, msg kafkago.Message, repo audit.Repository, log *zap.Logger) error {
	var event events.LeaveLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave lifecycle event failed",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", errPoisonMessage, err)
	}
	if event.EventType == "" {
		event.EventType = header(msg, "event_type")
	}

	eventID := eventIDOf(msg)
	entry, err := audit.EntryFromLeaveEvent(eventID, event)
	if err != nil {
		log.Error("build leave audit entry failed", zap.String("event_id", eventID), zap.Error(err))
		return fmt.Errorf("%w: %v", errPoisonMessage, err)
	}

	if err := repo.Create(ctx, &entry); err != nil {
		if errors.Is(err, audit.ErrDuplicateEvent) {
			log.Warn("leave audit entry already exists for event, skipping",
				zap.String("event_id", eventID),
				zap.Int64("application_id", event.ApplicationID),
			)
			return nil
		}
		log.Error("create leave audit entry failed",
			zap.String("event_id", eventID),
			zap.Int64("application_id", event.ApplicationID),
			zap.Error(err),
		)
		return err
	}

	log.Info("leave audit entry created",
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType),
		zap.Int64("application_id", event.ApplicationID),
		zap.String("request_id", event.RequestID),
	)
	return nil
}

// eventIDOf prefers the outbox id header. Without it, the id is derived from
// the message position so redeliveries still dedupe.
func eventIDOf(msg kafkago.Message) string {
	if id := header(msg, "event_id"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	name := fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
