package scheduling

import (
	"context"
	"fmt"
	"time"

	"glowdesk/models"
	"glowdesk/services/tasks"
	"glowdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EventPublisher is the boundary to out-of-scope collaborators (notification
// delivery, activity log, reporting). The engine emits one event per state
// change and schedules customer reminders; delivery itself happens elsewhere.
type EventPublisher interface {
	Publish(ctx context.Context, event models.SchedulingEvent) error
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// AsynqEventPublisher pushes events and reminders onto the Redis-backed task
// queue consumed by the cron worker.
type AsynqEventPublisher struct {
	Client *asynq.Client
}

func (p *AsynqEventPublisher) Publish(ctx context.Context, event models.SchedulingEvent) error {
	task, err := tasks.NewSchedulingEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build scheduling event task: %w", err)
	}
	if _, err := p.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue scheduling event: %w", err)
	}
	return nil
}

func (p *AsynqEventPublisher) ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

// publishEvent logs and swallows publish failures: the booking itself has
// already committed, and the queue consumer re-checks appointment state
// before acting, so a lost event must not fail the request.
func publishEvent(ctx context.Context, publisher EventPublisher, event models.SchedulingEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		utils.GetLogger().Warn("failed to publish scheduling event",
			zap.String("type", event.Type),
			zap.String("appointmentID", event.AppointmentID),
			zap.Error(err))
	}
}
