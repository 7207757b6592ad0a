package tasks

import (
	"encoding/json"
	"time"

	"glowdesk/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSchedulingEvent     = "event:scheduling"
	TypeAppointmentReminder = "reminder:appointment"
)

// NewSchedulingEventTask wraps a scheduling event for the async queue.
func NewSchedulingEventTask(event models.SchedulingEvent) (*asynq.Task, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSchedulingEvent, b), nil
}

// NewReminderTask builds an appointment reminder scheduled for fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
