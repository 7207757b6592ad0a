package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"glowdesk/config"
	appointmentRepo "glowdesk/database/repository/appointment"
	"glowdesk/models"
	"glowdesk/services/tasks"
	"glowdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitSchedulingWorker runs the async worker in background. It drains the
// scheduling event queue and fires appointment reminders.
func InitSchedulingWorker(appointments appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSchedulingEvent, handleSchedulingEvent)
	mux.HandleFunc(tasks.TypeAppointmentReminder, handleReminderTask(appointments))

	// Start async worker with retry logic
	go func() {
		log.Println("[SchedulingWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SchedulingWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SchedulingWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleSchedulingEvent hands a state-change event to the out-of-scope
// collaborators (notification delivery, activity log, reporting). Delivery
// itself lives outside this service, so the handoff here is a structured log
// line on the boundary.
func handleSchedulingEvent(ctx context.Context, task *asynq.Task) error {
	var event models.SchedulingEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		log.Printf("[SchedulingWorker] Invalid event payload: %v", err)
		return err
	}

	utils.GetLogger().Info("scheduling event",
		zap.String("type", event.Type),
		zap.String("appointmentID", event.AppointmentID),
		zap.String("placeID", event.PlaceID),
		zap.Strings("employeeIDs", event.EmployeeIDs),
		zap.String("date", event.Date),
		zap.Int("startTime", event.StartTime),
	)
	return nil
}

// handleReminderTask fires a customer reminder. The appointment is re-read
// first: reminders enqueued before a cancel or reschedule must not fire for
// the stale date and time.
func handleReminderTask(appointments appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		appt, err := appointments.GetAppointmentByID(ctx, p.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrNotFound) {
				return nil
			}
			return err
		}
		if appt.Status != models.AppointmentStatusBooked {
			return nil
		}
		if appt.Date != p.Date || appt.StartTime != p.StartTime {
			// Rescheduled since this reminder was enqueued; the reschedule
			// path enqueued a fresh one.
			return nil
		}

		utils.GetLogger().Info("appointment reminder due",
			zap.String("appointmentID", appt.ID),
			zap.String("customerID", p.CustomerID),
			zap.String("date", appt.Date),
			zap.String("startTime", utils.ToClock(appt.StartTime)),
		)
		return nil
	}
}
