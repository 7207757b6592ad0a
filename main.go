// File: glowdesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowdesk/config"
	"glowdesk/cron"
	"glowdesk/database"
	appointmentRepo "glowdesk/database/repository/appointment"
	employeeRepo "glowdesk/database/repository/employee"
	placeRepo "glowdesk/database/repository/place"
	slotRepo "glowdesk/database/repository/slot"
	"glowdesk/handlers"
	"glowdesk/middleware"
	"glowdesk/routes"
	"glowdesk/services/reference"
	"glowdesk/services/scheduling"
	"glowdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	places := placeRepo.NewMongoPlaceRepo()
	employees := employeeRepo.NewMongoEmployeeRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	slots := slotRepo.NewMongoSlotRepo()

	// services.
	referenceService := &reference.CachedReferenceService{
		Places:    places,
		Employees: employees,
		Cache:     utils.GetCacheClient(),
		TTL:       time.Duration(config.AppConfig.ReferenceCacheTTL) * time.Second,
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer taskClient.Close()

	engine := scheduling.NewDefaultSchedulingEngine(
		referenceService,
		appointments,
		slots,
		&scheduling.AsynqEventPublisher{Client: taskClient},
	)

	schedulingHandler := handlers.NewSchedulingHandler(engine, logger)

	// Register routes with the assembled handlers.
	routes.RegisterRoutes(router, schedulingHandler)

	// Background worker for events and reminders.
	cron.InitSchedulingWorker(appointments)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
