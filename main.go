package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telecare-backend/config"
	"telecare-backend/controllers"
	"telecare-backend/models"
	"telecare-backend/routes"
	"telecare-backend/services"
	"telecare-backend/utils"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.LoadConfig()
	utils.InitializeLogger(config.GetEnv())
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Consultation{},
		&models.ScheduledJob{},
		&models.ConsentRecord{},
		&models.ReminderLog{},
	)
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	gateway, err := buildGateway()
	if err != nil {
		// Missing transport credentials are fatal: refuse to start sending
		// rather than fail per message.
		logger.Fatal("delivery gateway configuration error", zap.Error(err))
	}

	consentStore := buildConsentStore()

	scheduler := services.NewSchedulerService()
	recorder := services.NewGormDeliveryRecorder(config.DB)
	dispatch := services.NewDispatchService(gateway, consentStore, recorder)
	reminders := services.NewReminderService(config.DB, scheduler, dispatch)
	reactor := services.NewOptOutService(gateway, consentStore)

	controllers.Reminders = reminders
	controllers.Reactor = reactor
	controllers.Consents = consentStore

	scheduler.Start()
	if err := reminders.RestorePendingJobs(); err != nil {
		logger.Error("failed to restore pending reminders", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: routes.SetupRouter(),
	}

	go func() {
		logger.Info("server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}

	// Drain in-flight reminder callbacks, bounded.
	scheduler.Shutdown(30 * time.Second)
}

func buildGateway() (services.DeliveryGateway, error) {
	if config.AppConfig.ReminderChannel == "twilio" {
		return services.NewTwilioService(config.AppConfig)
	}
	return services.NewWhatsAppService(config.AppConfig)
}

func buildConsentStore() services.ConsentStore {
	if config.AppConfig.ConsentBackend == "file" {
		return services.NewFileConsentStore(config.AppConfig.ConsentFilePath)
	}
	return services.NewGormConsentStore(config.DB)
}
