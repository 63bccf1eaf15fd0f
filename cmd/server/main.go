package main

import (
	"os"

	bookingshandler "actibook/internal/bookings/handler"
	bookingsrepo "actibook/internal/bookings/repository"
	bookingsservice "actibook/internal/bookings/service"
	bookingsvalidator "actibook/internal/bookings/validator"
	cataloghandler "actibook/internal/catalog/handler"
	catalogrepo "actibook/internal/catalog/repository"
	catalogservice "actibook/internal/catalog/service"
	catalogvalidator "actibook/internal/catalog/validator"
	reportshandler "actibook/internal/reports/handler"
	reportsrepo "actibook/internal/reports/repository"
	reportsservice "actibook/internal/reports/service"
	studentshandler "actibook/internal/students/handler"
	studentsrepo "actibook/internal/students/repository"
	studentsservice "actibook/internal/students/service"
	wizardhandler "actibook/internal/wizard/handler"
	wizardservice "actibook/internal/wizard/service"
	"actibook/internal/wizard/session"
	"actibook/pkg/app"
	"actibook/pkg/config"
	"actibook/pkg/events"
	kafka_config "actibook/pkg/kafka/config"
)

const ServiceName = "actibook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	sessions := session.NewInMemoryStore(cfg.WizardSessionTTL)
	defer sessions.Stop()

	cfg.Log.Info("Starting activity booking server")

	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)
	studentRepo := studentsrepo.NewMongoStudentRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	seatLockRepo := bookingsrepo.NewSeatLockRepository(cfg)
	reportRepo := reportsrepo.NewMongoReportRepository(cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		seatLockRepo,
		catalogRepo,
		studentRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	catalogService := catalogservice.NewCatalogService(
		catalogRepo,
		bookingRepo,
		catalogvalidator.NewCatalogValidator(cfg.Log),
		cfg,
	)
	studentService := studentsservice.NewStudentService(studentRepo, catalogRepo, cfg)
	wizardService := wizardservice.NewWizardService(
		sessions,
		bookingService,
		catalogRepo,
		studentRepo,
		bookingRepo,
		cfg,
	)
	reportService := reportsservice.NewReportService(reportRepo, catalogRepo, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		cataloghandler.NewCatalogHandler(catalogService, cfg.Log),
		studentshandler.NewStudentHandler(studentService, cfg.Log),
		wizardhandler.NewWizardHandler(wizardService, cfg.Log),
		reportshandler.NewReportHandler(reportService, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher wires booking events to Kafka when brokers are
// configured; otherwise events are dropped and the engine runs
// standalone.
func initPublisher(cfg *config.Config) events.Publisher {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("No Kafka brokers configured, booking events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg := kafka_config.Load()
	publisher, err := events.NewKafkaPublisher(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.BookingEventsDLQTopic,
		ServiceName,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Error("Failed to initialize Kafka publisher, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}

	cfg.Log.Info("Kafka publisher initialized",
		"topic", cfg.BookingEventsTopic,
		"dlq_topic", cfg.BookingEventsDLQTopic,
	)
	return publisher
}
