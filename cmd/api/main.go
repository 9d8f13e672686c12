package main

import (
	equipmenthandler "unilab/internal/equipment/handler"
	equipmentrepo "unilab/internal/equipment/repository"
	equipmentservice "unilab/internal/equipment/service"
	equipmentvalidator "unilab/internal/equipment/validator"
	"unilab/internal/identity"
	labhandler "unilab/internal/labs/handler"
	labrepo "unilab/internal/labs/repository"
	labservice "unilab/internal/labs/service"
	labvalidator "unilab/internal/labs/validator"
	notificationhandler "unilab/internal/notifications/handler"
	notificationrepo "unilab/internal/notifications/repository"
	notificationservice "unilab/internal/notifications/service"
	"unilab/pkg/app"
	"unilab/pkg/config"
	"unilab/pkg/kafka"
	kafka_config "unilab/pkg/kafka/config"
	kafka_middleware "unilab/pkg/kafka/middleware"
	"unilab/pkg/lock"
	"unilab/pkg/middleware"
)

const ServiceName = "unilab-api"

type services struct {
	labs          labservice.LabService
	equipment     equipmentservice.EquipmentService
	notifications notificationservice.NotificationService
	producer      *kafka.Producer
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if !cfg.SetRedis() {
		cfg.Log.Info("Redis not configured, idempotency cache stays in memory")
	}

	cfg.Log.Info("Starting lab and equipment booking service")
	svc := initServices(cfg)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	serverApp := app.NewApplication(cfg, auth)
	if svc.producer != nil {
		serverApp.OnShutdown(func() {
			if err := svc.producer.Close(); err != nil {
				cfg.Log.Error("Failed to close kafka producer", "error", err)
			}
		})
	}
	serverApp.SetApp(
		labhandler.NewLabHandler(svc.labs, auth, cfg.Log),
		equipmenthandler.NewEquipmentHandler(svc.equipment, auth, cfg.Log),
		notificationhandler.NewNotificationHandler(svc.notifications, auth, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) services {
	var out services

	var publisher notificationservice.EventPublisher
	if cfg.KafkaEnabled {
		out.producer = initProducer(cfg)
		publisher = kafka.NewNotificationPublisher(out.producer, ServiceName)
	}

	out.notifications = notificationservice.NewNotificationService(
		notificationrepo.NewMongoNotificationRepository(cfg),
		publisher,
		cfg,
	)
	notifier := notificationservice.NewFanOut(out.notifications, identity.NewMongoStore(cfg), cfg.Log.With("component", "notifications"))

	locker := lock.NewMongoLocker(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.LockTTL, cfg.Log.With("component", "lock"))

	out.labs = labservice.NewLabService(
		labrepo.NewMongoLabRepository(cfg),
		labvalidator.NewLabValidator(cfg.Log),
		locker,
		notifier,
		cfg,
	)
	out.equipment = equipmentservice.NewEquipmentService(
		equipmentrepo.NewMongoEquipmentRepository(cfg),
		equipmentvalidator.NewEquipmentValidator(cfg.Log),
		locker,
		notifier,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName, "kafka_enabled", cfg.KafkaEnabled)
	return out
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaNotificationsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	return producer
}
