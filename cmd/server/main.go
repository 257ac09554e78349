package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-menu-service/config"
	"github.com/fekuna/omnipos-menu-service/internal/audit"
	"github.com/fekuna/omnipos-menu-service/internal/event"
	"github.com/fekuna/omnipos-menu-service/internal/server"
	"github.com/fekuna/omnipos-menu-service/pkg/broker"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/fekuna/omnipos-menu-service/pkg/i18n"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/search"
	"github.com/fekuna/omnipos-menu-service/pkg/storage"

	auditH "github.com/fekuna/omnipos-menu-service/internal/audit/handler"

	catH "github.com/fekuna/omnipos-menu-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-menu-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-menu-service/internal/category/usecase"

	dishH "github.com/fekuna/omnipos-menu-service/internal/dish/handler"
	dishListenerPkg "github.com/fekuna/omnipos-menu-service/internal/dish/listener"
	dishRepoPkg "github.com/fekuna/omnipos-menu-service/internal/dish/repository"
	dishUCPkg "github.com/fekuna/omnipos-menu-service/internal/dish/usecase"

	imageH "github.com/fekuna/omnipos-menu-service/internal/image/handler"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		File:              cfg.Logger.File,
		MaxSizeMB:         cfg.Logger.MaxSizeMB,
		MaxBackups:        cfg.Logger.MaxBackups,
		MaxAgeDays:        cfg.Logger.MaxAgeDays,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Initialize i18n
	if err := i18n.Init(cfg.Server.DefaultLang); err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}
	if cfg.Server.LocalesFile != "" {
		if err := i18n.Load(cfg.Server.LocalesFile); err != nil {
			appLogger.Warn("Failed to load locale override", zap.String("file", cfg.Server.LocalesFile), zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 4. Connect to Database
	db, err := database.NewDatabase(&database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("db_name", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			appLogger.Fatal("Could not migrate database", zap.Error(err))
		}
	}

	health := server.NewHealthHandler()
	health.Register("database", server.PingFunc(db.PingContext))

	// 5. Initialize Redis
	var redisClient *cache.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		health.Register("redis", redisClient)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize event publisher
	var publisher broker.Publisher = broker.NopPublisher{}
	switch cfg.Events.Broker {
	case "kafka":
		publisher = broker.NewPublisher(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.EventsTopic,
		})
		appLogger.Info("Publishing catalog events to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	case "rabbitmq":
		rmq, err := broker.NewRabbitMQPublisher(&broker.RabbitMQConfig{
			URL:   cfg.RabbitMQ.URL,
			Queue: cfg.RabbitMQ.Queue,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to RabbitMQ", zap.Error(err))
		}
		publisher = rmq
		appLogger.Info("Publishing catalog events to RabbitMQ", zap.String("queue", cfg.RabbitMQ.Queue))
	}
	defer publisher.Close()

	// 7. Initialize audit log
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Mongo.URI != "" {
		mongoRecorder, err := audit.NewMongoRecorder(ctx, &audit.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Timeout:    time.Duration(cfg.Mongo.Timeout) * time.Second,
		})
		if err != nil {
			appLogger.Warn("Could not connect to MongoDB (audit log disabled)", zap.Error(err))
		} else {
			defer mongoRecorder.Close(context.Background())
			recorder = mongoRecorder
			appLogger.Info("Recording catalog audit to MongoDB", zap.String("database", cfg.Mongo.Database))
		}
	}

	// 8. Initialize Elasticsearch
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (search falls back to SQL)", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 9. Initialize image store
	var images storage.ImageStore
	switch cfg.Storage.Driver {
	case "s3":
		images, err = storage.NewS3Store(ctx, &storage.S3Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			Prefix:          cfg.Storage.S3Prefix,
			PublicURL:       cfg.Storage.S3PublicURL,
		})
	default:
		images, err = storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
	}
	if err != nil {
		appLogger.Fatal("Could not initialize image storage", zap.Error(err))
	}

	// 10. Initialize Repositories and UseCases
	tx := database.NewTransactor(db)
	dispatcher := event.NewDispatcher(publisher, recorder, appLogger,
		event.WithTimeout(time.Duration(cfg.Events.Timeout)*time.Second))

	catRepo := catRepoPkg.NewSQLRepository(db)
	dishRepo := dishRepoPkg.NewSQLRepository(db)

	catUC := catUCPkg.NewCategoryUseCase(catRepo, tx, redisClient, images, dispatcher, appLogger)
	dishUC := dishUCPkg.NewDishUseCase(dishRepo, catRepo, tx, redisClient, esClient, images, dispatcher, appLogger)

	// 11. Start stop-list listener
	if cfg.Kafka.StopListTopic != "" && len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.StopListTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.StopListTopic))

		stopList := dishListenerPkg.NewStopListListener(kafkaConsumer, dishUC, appLogger)
		go stopList.Start(ctx)
	}

	// 12. Start gRPC health server
	grpcPort := cfg.Server.GRPCPort
	if !strings.HasPrefix(grpcPort, ":") {
		grpcPort = ":" + grpcPort
	}
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}

	grpcServer, healthServer := server.NewGRPCServer(appLogger)
	go server.WatchHealth(ctx, healthServer, health, 10*time.Second, appLogger)
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	// 13. Start HTTP server
	router := server.NewRouter(appLogger, health,
		catH.NewCategoryHandler(catUC, appLogger),
		dishH.NewDishHandler(dishUC, appLogger),
		imageH.NewImageHandler(images, appLogger),
		auditH.NewAuditHandler(recorder, appLogger),
	)
	if cfg.Storage.Driver != "s3" {
		if err := server.MountImages(router, cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir); err != nil {
			appLogger.Warn("Local images are not served by this instance", zap.Error(err))
		}
	}
	httpServer := server.NewHTTPServer(cfg.Server.HTTPPort, router)

	appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Server.AppEnv))
	if err := server.Serve(ctx, httpServer, 30*time.Second); err != nil {
		appLogger.Error("HTTP server error", zap.Error(err))
	}

	appLogger.Info("Shutting down server...")
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
