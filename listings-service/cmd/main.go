package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wanderlust/listings-service/internal/app/listings/config"
	"wanderlust/listings-service/internal/app/listings/geo"
	"wanderlust/listings-service/internal/app/listings/handler"
	"wanderlust/listings-service/internal/app/listings/infrastructure/messaging"
	"wanderlust/listings-service/internal/app/listings/processor"
	"wanderlust/listings-service/internal/app/listings/repository"
	"wanderlust/listings-service/internal/app/listings/service"
	"wanderlust/pkg/logger"
)

const serviceName = "listings-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(serviceName, logLevel)

	if logstashAddr := os.Getenv("LOGSTASH_ADDR"); logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, serviceName, logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)
	listingRepo := repository.NewListingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Справочник пользователей необязателен: без него профили в ответах будут null
	var userRepo repository.UserRepository
	if directory, err := connectUserDirectory(cfg.Postgres); err != nil {
		logger.Warn().Err(err).Msg("User directory unavailable, owner and author profiles will be empty")
	} else {
		userRepo = directory
		if redisClient, err := connectRedis(cfg.Redis); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, user profiles will not be cached")
		} else {
			defer redisClient.Close()
			userRepo = repository.NewCachedUserRepository(directory, redisClient, cfg.Redis.ProfileTTL)
		}
	}

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	var provider geo.Provider
	if cfg.Geocoder.APIKey != "" {
		provider = geo.NewOpenCageClient(cfg.Geocoder.URL, cfg.Geocoder.APIKey, int(cfg.Geocoder.Timeout/time.Second))
	} else {
		logger.Warn().Msg("GEOCODER_API_KEY is not set, listings will get fallback coordinates")
	}
	enricher := geo.NewEnricher(provider, cfg.Geocoder.Timeout)

	reviewStore := service.NewReviewStore(listingRepo, reviewRepo)
	listingStore := service.NewListingStore(listingRepo, reviewRepo, userRepo, reviewStore, enricher)
	catalogService := service.NewCatalogService(listingStore, reviewStore, kafkaProducer)

	scheduler := processor.NewCronScheduler(catalogService)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if err := scheduler.Start(sweepCtx, cfg.Sweep.Schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Sweep.Schedule).Msg("Failed to start orphan sweep scheduler")
	}

	router := handler.SetupRoutes(
		handler.NewListingHandler(catalogService),
		handler.NewReviewHandler(catalogService),
		handler.NewAuthMiddleware(cfg.JWT.Secret),
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Listings Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Listings Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopSweep()
	scheduler.Stop()

	logger.Info().Msg("Listings Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = tryConnectMongoDB(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

func tryConnectMongoDB(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

// connectUserDirectory открывает GORM поверх pgx stdlib драйвера
func connectUserDirectory(cfg config.PostgresConfig) (repository.UserRepository, error) {
	connConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	sqlDB := stdlib.OpenDB(*connConfig)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.DBName).Msg("Connected to user directory")
	return repository.NewUserRepository(gormDB), nil
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}
