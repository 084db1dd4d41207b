package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"

	"grievance/internal/adapter/api"
	"grievance/internal/adapter/api/handler"
	apimiddleware "grievance/internal/adapter/api/middleware"
	"grievance/internal/adapter/api/router"
	"grievance/internal/adapter/repository"
	domainrepo "grievance/internal/domain/repository"
	"grievance/internal/domain/service"
	"grievance/internal/infrastructure/database"
	"grievance/internal/infrastructure/firebase"
	"grievance/internal/infrastructure/messaging"
	"grievance/internal/infrastructure/ratelimit"
	"grievance/internal/infrastructure/security"
	"grievance/internal/infrastructure/storage"
	"grievance/internal/infrastructure/websocket"
	"grievance/internal/usecase"
	"grievance/pkg/config"
	"grievance/pkg/logger"
)

// stores is the persistence wiring chosen by STORE_BACKEND.
type stores struct {
	complaints    domainrepo.ComplaintRepositoryFactory
	users         domainrepo.UserRepository
	notifications domainrepo.NotificationRepository
	ping          handler.Pinger
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := service.MustDefaultRegistry()
	credentials := firebase.ClientOptions(cfg.FirebaseServiceAccountJSON, cfg.FirebaseServiceAccountPath)

	st, err := openStores(ctx, cfg, registry, credentials)
	if err != nil {
		logger.Fatal("Failed to initialize %s store: %v", cfg.StoreBackend, err)
	}
	defer st.close()

	verifier, err := newVerifier(ctx, cfg, st.users, credentials)
	if err != nil {
		logger.Fatal("Failed to initialize %s authentication: %v", cfg.AuthProvider, err)
	}

	blobs, uploadDir, err := newBlobStore(ctx, cfg, credentials)
	if err != nil {
		logger.Fatal("Failed to initialize attachment storage: %v", err)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	var publisher usecase.NotificationPublisher = wsManager
	if cfg.RedisURL != "" {
		relay, err := messaging.NewRedisRelay(ctx, cfg.RedisURL, wsManager)
		if err != nil {
			logger.Fatal("Failed to initialize Redis relay: %v", err)
		}
		defer relay.Close()
		go relay.Listen(ctx)
		publisher = relay
		logger.Info("Relaying notifications through Redis")
	}

	codec := service.NewComplaintIDCodec(cfg.ComplaintIDPrefix, registry)
	partitions := service.NewPartitionRouter(registry, codec, st.complaints)
	gather := service.NewScatterGather(partitions)
	aggregator := service.NewStatisticsAggregator(partitions, gather, st.users, cfg.SLADays)

	hasher := security.NewBcryptHasher(0)
	jwtService := security.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	notificationUseCase := usecase.NewNotificationUseCase(st.notifications, publisher)
	authUseCase := usecase.NewAuthUseCase(st.users, hasher, jwtService)
	complaintUseCase := usecase.NewComplaintUseCase(partitions, gather, aggregator, st.users, notificationUseCase, blobs)

	handler.Setup(authUseCase, complaintUseCase, notificationUseCase, handler.UploadLimits{
		MaxFileSize:  cfg.MaxFileSize,
		MaxFiles:     cfg.MaxFiles,
		AllowedTypes: handler.DefaultUploadLimits().AllowedTypes,
	})
	handler.SetupHealthHandler(cfg.StoreBackend, st.ping)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	} else {
		e.Use(middleware.CORS())
	}
	e.Use(middleware.BodyLimit("64M"))

	e.Validator = api.NewValidator()

	apiLimiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	authLimiter := ratelimit.NewRateLimiter(cfg.AuthRateLimitPerMinute)
	apiLimiter.StartCleanupRoutine()
	authLimiter.StartCleanupRoutine()

	router.Setup(e, router.Options{
		AuthMiddleware: apimiddleware.NewAuthMiddleware(verifier),
		APILimiter:     apiLimiter,
		AuthLimiter:    authLimiter,
		PasswordAuth:   cfg.AuthProvider == config.AuthJWT,
		WSHandler:      handler.NewWebSocketHandler(wsManager, websocket.NewMessageHandler(notificationUseCase), cfg.CORSOrigins),
		UploadDir:      uploadDir,
	})

	go func() {
		logger.Info("Starting server on port %s (store=%s, auth=%s)", cfg.ServerPort, cfg.StoreBackend, cfg.AuthProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, registry *service.DepartmentRegistry, credentials []option.ClientOption) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, credentials...)
		if err != nil {
			return nil, err
		}
		return &stores{
			complaints:    repository.FirestoreComplaintFactory(client),
			users:         repository.NewFirestoreUserRepository(client),
			notifications: repository.NewFirestoreNotificationRepository(client),
			ping: func(ctx context.Context) error {
				_, err := client.Collection("users").Limit(1).Documents(ctx).GetAll()
				return err
			},
			close: func() { client.Close() },
		}, nil

	case config.StoreMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		collections := make([]string, 0, registry.Len())
		for _, d := range registry.All() {
			collections = append(collections, d.Collection)
		}
		if err := database.EnsureComplaintIndexes(ctx, db, collections); err != nil {
			return nil, err
		}
		if err := database.EnsureUserIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &stores{
			complaints:    repository.MongoComplaintFactory(db),
			users:         repository.NewMongoUserRepository(db),
			notifications: repository.NewMongoNotificationRepository(db),
			ping:          func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
			close:         func() { disconnectMongo(db.Client()) },
		}, nil

	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return &stores{
			complaints:    repository.NewMemoryStore().ComplaintRepository,
			users:         repository.NewMemoryUserRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
			close:         func() {},
		}, nil
	}

	return nil, errors.New("unknown store backend: " + cfg.StoreBackend)
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect MongoDB: %v", err)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, users domainrepo.UserRepository, credentials []option.ClientOption) (usecase.TokenVerifier, error) {
	switch cfg.AuthProvider {
	case config.AuthJWT:
		if cfg.IsProduction() && cfg.JWTSecret == "change-this-secret" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		return security.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry), nil

	case config.AuthFirebase:
		app, err := firebase.NewApp(ctx, cfg.FirebaseProject, credentials...)
		if err != nil {
			return nil, err
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return firebase.NewFirebaseAuthClient(authClient, users), nil
	}

	return nil, errors.New("unknown auth provider: " + cfg.AuthProvider)
}

// newBlobStore prefers Cloud Storage and falls back to local disk, in which
// case the returned directory is served under /uploads.
func newBlobStore(ctx context.Context, cfg *config.Config, credentials []option.ClientOption) (usecase.BlobStore, string, error) {
	if cfg.StorageBucket != "" {
		client, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentials...)
		if err != nil {
			return nil, "", err
		}
		return client, "", nil
	}

	local, err := storage.NewLocalStore(cfg.UploadDir, "/uploads/")
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}
