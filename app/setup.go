package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/edu-platform-api/api"
	"github.com/sahilchouksey/edu-platform-api/config"
	"github.com/sahilchouksey/edu-platform-api/database"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/router"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/services/cron"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/services/messaging"
	"github.com/sahilchouksey/edu-platform-api/services/queue"
	"github.com/sahilchouksey/edu-platform-api/services/storage"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
	"github.com/sahilchouksey/edu-platform-api/utils/cache"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
)

const shutdownTimeout = 15 * time.Second

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(env)
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}
	db := store.GetDB()

	// Redis backs the course cache and brute force protection; both are optional
	var redisCache *cache.RedisCache
	var courseCache cache.Store
	if env.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Caching and brute force protection are disabled.", err)
		} else {
			defer redisCache.Close()
			courseCache = redisCache
		}
	}
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	fileStore, err := storage.New(env)
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}

	// Events and background jobs share one in-process broker
	broker, err := messaging.NewBroker(!env.IsProduction())
	if err != nil {
		return err
	}
	bus := events.NewBus(broker.Publisher())
	jobs := queue.NewQueue(broker.Publisher())

	// Repositories
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	courses := repository.NewCourseRepository(db)
	groups := repository.NewGroupRepository(db)
	notifications := repository.NewNotificationRepository(db)

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        env.JWT_ACCESS_EXPIRES_IN,
		RefreshExpiry: env.JWT_REFRESH_EXPIRES_IN,
		Issuer:        env.JWT_ISSUER,
	})
	blacklist := auth.NewBlacklistService(db)

	courseService := services.NewCourseService(courses, categories, users, groups, courseCache, env.CACHE_TTL, bus)
	svc := router.Services{
		Auth: services.NewAuthService(users, repository.NewRefreshTokenRepository(db),
			repository.NewActivityRepository(db), jwtManager, blacklist, jobs),
		Users:         services.NewUserService(users, jobs, bus),
		Categories:    services.NewCategoryService(categories),
		Courses:       courseService,
		Groups:        services.NewGroupService(groups, courses, users, courseService),
		Applications:  services.NewApplicationService(repository.NewApplicationRepository(db), users, groups, courseService, bus),
		Enrollments:   services.NewEnrollmentService(repository.NewEnrollmentRepository(db), users, courses, jobs, bus),
		Lessons:       services.NewLessonService(repository.NewLessonRepository(db), courses, bus),
		Blog:          services.NewPostService[model.BlogPost, *model.BlogPost](repository.NewBlogRepository(db), "blog post"),
		News:          services.NewPostService[model.News, *model.News](repository.NewNewsRepository(db), "news"),
		Notifications: services.NewNotificationService(notifications),
		Statistics:    services.NewStatisticsService(db),
		Payments:      services.NewPaymentService(repository.NewPaymentRepository(db), users, courses),
		Files:         services.NewFileService(repository.NewFileRepository(db), fileStore),
	}

	// Subscribers must be registered before the router starts
	listener := services.NewNotificationListener(notifications)
	events.Subscribe(broker.Router(), broker.Subscriber(), "notification_listener", listener.Handle)

	mailer := services.NewEmailService(env)
	if !mailer.IsConfigured() {
		log.Println("[QUEUE] SMTP is not configured, emails will be logged only")
	}
	queue.RegisterWorkers(broker.Router(), broker.Subscriber(), mailer, queue.RetryPolicy{
		MaxRetries:      env.QUEUE_MAX_RETRIES,
		InitialInterval: env.QUEUE_INITIAL_BACKOFF,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := broker.Start(ctx); err != nil {
		return fmt.Errorf("message router: %w", err)
	}
	defer func() {
		if err := broker.Close(); err != nil {
			log.Printf("[MESSAGING] close: %v", err)
		}
	}()

	// Initialize Cron Manager (only if enabled via environment variable)
	if env.CRON_ENABLED {
		cronManager := cron.NewCronManager(db, svc.Statistics, blacklist)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Printf("Warning: Failed to start cron jobs: %v", err)
		} else {
			defer cronManager.Stop()
		}
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))

	uploadDir := ""
	if env.FILE_STORAGE == "" || env.FILE_STORAGE == "disk" {
		uploadDir = env.UPLOAD_DIR
	}
	router.SetupRoutes(
		server.GetEngine(),
		svc,
		middleware.NewAuthMiddleware(jwtManager, users, blacklist),
		bruteForceProtection,
		handlers.NewHealthHandler(store, redisCache),
		router.Config{
			AllowedOrigins:    env.CORS_ORIGINS,
			RateLimitRequests: env.RATE_LIMIT_REQUESTS,
			UploadDir:         uploadDir,
		},
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return server.Shutdown(shutdownCtx)
}
