package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"youth-press/cmd/api/auth"
	"youth-press/cmd/api/router"
	"youth-press/cmd/api/services"
	"youth-press/config"
	"youth-press/db"
	"youth-press/discussion"
	"youth-press/eventbus"
	"youth-press/events"
	"youth-press/llm"
	"youth-press/moderation"
	"youth-press/quota"
	"youth-press/repositories"
	"youth-press/review"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB 초기화
	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	database := db.Database()

	// ai_raw_response 저장 가능 여부는 기동 시 한 번만 확인한다.
	caps, err := db.ProbeCapabilities(ctx, database)
	if err != nil {
		config.WarnWithFields("capability probe failed, assuming raw responses are stored", config.Fields{"error": err.Error()})
		caps = db.Capabilities{StoreRawResponse: true}
	}

	articleRepo := repositories.NewArticleRepository(database)
	mediaRepo := repositories.NewArticleMediaRepository(database)
	discussionRepo := repositories.NewDiscussionRepository(database)
	postRepo := repositories.NewPostRepository(database)
	logRepo := repositories.NewModerationLogRepository(database)
	userRepo := repositories.NewUserRepository(database)

	counterStore, closeCounter, err := newCounterStore(cfg.RateLimit, database)
	if err != nil {
		config.Logger.Errorf("failed to initialize rate limit store: %v", err)
		os.Exit(1)
	}
	defer closeCounter()

	provider, err := llm.New(ctx, cfg.AI, repositories.NewAILogRepository(database))
	if err != nil {
		config.Logger.Errorf("failed to initialize AI provider: %v", err)
		os.Exit(1)
	}
	if provider == nil {
		config.Logger.Warn("AI provider not configured, reviews run on fallback rules only")
	}
	orchestrator := review.NewOrchestrator(provider, cfg.Review.Timeout())
	recorder := review.NewRecorder(articleRepo, caps.StoreRawResponse)

	// EventBus 초기화
	bus, err := eventbus.New(cfg.EventBus)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()
	dispatcher := moderation.NewEventDispatcher(bus, events.SourceAPI)
	moderationHandlers := moderation.NewEventHandlers(postRepo, logRepo)

	var wg sync.WaitGroup
	if cfg.EventBus.Driver == eventbus.DriverMemory {
		// memory 버스는 같은 프로세스 안에서만 전달되므로 consumer 도 여기서 돌린다.
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := bus.Subscribe(ctx, cfg.EventBus.GroupID, eventbus.TopicModerationEvents, moderationHandlers.Handle)
			if err != nil && !errors.Is(err, context.Canceled) {
				config.Logger.Errorf("in-process moderation consumer stopped: %v", err)
			}
		}()
	}

	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		config.Logger.Errorf("failed to initialize JWT manager: %v", err)
		os.Exit(1)
	}

	guard := discussion.NewGuard(
		quota.NewDailyLimiter(counterStore, cfg.Discussion.MaxPostsPerDay, cfg.Discussion.Location()),
		discussion.Limits{MaxWords: cfg.Discussion.MaxWords, MinChars: cfg.Discussion.MinChars},
	)

	r := router.New(router.Deps{
		Tokens:         jwtManager,
		Roles:          userRepo,
		InternalAPIKey: cfg.Auth.InternalAPIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Articles:       services.NewArticleService(articleRepo, mediaRepo, orchestrator, recorder, dispatcher, cfg.Review.BatchLimit),
		Discussions:    services.NewDiscussionService(articleRepo, discussionRepo, postRepo, guard, dispatcher, dispatcher),
		Moderation:     services.NewModerationService(postRepo, logRepo, dispatcher, moderationHandlers),
		Health: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		config.InfoWithFields("starting api server", config.Fields{
			"addr":          cfg.Server.Addr,
			"ai_configured": orchestrator.AIConfigured(),
			"eventbus":      cfg.EventBus.Driver,
			"store_raw":     caps.StoreRawResponse,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	config.Logger.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("api server shutdown error: %v", err)
	}

	cancel()
	wg.Wait()
	if err := db.Disconnect(shutdownCtx); err != nil {
		config.Logger.Errorf("mongo disconnect error: %v", err)
	}

	config.Logger.Info("api server stopped")
}

// newCounterStore 는 rate_limit.backend 에 따라 일일 쿼터 저장소를 고른다.
func newCounterStore(cfg config.RateLimitConfig, database *mongo.Database) (quota.CounterStore, func(), error) {
	switch cfg.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return quota.NewRedisCounterStore(rdb), func() { _ = rdb.Close() }, nil
	case "mongo", "":
		return repositories.NewRateEventRepository(database), func() {}, nil
	}
	return nil, nil, errors.New("unknown rate_limit.backend: " + cfg.Backend)
}
