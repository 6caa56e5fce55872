package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"youth-press/config"
	"youth-press/db"
	"youth-press/eventbus"
	"youth-press/moderation"
	"youth-press/repositories"
)

// moderator 는 게시글 안전 검사와 모더레이션 로그 기록 이벤트를 소비한다.
// eventbus.driver 가 memory 이면 같은 consumer 가 api 프로세스 안에서 돈다.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EventBus.Driver != eventbus.DriverKafka {
		config.Logger.Errorf("moderator requires eventbus.driver=kafka, got %q", cfg.EventBus.Driver)
		os.Exit(1)
	}

	// MongoDB 초기화
	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	// EventBus 초기화 및 토픽 보장
	if err := eventbus.EnsureTopics(ctx, cfg.EventBus.Brokers, eventbus.TopicModerationEvents, 3); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.New(cfg.EventBus)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	database := db.Database()
	handlers := moderation.NewEventHandlers(
		repositories.NewPostRepository(database),
		repositories.NewModerationLogRepository(database),
	)

	config.Logger.Info("starting moderator service with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := bus.Subscribe(ctx, cfg.EventBus.GroupID+"-moderator", eventbus.TopicModerationEvents, handlers.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			config.Logger.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	// 종료 신호 대기
	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down moderator service...")

	cancel()
	wg.Wait()

	config.Logger.Info("moderator service stopped")
}
