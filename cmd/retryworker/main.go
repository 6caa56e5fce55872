package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"youth-press/config"
	"youth-press/eventbus"
)

// retryworker 는 지연 재시도 토픽의 이벤트를 delay 가 지난 뒤 기본 토픽으로 되돌린다.
// kafka 드라이버 전용이다. memory 버스는 자체 타이머로 재시도한다.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := cfg.EventBus.Brokers
	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(ctx, brokers, t, 3); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topics for %s: %v", t.Base(), err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	groupID := cfg.EventBus.GroupID + "-retry-worker"

	config.Logger.Info("starting retry worker service with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	for _, topic := range eventbus.AllTopics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topicGroupID := groupID + "-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, topicGroupID, topic); err != nil && !errors.Is(err, context.Canceled) {
				config.Logger.Errorf("eventbus retry reinjector error for %s: %v", topic.Base(), err)
			}
		}()
	}

	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down retry worker service...")

	cancel()
	wg.Wait()

	config.Logger.Info("retry worker service stopped")
}
