package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	feedapp "trade-signals/internal/application/feed"
	"trade-signals/internal/infrastructure/config"
	feedinfra "trade-signals/internal/infrastructure/feed"
)

// alerts 訂閱訊號變更 feed，對新訊號與狀態推進輸出本地提示。
func main() {
	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		log.Fatalf("CRITICAL: load config failed: %v", err)
	}
	if cfg.Feed.URL == "" {
		log.Fatal("feed.url 未設定，無法訂閱")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	client := feedinfra.NewClient(feedinfra.Config{
		URL:          cfg.Feed.URL,
		ReadTimeout:  cfg.Feed.ReadTimeout,
		ReconnectMin: cfg.Feed.ReconnectMin,
		ReconnectMax: cfg.Feed.ReconnectMax,
	})
	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("feed client stopped: %v", err)
		}
	}()

	sub := feedapp.NewSubscriber(client, func(a feedapp.Alert) {
		switch a.Kind {
		case feedapp.AlertNewSignal:
			log.Printf("ALERT new-signal id=%s pair=%s", a.Signal.ID, a.Signal.Pair)
		case feedapp.AlertStatusChange:
			log.Printf("ALERT status-change id=%s pair=%s status=%s", a.Signal.ID, a.Signal.Pair, a.Signal.Status)
		}
	})

	log.Printf("subscribing to signal feed url=%s", cfg.Feed.URL)
	if err := sub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("subscriber stopped: %v", err)
	}
}
