package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	feedapp "trade-signals/internal/application/feed"
)

// Config 定義 feed 連線參數。
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	BufferSize       int
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 32
	}
	return c
}

// Client 透過 websocket 訂閱訊號變更批次，斷線後自動重連。
// 每條連線的首批標記 Rehydrate，讓分類器重新進入 hydration。
type Client struct {
	cfg     Config
	batches chan feedapp.Batch
}

// NewClient 建立 feed 客戶端。
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		batches: make(chan feedapp.Batch, cfg.BufferSize),
	}
}

// Next 阻塞直到下一批變更抵達。批次依抵達順序送出，不重排。
func (c *Client) Next(ctx context.Context) (feedapp.Batch, error) {
	select {
	case b := <-c.batches:
		return b, nil
	case <-ctx.Done():
		return feedapp.Batch{}, ctx.Err()
	}
}

// Run 維持連線直到 ctx 取消；斷線以指數退避重連。
func (c *Client) Run(ctx context.Context) error {
	delay := c.cfg.ReconnectMin
	for {
		err := c.readOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("feed connection lost url=%s: %v (reconnecting in %s)", c.cfg.URL, err, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > c.cfg.ReconnectMax {
			delay = c.cfg.ReconnectMax
		}
	}
}

type wireBatch struct {
	Changes []feedapp.Change `json:"changes"`
}

// readOnce 進行一次撥接與讀取迴圈，連線結束時回傳原因。
func (c *Client) readOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()

	// ctx 取消時主動斷線，讓 ReadMessage 立刻返回。
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	first := true
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var wb wireBatch
		if err := json.Unmarshal(raw, &wb); err != nil {
			log.Printf("feed: dropping malformed batch: %v", err)
			continue
		}

		batch := feedapp.Batch{Changes: wb.Changes, Rehydrate: first}
		first = false
		select {
		case c.batches <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
