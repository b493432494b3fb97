package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	notifyDomain "trade-signals/internal/domain/notify"
)

// Client 封裝 Expo push 閘道的 send API。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 建立推播閘道客戶端；baseURL 空值時使用 Expo 正式端點。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://exp.host/--/api/v2"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type pushRequest struct {
	To    string              `json:"to"`
	Title string              `json:"title"`
	Body  string              `json:"body"`
	Data  notifyDomain.Payload `json:"data"`
	Sound string              `json:"sound"`
}

type pushResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

// Push 對單一位址送出一次推播。非 2xx 或閘道回報錯誤都視為失敗；
// DeviceNotRegistered 另外以 ErrAddressGone 標記，供上層懶清除。
func (c *Client) Push(ctx context.Context, to string, event notifyDomain.Event) error {
	if c == nil {
		return fmt.Errorf("push client is nil")
	}
	if to == "" {
		return fmt.Errorf("push address is empty")
	}

	payload := pushRequest{
		To:    to,
		Title: event.Title,
		Body:  event.Body,
		Data:  event.Data,
		Sound: "default",
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/push/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push send failed status=%d body=%s", resp.StatusCode, string(raw))
	}

	var out pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode push response: %w", err)
	}
	if out.Data.Status == "error" {
		if out.Data.Details.Error == "DeviceNotRegistered" {
			return fmt.Errorf("device not registered to=%s: %w", to, notifyDomain.ErrAddressGone)
		}
		return fmt.Errorf("push rejected: %s", out.Data.Message)
	}
	return nil
}
