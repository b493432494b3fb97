package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	notifyDomain "trade-signals/internal/domain/notify"
	signalDomain "trade-signals/internal/domain/signal"
)

// DeviceRepository 列出廣播對象並標記失效位址。
type DeviceRepository interface {
	ListActive(ctx context.Context) ([]signalDomain.DeviceRegistration, error)
	MarkInvalid(ctx context.Context, pushAddress string) error
}

// Pusher 對單一位址送出一次推播。
type Pusher interface {
	Push(ctx context.Context, to string, event notifyDomain.Event) error
}

// Dispatcher 將單一事件扇出到全部已註冊裝置，個別失敗互不影響。
type Dispatcher struct {
	devices     DeviceRepository
	pusher      Pusher
	concurrency int
	timeout     time.Duration
}

// NewDispatcher 建立廣播器；concurrency/timeout 未設定時使用保守預設。
func NewDispatcher(devices DeviceRepository, pusher Pusher, concurrency int, timeout time.Duration) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 8
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		devices:     devices,
		pusher:      pusher,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Broadcast 送出事件給每個有推播位址的使用者，回傳嘗試/成功數。
// 逾時前未完成的對象一律計為失敗，不重試。
func (d *Dispatcher) Broadcast(ctx context.Context, event notifyDomain.Event) notifyDomain.DispatchReport {
	regs, err := d.devices.ListActive(ctx)
	if err != nil {
		log.Printf("dispatch list devices failed: %v", err)
		return notifyDomain.DispatchReport{}
	}

	targets := make([]signalDomain.DeviceRegistration, 0, len(regs))
	for _, r := range regs {
		if r.PushAddress == "" {
			continue
		}
		targets = append(targets, r)
	}
	if len(targets) == 0 {
		return notifyDomain.DispatchReport{}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	jobs := make(chan signalDomain.DeviceRegistration)
	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0

	workers := d.concurrency
	if workers > len(targets) {
		workers = len(targets)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for reg := range jobs {
				if err := d.pusher.Push(ctx, reg.PushAddress, event); err != nil {
					if errors.Is(err, notifyDomain.ErrAddressGone) {
						if markErr := d.devices.MarkInvalid(context.WithoutCancel(ctx), reg.PushAddress); markErr != nil {
							log.Printf("mark invalid address failed user_id=%s: %v", reg.UserID, markErr)
						}
					}
					log.Printf("push failed user_id=%s: %v", reg.UserID, err)
					continue
				}
				mu.Lock()
				delivered++
				mu.Unlock()
			}
		}()
	}

feed:
	for _, reg := range targets {
		select {
		case jobs <- reg:
		case <-ctx.Done():
			// 逾時：尚未派發的對象直接視為失敗。
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	report := notifyDomain.DispatchReport{Attempted: len(targets), Delivered: delivered}
	log.Printf("dispatch done title=%q attempted=%d delivered=%d", event.Title, report.Attempted, report.Delivered)
	return report
}
