package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	notifyDomain "trade-signals/internal/domain/notify"
	signalDomain "trade-signals/internal/domain/signal"
)

type fakeDevices struct {
	mu      sync.Mutex
	regs    []signalDomain.DeviceRegistration
	listErr error
	invalid []string
}

func (f *fakeDevices) ListActive(context.Context) ([]signalDomain.DeviceRegistration, error) {
	return f.regs, f.listErr
}

func (f *fakeDevices) MarkInvalid(_ context.Context, addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalid = append(f.invalid, addr)
	return nil
}

type fakePusher struct {
	mu     sync.Mutex
	failFn func(to string) error
	pushed []string
	delay  time.Duration
}

func (f *fakePusher) Push(ctx context.Context, to string, _ notifyDomain.Event) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.failFn != nil {
		if err := f.failFn(to); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, to)
	return nil
}

func regs(addrs ...string) []signalDomain.DeviceRegistration {
	out := make([]signalDomain.DeviceRegistration, 0, len(addrs))
	for i, a := range addrs {
		out = append(out, signalDomain.DeviceRegistration{UserID: string(rune('a' + i)), PushAddress: a})
	}
	return out
}

func testEvent() notifyDomain.Event {
	return notifyDomain.Event{Title: "New Signal", Body: "BUY EURUSD @ 1.08"}
}

func TestDispatcher_Broadcast_AllDelivered(t *testing.T) {
	devices := &fakeDevices{regs: regs("ExponentPushToken[a]", "ExponentPushToken[b]", "ExponentPushToken[c]")}
	pusher := &fakePusher{}
	d := NewDispatcher(devices, pusher, 2, time.Second)

	report := d.Broadcast(context.Background(), testEvent())
	if report.Attempted != 3 || report.Delivered != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestDispatcher_Broadcast_PartialFailure(t *testing.T) {
	devices := &fakeDevices{regs: regs("ExponentPushToken[a]", "ExponentPushToken[bad]", "ExponentPushToken[c]", "ExponentPushToken[worse]")}
	pusher := &fakePusher{failFn: func(to string) error {
		if to == "ExponentPushToken[bad]" || to == "ExponentPushToken[worse]" {
			return errors.New("gateway unreachable")
		}
		return nil
	}}
	d := NewDispatcher(devices, pusher, 4, time.Second)

	report := d.Broadcast(context.Background(), testEvent())
	if report.Attempted != 4 {
		t.Fatalf("expected 4 attempts, got %d", report.Attempted)
	}
	if report.Delivered != 2 {
		t.Fatalf("expected 2 delivered, got %d", report.Delivered)
	}
}

func TestDispatcher_Broadcast_EmptySet(t *testing.T) {
	d := NewDispatcher(&fakeDevices{}, &fakePusher{}, 4, time.Second)
	report := d.Broadcast(context.Background(), testEvent())
	if report.Attempted != 0 || report.Delivered != 0 {
		t.Fatalf("expected zero report, got %+v", report)
	}
}

func TestDispatcher_Broadcast_SkipsBlankAddresses(t *testing.T) {
	devices := &fakeDevices{regs: []signalDomain.DeviceRegistration{
		{UserID: "u1", PushAddress: "ExponentPushToken[a]"},
		{UserID: "u2", PushAddress: ""},
	}}
	pusher := &fakePusher{}
	d := NewDispatcher(devices, pusher, 2, time.Second)

	report := d.Broadcast(context.Background(), testEvent())
	if report.Attempted != 1 || report.Delivered != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestDispatcher_Broadcast_MarksGoneAddresses(t *testing.T) {
	devices := &fakeDevices{regs: regs("ExponentPushToken[gone]", "ExponentPushToken[ok]")}
	pusher := &fakePusher{failFn: func(to string) error {
		if to == "ExponentPushToken[gone]" {
			return notifyDomain.ErrAddressGone
		}
		return nil
	}}
	d := NewDispatcher(devices, pusher, 2, time.Second)

	report := d.Broadcast(context.Background(), testEvent())
	if report.Delivered != 1 {
		t.Fatalf("expected 1 delivered, got %d", report.Delivered)
	}
	if len(devices.invalid) != 1 || devices.invalid[0] != "ExponentPushToken[gone]" {
		t.Fatalf("expected gone address to be marked, got %v", devices.invalid)
	}
}

func TestDispatcher_Broadcast_TimeoutCountsAsFailed(t *testing.T) {
	devices := &fakeDevices{regs: regs("ExponentPushToken[a]", "ExponentPushToken[b]", "ExponentPushToken[c]", "ExponentPushToken[d]")}
	pusher := &fakePusher{delay: 200 * time.Millisecond}
	d := NewDispatcher(devices, pusher, 1, 50*time.Millisecond)

	report := d.Broadcast(context.Background(), testEvent())
	if report.Attempted != 4 {
		t.Fatalf("expected attempted to count all recipients, got %d", report.Attempted)
	}
	if report.Delivered != 0 {
		t.Fatalf("expected no deliveries before timeout, got %d", report.Delivered)
	}
}

func TestQueue_DecouplesCaller(t *testing.T) {
	devices := &fakeDevices{regs: regs("ExponentPushToken[a]")}
	pusher := &fakePusher{}
	q := NewQueue(NewDispatcher(devices, pusher, 1, time.Second), 4)
	q.Start()
	defer q.Stop()

	q.Enqueue(testEvent())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pusher.mu.Lock()
		n := len(pusher.pushed)
		pusher.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("queued event was never dispatched")
}
