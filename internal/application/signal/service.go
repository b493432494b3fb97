package signal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	notifyDomain "trade-signals/internal/domain/notify"
	signalDomain "trade-signals/internal/domain/signal"
)

// Repository 存取訊號紀錄。
type Repository interface {
	Insert(ctx context.Context, s signalDomain.Signal) error
	Get(ctx context.Context, id string) (signalDomain.Signal, error)
	UpdateStatus(ctx context.Context, id string, status signalDomain.Status) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, onlyActive bool) ([]signalDomain.Signal, error)
}

// Broadcaster 接收通知事件做非同步廣播；Enqueue 不得阻塞寫入路徑。
type Broadcaster interface {
	Enqueue(event notifyDomain.Event)
}

// CreateInput 建立訊號的輸入欄位。
type CreateInput struct {
	Pair          string
	Direction     string
	OrderType     string
	Entry         float64
	StopLoss      float64
	Target1       float64
	Target2       *float64
	Target3       *float64
	AnalysisText  string
	ChartImageRef string
}

// Service 為 Signal.status 的唯一寫入者，負責生命週期與通知觸發。
type Service struct {
	repo        Repository
	broadcaster Broadcaster
	now         func() time.Time
	newID       func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService 建立生命週期服務。
func NewService(repo Repository, broadcaster Broadcaster) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		now:         time.Now,
		newID:       uuid.NewString,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockFor 取得單一訊號的寫入鎖，同一 id 的轉移需序列化。
func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Service) releaseLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

// Create 驗證並發佈新訊號，成功後觸發一次新訊號廣播。
func (s *Service) Create(ctx context.Context, in CreateInput) (signalDomain.Signal, error) {
	sig := signalDomain.Signal{
		ID:            s.newID(),
		Pair:          in.Pair,
		Direction:     signalDomain.Direction(in.Direction),
		OrderType:     in.OrderType,
		Entry:         in.Entry,
		StopLoss:      in.StopLoss,
		Target1:       in.Target1,
		Target2:       in.Target2,
		Target3:       in.Target3,
		AnalysisText:  in.AnalysisText,
		ChartImageRef: in.ChartImageRef,
		Status:        signalDomain.StatusActive,
		CreatedAt:     s.now(),
	}
	if err := sig.Validate(); err != nil {
		return signalDomain.Signal{}, err
	}
	if err := s.repo.Insert(ctx, sig); err != nil {
		return signalDomain.Signal{}, fmt.Errorf("insert signal: %w", err)
	}
	s.enqueue(notifyDomain.EventForCreate(sig))
	return sig, nil
}

// Transition 套用一次狀態轉移；非法前進回傳 InvalidTransitionError，成功則觸發狀態廣播。
func (s *Service) Transition(ctx context.Context, id string, newStatus signalDomain.Status) (signalDomain.Signal, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return signalDomain.Signal{}, err
	}
	if !cur.Status.CanTransition(newStatus) {
		return signalDomain.Signal{}, signalDomain.InvalidTransitionError{From: cur.Status, To: newStatus}
	}
	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return signalDomain.Signal{}, fmt.Errorf("update status: %w", err)
	}
	cur.Status = newStatus
	s.enqueue(notifyDomain.EventForStatus(cur))
	return cur, nil
}

// Delete 移除訊號；刪除不存在的 id 不是錯誤。
func (s *Service) Delete(ctx context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	defer s.releaseLock(id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete signal: %w", err)
	}
	return nil
}

// Get 讀取單一訊號。
func (s *Service) Get(ctx context.Context, id string) (signalDomain.Signal, error) {
	return s.repo.Get(ctx, id)
}

// List 列出訊號，onlyActive 時過濾終態。
func (s *Service) List(ctx context.Context, onlyActive bool) ([]signalDomain.Signal, error) {
	return s.repo.List(ctx, onlyActive)
}

func (s *Service) enqueue(ev notifyDomain.Event) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Enqueue(ev)
}
