package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	authDomain "trade-signals/internal/domain/auth"
	signalDomain "trade-signals/internal/domain/signal"
	authinfra "trade-signals/internal/infrastructure/auth"
)

// Store 為無資料庫模式使用的記憶體存儲，涵蓋訊號、裝置註冊與使用者。
type Store struct {
	mu      sync.RWMutex
	signals map[string]signalDomain.Signal
	devices map[string]deviceRecord // userID -> record
	users   map[string]authDomain.User
	now     func() time.Time
}

type deviceRecord struct {
	reg     signalDomain.DeviceRegistration
	invalid bool
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		signals: make(map[string]signalDomain.Signal),
		devices: make(map[string]deviceRecord),
		users:   make(map[string]authDomain.User),
		now:     time.Now,
	}
}

// --- signal.Repository ---

func (s *Store) Insert(_ context.Context, sig signalDomain.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[sig.ID] = sig
	return nil
}

func (s *Store) Get(_ context.Context, id string) (signalDomain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signals[id]
	if !ok {
		return signalDomain.Signal{}, signalDomain.ErrNotFound
	}
	return sig, nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status signalDomain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signals[id]
	if !ok {
		return signalDomain.ErrNotFound
	}
	sig.Status = status
	s.signals[id] = sig
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.signals, id)
	return nil
}

func (s *Store) List(_ context.Context, onlyActive bool) ([]signalDomain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]signalDomain.Signal, 0, len(s.signals))
	for _, sig := range s.signals {
		if onlyActive && !sig.Active() {
			continue
		}
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- notify.DeviceRepository + 裝置註冊 ---

// Upsert 寫入或覆蓋使用者的推播位址，同時懶清除已標記失效的註冊。
func (s *Store) Upsert(_ context.Context, reg signalDomain.DeviceRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, rec := range s.devices {
		if rec.invalid {
			delete(s.devices, uid)
		}
	}
	reg.UpdatedAt = s.now()
	s.devices[reg.UserID] = deviceRecord{reg: reg}
	return nil
}

func (s *Store) ListActive(_ context.Context) ([]signalDomain.DeviceRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]signalDomain.DeviceRegistration, 0, len(s.devices))
	for _, rec := range s.devices {
		if rec.invalid || rec.reg.PushAddress == "" {
			continue
		}
		out = append(out, rec.reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) MarkInvalid(_ context.Context, pushAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, rec := range s.devices {
		if rec.reg.PushAddress == pushAddress {
			rec.invalid = true
			s.devices[uid] = rec
		}
	}
	return nil
}

// --- auth.UserRepository ---

func (s *Store) FindByEmail(_ context.Context, email string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return authDomain.User{}, errors.New("user not found")
}

func (s *Store) FindByID(_ context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, errors.New("user not found")
	}
	return u, nil
}

// SeedUsers 建立開發用帳號（admin/user），密碼 bcrypt 雜湊。
func (s *Store) SeedUsers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	adminHash, err := authinfra.HashPassword("admin123")
	if err != nil {
		return
	}
	userHash, err := authinfra.HashPassword("user123")
	if err != nil {
		return
	}
	s.users["00000000-0000-0000-0000-000000000001"] = authDomain.User{
		ID:       "00000000-0000-0000-0000-000000000001",
		Email:    "admin@example.com",
		Name:     "Admin",
		Role:     authDomain.RoleAdmin,
		Status:   authDomain.StatusActive,
		Password: adminHash,
	}
	s.users["00000000-0000-0000-0000-000000000002"] = authDomain.User{
		ID:       "00000000-0000-0000-0000-000000000002",
		Email:    "user@example.com",
		Name:     "User",
		Role:     authDomain.RoleUser,
		Status:   authDomain.StatusActive,
		Password: userHash,
	}
}
