package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	signalDomain "trade-signals/internal/domain/signal"

	"trade-signals/internal/application/auth"
	notifyapp "trade-signals/internal/application/notify"
	signalapp "trade-signals/internal/application/signal"
	"trade-signals/internal/infra/memory"
	authinfra "trade-signals/internal/infrastructure/auth"
	"trade-signals/internal/infrastructure/config"
	"trade-signals/internal/infrastructure/persistence/postgres"
	"trade-signals/internal/infrastructure/push"
)

// deviceRepo 聚合廣播端需要的讀取與註冊端的寫入（Upsert 為後寫覆蓋）。
type deviceRepo interface {
	notifyapp.DeviceRepository
	Upsert(ctx context.Context, reg signalDomain.DeviceRegistration) error
}

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	mux      *http.ServeMux
	signals  *signalapp.Service
	devices  deviceRepo
	loginUC  *auth.LoginUseCase
	authz    *auth.Authorizer
	tokenSvc *authinfra.JWTIssuer
	queue    *notifyapp.Queue
	tokenTTL time.Duration
	db       *sql.DB
}

// NewServer 建立 API 伺服器；db 為 nil 時退回記憶體存儲。
func NewServer(cfg config.Config, db *sql.DB) *Server {
	store := memory.NewStore()
	store.SeedUsers()

	var signalRepo signalapp.Repository
	var devices deviceRepo
	var userRepo auth.UserRepository
	if db != nil {
		signalRepo = postgres.NewSignalRepo(db)
		devices = postgres.NewDeviceRepo(db)
		userRepo = postgres.NewUserRepo(db)
	} else {
		signalRepo = store
		devices = store
		userRepo = store
	}

	ttl := cfg.Auth.TokenTTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	tokenSvc := authinfra.NewJWTIssuer(cfg.Auth.Secret, ttl)
	loginUC := auth.NewLoginUseCase(userRepo, authinfra.BcryptHasher{}, tokenSvc)
	authz := auth.NewAuthorizer(userRepo)

	pusher := push.NewClient(cfg.Push.GatewayURL, cfg.Push.RequestTimeout)
	dispatcher := notifyapp.NewDispatcher(devices, pusher, cfg.Push.Concurrency, cfg.Push.DispatchTimeout)
	queue := notifyapp.NewQueue(dispatcher, cfg.Push.QueueSize)
	signals := signalapp.NewService(signalRepo, queue)

	s := &Server{
		mux:      http.NewServeMux(),
		signals:  signals,
		devices:  devices,
		loginUC:  loginUC,
		authz:    authz,
		tokenSvc: tokenSvc,
		queue:    queue,
		tokenTTL: ttl,
		db:       db,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/ping", s.handlePing)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)

	s.mux.Handle("/api/admin/signals", s.withAuth(auth.PermSignalWrite, s.handleCreateSignal))
	s.mux.Handle("/api/admin/signals/transition", s.withAuth(auth.PermSignalWrite, s.handleTransition))
	s.mux.Handle("/api/admin/signals/", s.withAuth(auth.PermSignalWrite, s.handleDeleteSignal))
	s.mux.Handle("/api/signals", s.withAuth(auth.PermSignalRead, s.handleListSignals))
	s.mux.Handle("/api/devices", s.withAuth(auth.PermDeviceWrite, s.handleRegisterDevice))
}

// Handler 回傳路由器。
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartQueue 啟動背景廣播佇列。
func (s *Server) StartQueue() {
	s.queue.Start()
}

// StopQueue 停止背景廣播佇列。
func (s *Server) StopQueue() {
	s.queue.Stop()
}
