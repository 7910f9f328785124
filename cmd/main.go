package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	adminLoginHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/admin_login"
	attachOrderPaymentLinkHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/attach_order_payment_link"
	attachPaymentLinkHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/attach_payment_link"
	cancelBookingHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/cancel_booking"
	cancelOrderHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/cancel_order"
	createAvailabilityHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/create_availability"
	createBookingHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/create_booking"
	createOrderHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/create_order"
	createServiceHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/create_service"
	deleteAvailabilityHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/delete_availability"
	deleteServiceHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/delete_service"
	getAdminBookingsHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_admin_bookings"
	getAdminOrdersHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_admin_orders"
	getAvailableSlotsHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_user_bookings"
	getUserOrdersHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/get_user_orders"
	issueInvoiceHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/issue_invoice"
	listAvailabilityHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/list_availability"
	listServicesHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/list_services"
	markBookingPaidHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/mark_booking_paid"
	markOrderPaidHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/mark_order_paid"
	paymentWebhookHandler "github.com/waelosamahelmi/saroistavaloon/internal/api/handlers/payment_webhook"
	"github.com/waelosamahelmi/saroistavaloon/internal/api/middleware"
	"github.com/waelosamahelmi/saroistavaloon/internal/config"
	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	availabilityRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/availability"
	bookingRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/booking"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
	"github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/filestore"
	"github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/migrations"
	orderRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/order"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/materials"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/stripegateway"
	authService "github.com/waelosamahelmi/saroistavaloon/internal/service/auth"
	availabilityService "github.com/waelosamahelmi/saroistavaloon/internal/service/availability"
	bookingsService "github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
	catalogService "github.com/waelosamahelmi/saroistavaloon/internal/service/catalog"
	ordersService "github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
	createBookingUC "github.com/waelosamahelmi/saroistavaloon/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/waelosamahelmi/saroistavaloon/internal/usecase/get_available_slots"
	"github.com/waelosamahelmi/saroistavaloon/pkg/dbmetrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
	"github.com/waelosamahelmi/saroistavaloon/pkg/metrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/txmanager"
)

// Общие контракты хранилищ: их реализуют и Postgres репозитории, и filestore
type bookingStore interface {
	LockCalendar(ctx context.Context, calendar string) error
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

type availabilityStore interface {
	Create(ctx context.Context, w *domain.AvailabilityWindow) (*domain.AvailabilityWindow, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.AvailabilityWindow, error)
	ListActiveByDay(ctx context.Context, dayOfWeek int) ([]*domain.AvailabilityWindow, error)
}

type serviceStore interface {
	Create(ctx context.Context, s *domain.Service) (*domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Service, error)
	Deactivate(ctx context.Context, id string, now time.Time) error
}

type orderStore interface {
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	bookings     bookingStore
	availability availabilityStore
	services     serviceStore
	orders       orderStore
	txManager    txManager
	close        func() error
}

type publisher interface {
	Publish(ctx context.Context, e events.Event) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking service...")
	log.Info("Configuration loaded from config.toml (storage=%s, timezone=%s)", cfg.Storage.Driver, cfg.Business.Timezone)

	location, err := cfg.Business.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Business.Timezone, err)
	}

	// Коллектор создаётся всегда: доменные счётчики нужны сервисам, наружу он виден только если включён
	metricsCollector := metrics.New(cfg.Metrics.ServiceName)
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Error("Failed to close storage: %v", err)
		}
	}()

	// Публикация доменных событий
	var eventPublisher publisher
	if cfg.Events.Enabled {
		eventPublisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, log)
		log.Info("Kafka event publisher enabled (brokers=%v, topic=%s)", cfg.Events.Brokers, cfg.Events.Topic)
	} else {
		eventPublisher = events.NewLogPublisher(log)
		log.Info("Events are only logged (events.enabled=false)")
	}

	// Хранилище Idempotency-Key
	idempotencyTTL := time.Duration(cfg.Redis.IdempotencyTTLSec) * time.Second
	var (
		idempotencyStore middleware.IdempotencyStore
		redisClient      *redis.Client
		memoryStore      *middleware.MemoryIdempotencyStore
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("Redis is unavailable (%s): %v, falling back to in-memory idempotency store", cfg.Redis.Addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			idempotencyStore = middleware.NewRedisIdempotencyStore(redisClient, idempotencyTTL)
			log.Info("Idempotency store: redis %s", cfg.Redis.Addr)
		}
	}
	if idempotencyStore == nil {
		memoryStore = middleware.NewMemoryIdempotencyStore(idempotencyTTL)
		idempotencyStore = memoryStore
		log.Info("Idempotency store: in-memory")
	}

	// Интеграции
	materialsClient := materials.NewClient(
		cfg.Materials.URL,
		time.Duration(cfg.Materials.Timeout)*time.Second,
		log,
	)
	paymentVerifier := stripegateway.NewVerifier(cfg.Payments.StripeWebhookSecret)
	log.Info("Integration clients initialized (Materials=%s timeout=%ds)", cfg.Materials.URL, cfg.Materials.Timeout)

	// Инициализируем сервисы
	authSvc := authService.NewService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AdminPasswordHash,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		log,
	)
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.txManager,
		eventPublisher,
		metricsCollector,
		location,
		cfg.Payments.InvoiceDueDays,
		log,
	)
	catalogSvc := catalogService.NewService(store.services, log)
	availabilitySvc := availabilityService.NewService(store.availability, log)
	orderSvc := ordersService.NewService(
		store.orders,
		materialsClient,
		store.txManager,
		eventPublisher,
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.services,
		store.availability,
		store.txManager,
		eventPublisher,
		metricsCollector,
		cfg.Business.Calendar,
		location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.services,
		store.availability,
		store.bookings,
		store.txManager,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	listPublicServices := listServicesHandler.NewHandler(catalogSvc, false, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(paymentVerifier, bookingSvc, orderSvc, log)
	adminLogin := adminLoginHandler.NewHandler(authSvc, log)

	createBooking := createBookingHandler.NewHandler(createBookingUseCase, location, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	createOrder := createOrderHandler.NewHandler(orderSvc, log)
	getUserOrders := getUserOrdersHandler.NewHandler(orderSvc, log)
	cancelOrder := cancelOrderHandler.NewHandler(orderSvc, log)

	getAdminBookings := getAdminBookingsHandler.NewHandler(bookingSvc, log)
	attachPaymentLink := attachPaymentLinkHandler.NewHandler(bookingSvc, log)
	markBookingPaid := markBookingPaidHandler.NewHandler(bookingSvc, log)
	issueInvoice := issueInvoiceHandler.NewHandler(bookingSvc, log)
	listAvailability := listAvailabilityHandler.NewHandler(availabilitySvc, log)
	createAvailability := createAvailabilityHandler.NewHandler(availabilitySvc, log)
	deleteAvailability := deleteAvailabilityHandler.NewHandler(availabilitySvc, log)
	listAllServices := listServicesHandler.NewHandler(catalogSvc, true, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)
	getAdminOrders := getAdminOrdersHandler.NewHandler(orderSvc, log)
	attachOrderPaymentLink := attachOrderPaymentLinkHandler.NewHandler(orderSvc, log)
	markOrderPaid := markOrderPaidHandler.NewHandler(orderSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	// Добавляем metrics middleware и эндпоинт (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		log.Info("Rate limit enabled: %.2f rps, burst %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PAYMENT GATEWAY CALLBACK (подпись Stripe вместо токена)
	// ============================================================

	api.HandleFunc("/payments/stripe/webhook", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if limiter != nil {
		public.Use(middleware.RateLimit(limiter, log))
	}

	// Каталог активных услуг
	public.HandleFunc("/services", listPublicServices.Handle).Methods(http.MethodGet)

	// Свободные слоты на дату для услуги
	public.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Вход оператора
	public.HandleFunc("/admin/login", adminLogin.Handle).Methods(http.MethodPost)

	// ============================================================
	// OPERATOR ROUTES (Bearer токен с role=operator)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Auth(authSvc, log), middleware.RequireOperator(log))

	// --- Бронирования ---
	admin.HandleFunc("/bookings", getAdminBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}/payment-link", attachPaymentLink.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{bookingId}/mark-paid", markBookingPaid.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{bookingId}/invoice", issueInvoice.Handle).Methods(http.MethodPost)

	// --- Окна приёма ---
	admin.HandleFunc("/availability", listAvailability.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/availability", createAvailability.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/availability/{windowId}", deleteAvailability.Handle).Methods(http.MethodDelete)

	// --- Услуги ---
	admin.HandleFunc("/services", listAllServices.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services/{serviceId}", deleteService.Handle).Methods(http.MethodDelete)

	// --- Заказы материалов ---
	admin.HandleFunc("/orders", getAdminOrders.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{orderId}/payment-link", attachOrderPaymentLink.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{orderId}/mark-paid", markOrderPaid.Handle).Methods(http.MethodPost)

	// ============================================================
	// CUSTOMER ROUTES (Bearer токен)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(authSvc, log))
	if limiter != nil {
		protected.Use(middleware.RateLimit(limiter, log))
	}
	idempotent := middleware.Idempotency(idempotencyStore, log)

	// --- Бронирования ---
	protected.Handle("/bookings", idempotent(http.HandlerFunc(createBooking.Handle))).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// --- Заказы ---
	protected.Handle("/orders", idempotent(http.HandlerFunc(createOrder.Handle))).Methods(http.MethodPost)
	protected.HandleFunc("/orders", getUserOrders.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{orderId}/cancel", cancelOrder.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if limiter != nil {
		limiter.Stop()
	}
	if memoryStore != nil {
		memoryStore.Stop()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}
	if err := eventPublisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// openStorage поднимает выбранный драйвер хранения
func openStorage(cfg *config.Config, collector *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		fs, err := filestore.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("Using JSON file storage at %s", cfg.Storage.DataDir)

		return &storage{
			bookings:     fs.Bookings(),
			availability: fs.Availability(),
			services:     fs.Services(),
			orders:       fs.Orders(),
			txManager:    fs.TxManager(),
			close:        func() error { return nil },
		}, nil

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Database.AutoMigrate {
			if err := migrations.Up(context.Background(), db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			log.Info("Database migrations applied")
		}

		// Без метрик recorder должен быть nil интерфейсом, а не nil указателем
		var recorder dbmetrics.Recorder
		if cfg.Metrics.Enabled {
			recorder = collector
			log.Info("Database metrics collection started")
		}
		wrapped := dbmetrics.WrapWithDefault(db, recorder, stopCh)

		return &storage{
			bookings:     bookingRepo.NewRepository(wrapped),
			availability: availabilityRepo.NewRepository(wrapped),
			services:     catalogRepo.NewRepository(wrapped),
			orders:       orderRepo.NewRepository(wrapped),
			txManager:    txmanager.NewTransactionManager(wrapped),
			close:        db.Close,
		}, nil
	}
}
