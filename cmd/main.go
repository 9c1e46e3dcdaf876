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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	createEventTypeHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_event_type"
	createHostHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_host"
	deactivateHostHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/deactivate_host"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getEventTypeHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_event_type"
	getHostBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_host_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_booking_status"
	updateEventTypeHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_event_type"
	updateHostAvailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_host_availability"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	eventTypeRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	hostRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/host"
	calendarClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/calendarsync"
	notifyClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	eventTypesService "github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes"
	hostsService "github.com/m04kA/SMC-SchedulingService/internal/service/hosts"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	calendar := calendarClient.NewClient(
		cfg.CalendarService.URL,
		time.Duration(cfg.CalendarService.Timeout)*time.Second,
		log,
	)
	notifier := notifyClient.NewClient(
		cfg.NotificationService.URL,
		time.Duration(cfg.NotificationService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CalendarService=%s timeout=%ds, NotificationService=%s timeout=%ds)",
		cfg.CalendarService.URL, cfg.CalendarService.Timeout,
		cfg.NotificationService.URL, cfg.NotificationService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository   *bookingRepo.Repository
		eventTypeRepository *eventTypeRepo.Repository
		hostRepository      *hostRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		eventTypeRepository = eventTypeRepo.NewRepository(wrappedDB)
		hostRepository = hostRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB).WithMetrics(metricsCollector)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		eventTypeRepository = eventTypeRepo.NewRepository(db)
		hostRepository = hostRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		notifier,
		metricsCollector,
		log,
	)
	eventTypeSvc := eventTypesService.NewService(
		eventTypeRepository,
		hostRepository,
		txMgr,
		log,
	)
	hostSvc := hostsService.NewService(
		hostRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	// Резолвер слотов переиспользуется внутри бронирующих use case:
	// внутри транзакции его чтения видят состояние транзакции
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		eventTypeRepository,
		hostRepository,
		calendar,
		metricsCollector,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		eventTypeRepository,
		getAvailableSlotsUseCase,
		notifier,
		txMgr,
		metricsCollector,
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		eventTypeRepository,
		getAvailableSlotsUseCase,
		notifier,
		txMgr,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getHostBookings := getHostBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	createEventType := createEventTypeHandler.NewHandler(eventTypeSvc, log)
	getEventType := getEventTypeHandler.NewHandler(eventTypeSvc, log)
	updateEventType := updateEventTypeHandler.NewHandler(eventTypeSvc, log)
	createHost := createHostHandler.NewHandler(hostSvc, log)
	updateHostAvailability := updateHostAvailabilityHandler.NewHandler(hostSvc, log)
	deactivateHost := deactivateHostHandler.NewHandler(hostSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты типа события за период
	api.HandleFunc("/event-types/{eventTypeId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Конфигурация типа события
	api.HandleFunc("/event-types/{eventTypeId}", getEventType.Handle).Methods(http.MethodGet)

	// Создание бронирования гостем
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID или публичному reference
	api.HandleFunc("/bookings/{bookingRef}", getBooking.Handle).Methods(http.MethodGet)

	// Перенос бронирования
	api.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования (для хостов) ---
	// Расписание хоста за период
	protected.HandleFunc("/hosts/{hostId}/bookings", getHostBookings.Handle).Methods(http.MethodGet)

	// Ручное управление статусом (подтверждение, completed, no_show)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// --- Типы событий ---
	protected.HandleFunc("/event-types", createEventType.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/event-types/{eventTypeId}", updateEventType.Handle).Methods(http.MethodPut)

	// --- Хосты ---
	protected.HandleFunc("/hosts", createHost.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/hosts/{hostId}/availability", updateHostAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/hosts/{hostId}", deactivateHost.Handle).Methods(http.MethodDelete)

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

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
