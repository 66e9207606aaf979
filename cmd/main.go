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
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/cancel_appointment"
	cancelByTokenHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/cancel_by_token"
	confirmAppointmentHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/create_appointment"
	createBlockHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/create_block"
	deleteBlockHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/delete_block"
	getAppointmentHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/get_available_slots"
	getScheduleHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/get_schedule"
	listAppointmentsHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/list_appointments"
	listBlocksHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/list_blocks"
	markNoShowHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/mark_no_show"
	updateScheduleHandler "github.com/dvasko/SBP-AppointmentService/internal/api/handlers/update_schedule"
	"github.com/dvasko/SBP-AppointmentService/internal/api/middleware"
	"github.com/dvasko/SBP-AppointmentService/internal/config"
	"github.com/dvasko/SBP-AppointmentService/internal/infra/events"
	"github.com/dvasko/SBP-AppointmentService/internal/infra/ratelimit"
	appointmentRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/appointment"
	codeRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/code"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	tokenRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/token"
	catalogServiceClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/catalogservice"
	identityServiceClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
	"github.com/dvasko/SBP-AppointmentService/internal/scheduler"
	appointmentsService "github.com/dvasko/SBP-AppointmentService/internal/service/appointments"
	schedulesService "github.com/dvasko/SBP-AppointmentService/internal/service/schedules"
	cancelAppointmentUC "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
	confirmAppointmentUC "github.com/dvasko/SBP-AppointmentService/internal/usecase/confirm_appointment"
	createAppointmentUC "github.com/dvasko/SBP-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/dvasko/SBP-AppointmentService/internal/usecase/get_available_slots"
	markNoShowUC "github.com/dvasko/SBP-AppointmentService/internal/usecase/mark_no_show"
	"github.com/dvasko/SBP-AppointmentService/pkg/dbmetrics"
	"github.com/dvasko/SBP-AppointmentService/pkg/logger"
	"github.com/dvasko/SBP-AppointmentService/pkg/metrics"
	"github.com/dvasko/SBP-AppointmentService/pkg/simpletxmanager"
	"github.com/dvasko/SBP-AppointmentService/pkg/txmanager"
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

	log.Info("Starting SBP-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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

	// Подключаемся к Redis (шина событий и rate limiter)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	log.Info("Successfully connected to redis (addr=%s, stream=%s)", cfg.Redis.Addr, cfg.Redis.EventsStream)

	// Инициализируем интеграционных клиентов
	identityClient := identityServiceClient.NewClient(
		cfg.IdentityService.URL,
		time.Duration(cfg.IdentityService.Timeout)*time.Second,
		log,
	)
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (IdentityService=%s timeout=%ds, CatalogService=%s timeout=%ds)",
		cfg.IdentityService.URL, cfg.IdentityService.Timeout, cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		tokenRepository       *tokenRepo.Repository
		codeRepository        *codeRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		tokenRepository = tokenRepo.NewRepository(wrappedDB)
		codeRepository = codeRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		tokenRepository = tokenRepo.NewRepository(db)
		codeRepository = codeRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Публикация доменных событий в Redis Stream
	publisher := events.NewPublisher(rdb, cfg.Redis.EventsStream, log, metricsCollector)

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(appointmentRepository, log)
	schedulesSvc := schedulesService.NewService(scheduleRepository, identityClient, txMgr, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		tokenRepository,
		codeRepository,
		identityClient,
		catalogClient,
		publisher,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		catalogClient,
		log,
	)
	confirmAppointmentUseCase := confirmAppointmentUC.NewUseCase(appointmentRepository, publisher, txMgr, log)
	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(appointmentRepository, tokenRepository, publisher, txMgr, log)
	markNoShowUseCase := markNoShowUC.NewUseCase(appointmentRepository, publisher, txMgr, log)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(confirmAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	cancelByToken := cancelByTokenHandler.NewHandler(cancelAppointmentUseCase, log)
	markNoShow := markNoShowHandler.NewHandler(markNoShowUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(schedulesSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(schedulesSvc, log)
	createBlock := createBlockHandler.NewHandler(schedulesSvc, log)
	listBlocks := listBlocksHandler.NewHandler(schedulesSvc, log)
	deleteBlock := deleteBlockHandler.NewHandler(schedulesSvc, log)

	// Запускаем фоновый планировщик (напоминания и авто-неявки)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	if cfg.Scheduler.Enabled {
		bgScheduler := scheduler.New(
			appointmentRepository,
			markNoShowUseCase,
			publisher,
			time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second,
			metricsCollector,
			log,
		)
		go bgScheduler.Run(schedulerCtx)
	} else {
		log.Info("Background scheduler disabled")
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации, с rate limiter)
	// ============================================================

	public := api.PathPrefix("/public").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewLimiter(rdb, int64(cfg.RateLimit.Limit),
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
		public.Use(middleware.NewRateLimit(limiter, log).Middleware)
		log.Info("Public rate limiter enabled: %d requests per %ds", cfg.RateLimit.Limit, cfg.RateLimit.WindowSeconds)
	}

	// Публичное создание записи
	public.HandleFunc("/appointments", createAppointment.HandlePublic).Methods(http.MethodPost)

	// Доступные слоты мастера
	public.HandleFunc("/professionals/{professionalId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Отмена записи по одноразовому токену
	public.HandleFunc("/cancellations/{token}", cancelByToken.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.NewAuth(identityClient, log).Middleware)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.HandleInternal).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/confirm", confirmAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/cancel", cancelAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/no-show", markNoShow.Handle).Methods(http.MethodPost)

	// --- Слоты для внутреннего календаря ---
	protected.HandleFunc("/professionals/{professionalId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// --- Расписания мастеров ---
	protected.HandleFunc("/professionals/{professionalId}/schedule", getSchedule.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/professionals/{professionalId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/professionals/{professionalId}/blocks", createBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/professionals/{professionalId}/blocks", listBlocks.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/blocks/{blockId}", deleteBlock.Handle).Methods(http.MethodDelete)

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

	// Останавливаем планировщик и сбор метрик connection pool
	stopScheduler()
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

	log.Info("Server exited")
}
