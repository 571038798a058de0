package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/adapters/handlers"
	"github.com/chuhuyvt/FS-Project/internal/adapters/metrics"
	"github.com/chuhuyvt/FS-Project/internal/adapters/producers"
	"github.com/chuhuyvt/FS-Project/internal/adapters/repositories/datastore"
	"github.com/chuhuyvt/FS-Project/internal/config"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
	"github.com/chuhuyvt/FS-Project/internal/services"
	"github.com/chuhuyvt/FS-Project/internal/usecases"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// shutdownTimeout - время на корректную остановку компонентов
const shutdownTimeout = 15 * time.Second

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		fx.StopTimeout(shutdownTimeout),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		Modules(),
	)
}

// Modules собирает все модули приложения
func Modules() fx.Option {
	return fx.Options(
		ConfigModule,
		MetricsModule,
		RepositoryModule,
		DriverModule,
		ProducerModule,
		ServiceModule,
		UsecaseModule,
		HttpServerModule,
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(
		// Загрузчик конфигурации
		config.LoadConfiguration,
		NewLogger,
	),
)

var MetricsModule = fx.Module("metrics_module",
	fx.Provide(
		metrics.NewRegistry,
		func(reg *prometheus.Registry) interfaces.Metrics {
			return metrics.NewPromMetrics(reg)
		},
	),
)

var RepositoryModule = fx.Module("repository_module",
	fx.Provide(
		// Предоставляем DataStore как реализацию интерфейса Repository
		func(ds interfaces.DataStoreRepository) interfaces.Repository {
			return struct{ interfaces.DataStoreRepository }{ds}
		},
		// Хранилище последних значений тегов
		datastore.NewDataStore,
	),
)

var DriverModule = fx.Module("driver_module",
	fx.Provide(NewDriver),
)

var ProducerModule = fx.Module("producer_module",
	fx.Provide(producers.NewDataProducer),
	fx.Invoke(InvokeProducer),
)

var ServiceModule = fx.Module("service_module",
	fx.Provide(
		services.NewEndpointValidator,
		func(cfg *config.AppConfig) services.RegistryConfig {
			return services.RegistryConfig{
				Default:  cfg.DefaultEndpointConfig(),
				ProbeTag: cfg.TagAccess.ProbeTag,
			}
		},
		// Реестр подключений к контроллерам
		services.NewConnectionService,
		func(cfg *config.AppConfig) services.ReaderConfig {
			return services.ReaderConfig{TrackChanges: cfg.Tracking.Enabled}
		},
		services.NewTagReaderService,
		services.NewMonitorService,
		// Сервис фонового опроса тегов
		func(
			cfg *config.AppConfig,
			reader interfaces.TagReader,
			registry interfaces.ConnectionRegistry,
			producer interfaces.DataProducer,
			logger *slog.Logger,
		) interfaces.PollingService {
			return services.NewPollingService(cfg.Polling.DefaultInterval, reader, registry, producer, logger)
		},
	),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(
		// Конструктор для бизнес-логики (use cases)
		usecases.NewUsecases,
	),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		// Обработчики HTTP-запросов
		handlers.NewHandler,
		// Роутер
		handlers.ProvideRouter,
	),
	// Запускаем сервер и останавливаем опрос при завершении
	fx.Invoke(InvokeHttpServer, InvokePollingService),
)

// NewDriver выбирает драйвер доступа к тегам по tag_access.driver
func NewDriver(cfg *config.AppConfig, logger *slog.Logger) (plctag.Driver, error) {
	switch cfg.TagAccess.Driver {
	case config.DriverOPCUA:
		logger.Info("доступ к тегам через OPC UA", "port", cfg.TagAccess.OPCUA.Port, "namespace", cfg.TagAccess.OPCUA.Namespace)
		return plctag.NewOPCUADriver(cfg.TagAccess.OPCUA), nil
	default:
		logger.Info("доступ к тегам через симулятор", "tags", len(cfg.Simulator.Tags), "unreachable", cfg.Simulator.Unreachable)
		sim, err := plctag.NewSimulator(cfg.Simulator)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}
}

// InvokeHttpServer запускает HTTP-сервер
func InvokeHttpServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.AppConfig, h http.Handler, logger *slog.Logger) {
	serverAddr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("сервер запущен", "addr", "http://localhost"+serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("не удалось запустить сервер", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("остановка HTTP-сервера")
			return server.Shutdown(ctx)
		},
	})
}

// InvokePollingService останавливает все фоновые опросы при завершении приложения
func InvokePollingService(lc fx.Lifecycle, poller interfaces.PollingService, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("остановка сервиса опроса")
			done := make(chan struct{})
			go func() {
				poller.StopAllPolling()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// InvokeProducer закрывает продюсер при завершении приложения
func InvokeProducer(lc fx.Lifecycle, producer interfaces.DataProducer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})
}
