package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/faultdesk/internal/api/handlers"
	"github.com/bigkaa/faultdesk/internal/config"
	"github.com/bigkaa/faultdesk/internal/domain/workflow"
	"github.com/bigkaa/faultdesk/internal/server"
	"github.com/bigkaa/faultdesk/internal/service"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
	"github.com/bigkaa/faultdesk/internal/storage/reports"
	"github.com/bigkaa/faultdesk/internal/storage/seed"
	"github.com/bigkaa/faultdesk/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return fmt.Errorf("ошибка настройки логгера: %w", err)
	}
	logger.Info("FaultDesk запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.HTTP.Port),
		slog.String("upload_dir", cfg.Storage.UploadDir),
		slog.Bool("enforce_transitions", cfg.Workflow.EnforceTransitions),
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Инициализация компонентов ---

	// 1. Трассировка
	tracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "faultdesk",
		Version:     config.Version,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Ошибка остановки трассировки", slog.String("error", err.Error()))
		}
	}()

	// 2. Хранилища
	files, err := filestore.New(cfg.Storage.UploadDir, cfg.Storage.MaxFileSize)
	if err != nil {
		return fmt.Errorf("ошибка инициализации FileStore: %w", err)
	}
	store := reports.New(files, logger)

	// 3. Сервисы
	guard := workflow.NewGuard(cfg.Workflow.EnforceTransitions)
	reportSvc := service.NewReportService(store, files, guard, service.UploadPolicy{
		MaxFiles:          cfg.Storage.MaxFiles,
		AllowedExtensions: cfg.Storage.AllowedExtensions,
	}, logger)
	analyticsSvc := service.NewAnalyticsService(store, service.WithLocation(loc))
	downloadSvc := service.NewDownloadService(files, store, logger)

	// 4. Демонстрационные данные
	if cfg.Seed.Enabled {
		if _, err := seed.Load(store, cfg.Seed.File, logger); err != nil {
			return err
		}
	}
	reportSvc.RefreshMetrics()

	// 5. Handlers
	reportsHandler := handlers.NewReportsHandler(reportSvc, analyticsSvc, handlers.UploadLimits{
		MaxFileSize: cfg.Storage.MaxFileSize,
		MaxFiles:    cfg.Storage.MaxFiles,
	}, loc, logger)
	apiHandler := handlers.NewAPIHandler(
		reportsHandler,
		handlers.NewFilesHandler(downloadSvc, logger),
		handlers.NewAnalyticsHandler(analyticsSvc, logger),
		handlers.NewSystemHandler(cfg, store, guard),
		handlers.NewHealthHandler(cfg.Storage.UploadDir),
		promhttp.Handler(),
	)

	srv, err := server.New(cfg, logger, apiHandler)
	if err != nil {
		return err
	}

	// 6. Запуск: HTTP-сервер и фоновая очистка вложений
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Sweeper.Enabled {
		sweeper := service.NewSweeper(files, store, cfg.Sweeper.Interval, cfg.Sweeper.GracePeriod, logger)
		sweeper.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			sweeper.Stop()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		return err
	}

	logger.Info("FaultDesk остановлен")
	return nil
}
