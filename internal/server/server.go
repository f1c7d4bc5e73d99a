// Пакет server — HTTP-сервер FaultDesk с graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/faultdesk/internal/api/generated"
	"github.com/bigkaa/faultdesk/internal/api/handlers"
	"github.com/bigkaa/faultdesk/internal/api/middleware"
	"github.com/bigkaa/faultdesk/internal/config"
)

// Server — HTTP-сервер FaultDesk.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными middleware и маршрутами.
// handler — реализация generated.ServerInterface.
// Если в конфигурации включена проверка запросов, подключается
// валидатор по встроенному OpenAPI-контракту.
func New(cfg *config.Config, logger *slog.Logger, handler generated.ServerInterface) (*Server, error) {
	router, err := NewRouter(cfg, logger, handler)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "http_server")),
		cfg:        cfg,
	}, nil
}

// NewRouter собирает chi-роутер: middleware и все маршруты контракта.
func NewRouter(cfg *config.Config, logger *slog.Logger, handler generated.ServerInterface) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Tracing())
	router.Use(middleware.MetricsMiddleware())

	if cfg.Validation.Enabled {
		doc, err := generated.GetSwagger()
		if err != nil {
			return nil, err
		}
		validator, err := middleware.OpenAPIValidator(doc, logger)
		if err != nil {
			return nil, err
		}
		router.Use(validator)
	}

	generated.HandlerWithOptions(handler, generated.ChiServerOptions{
		BaseRouter:       router,
		ErrorHandlerFunc: handlers.ParamErrorHandler,
	})
	return router, nil
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера.
// При отмене ctx выполняется graceful shutdown с таймаутом из конфигурации.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен", slog.String("addr", s.httpServer.Addr))

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}

// Addr возвращает адрес прослушивания.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
