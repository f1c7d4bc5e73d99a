// sweeper.go — фоновая очистка директории вложений.
//
// Sweeper выполняет две задачи:
//  1. Удаляет незавершённые записи (*.tmp) старше grace period
//  2. Удаляет файлы, не привязанные ни к одной заявке, старше grace period
//
// Такие файлы появляются при сбое между записью файла и созданием заявки.
// Grace period защищает файлы, которые записаны, но ещё не привязаны.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/faultdesk/internal/storage/filestore"
)

// Prometheus метрики sweeper
var (
	sweeperRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fd_sweeper_runs_total",
		Help: "Общее количество запусков очистки вложений",
	})

	sweeperFilesDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fd_sweeper_files_deleted_total",
		Help: "Общее количество файлов, удалённых очисткой",
	}, []string{"kind"})

	sweeperDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fd_sweeper_duration_seconds",
		Help:    "Длительность очистки вложений в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
)

// ReferenceSource — множество файлов, привязанных к заявкам.
type ReferenceSource interface {
	ReferencedFiles() map[string]struct{}
}

// SweepResult — результат одного запуска очистки.
type SweepResult struct {
	// OrphansDeleted — удалённые файлы без заявки
	OrphansDeleted int
	// TempDeleted — удалённые незавершённые записи
	TempDeleted int
	// Skipped — файлы без заявки, ещё не вышедшие за grace period
	Skipped int
	// Errors — количество ошибок удаления
	Errors   int
	Duration time.Duration
}

// Sweeper — сервис очистки вложений.
type Sweeper struct {
	files       *filestore.FileStore
	refs        ReferenceSource
	interval    time.Duration
	gracePeriod time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper создаёт сервис очистки.
func NewSweeper(
	files *filestore.FileStore,
	refs ReferenceSource,
	interval, gracePeriod time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		files:       files,
		refs:        refs,
		interval:    interval,
		gracePeriod: gracePeriod,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "sweeper")),
	}
}

// Start запускает фоновую горутину с периодическим тикером.
func (s *Sweeper) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(sweepCtx)

	s.logger.Info("Очистка вложений запущена",
		slog.String("interval", s.interval.String()),
		slog.String("grace_period", s.gracePeriod.String()),
	)
}

// Stop останавливает фоновый процесс и ждёт завершения текущего цикла.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("Очистка вложений остановлена")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce выполняет один цикл очистки.
// Потокобезопасен: параллельные вызовы выполняются последовательно.
func (s *Sweeper) RunOnce() *SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &SweepResult{}

	entries, err := s.files.List()
	if err != nil {
		s.logger.Error("Ошибка чтения директории вложений", slog.String("error", err.Error()))
		result.Errors++
		return result
	}

	// Снимок ссылок берётся после списка файлов: файл, привязанный
	// между двумя вызовами, окажется в снимке и не будет удалён.
	refs := s.refs.ReferencedFiles()
	cutoff := s.now().Add(-s.gracePeriod)

	for _, e := range entries {
		if e.Temp {
			if !e.ModTime.Before(cutoff) {
				continue
			}
			if err := s.files.RemoveTemp(e.Handle); err != nil {
				s.logError("Ошибка удаления временного файла", e.Handle, err)
				result.Errors++
				continue
			}
			result.TempDeleted++
			continue
		}

		if _, ok := refs[e.Handle]; ok {
			continue
		}
		if !e.ModTime.Before(cutoff) {
			result.Skipped++
			continue
		}
		if err := s.files.Delete(e.Handle); err != nil {
			s.logError("Ошибка удаления файла без заявки", e.Handle, err)
			result.Errors++
			continue
		}
		s.logger.Debug("Удалён файл без заявки", slog.String("handle", e.Handle))
		result.OrphansDeleted++
	}

	result.Duration = time.Since(start)

	sweeperRunsTotal.Inc()
	sweeperFilesDeletedTotal.WithLabelValues("orphan").Add(float64(result.OrphansDeleted))
	sweeperFilesDeletedTotal.WithLabelValues("temp").Add(float64(result.TempDeleted))
	sweeperDurationSeconds.Observe(result.Duration.Seconds())

	s.logger.Info("Очистка вложений завершена",
		slog.Int("orphans_deleted", result.OrphansDeleted),
		slog.Int("temp_deleted", result.TempDeleted),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", result.Duration),
	)

	return result
}

func (s *Sweeper) logError(msg, handle string, err error) {
	s.logger.Error(msg,
		slog.String("handle", handle),
		slog.String("error", err.Error()),
	)
}
