// Пакет config — загрузка и валидация конфигурации FaultDesk.
//
// Источники в порядке приоритета (последний побеждает):
//  1. значения по умолчанию;
//  2. YAML-файл (флаг --config или переменная FD_CONFIG_PATH);
//  3. переменные окружения с префиксом FD_.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

const (
	envPrefix     = "FD_"
	configEnvVar  = "FD_CONFIG_PATH"
	keyDelimiter  = "."
	minPort       = 1
	maxPort       = 65535
	maxUploadSize = 1 << 30
)

// Config содержит все параметры конфигурации FaultDesk.
type Config struct {
	HTTP       HTTPConfig       `koanf:"http" yaml:"http"`
	Storage    StorageConfig    `koanf:"storage" yaml:"storage"`
	Workflow   WorkflowConfig   `koanf:"workflow" yaml:"workflow"`
	Analytics  AnalyticsConfig  `koanf:"analytics" yaml:"analytics"`
	Seed       SeedConfig       `koanf:"seed" yaml:"seed"`
	Sweeper    SweeperConfig    `koanf:"sweeper" yaml:"sweeper"`
	Log        LogConfig        `koanf:"log" yaml:"log"`
	Tracing    TracingConfig    `koanf:"tracing" yaml:"tracing"`
	Validation ValidationConfig `koanf:"validation" yaml:"validation"`
}

// HTTPConfig — параметры HTTP-сервера.
type HTTPConfig struct {
	Port            int           `koanf:"port" yaml:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StorageConfig — параметры хранения вложений.
type StorageConfig struct {
	// Директория для файлов вложений
	UploadDir string `koanf:"upload_dir" yaml:"upload_dir"`
	// Максимальный размер одного файла в байтах
	MaxFileSize int64 `koanf:"max_file_size" yaml:"max_file_size"`
	// Максимальное число файлов в одном запросе создания заявки
	MaxFiles int `koanf:"max_files" yaml:"max_files"`
	// Допустимые расширения (без точки, нижний регистр)
	AllowedExtensions []string `koanf:"allowed_extensions" yaml:"allowed_extensions"`
}

// WorkflowConfig — правила смены статусов.
type WorkflowConfig struct {
	// Проверять допустимость переходов (по умолчанию разрешён любой переход)
	EnforceTransitions bool `koanf:"enforce_transitions" yaml:"enforce_transitions"`
}

// AnalyticsConfig — параметры аналитики.
type AnalyticsConfig struct {
	// Часовой пояс, в котором определяется календарный день тренда
	Timezone string `koanf:"timezone" yaml:"timezone"`
}

// SeedConfig — загрузка демонстрационных заявок при старте.
type SeedConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	File    string `koanf:"file" yaml:"file"`
}

// SweeperConfig — фоновая очистка файлов без владельца.
type SweeperConfig struct {
	Enabled     bool          `koanf:"enabled" yaml:"enabled"`
	Interval    time.Duration `koanf:"interval" yaml:"interval"`
	GracePeriod time.Duration `koanf:"grace_period" yaml:"grace_period"`
}

// LogConfig — параметры логирования.
type LogConfig struct {
	Level      string `koanf:"level" yaml:"level"`
	Format     string `koanf:"format" yaml:"format"`
	Output     string `koanf:"output" yaml:"output"` // stdout, stderr, file
	File       string `koanf:"file" yaml:"file"`
	MaxSize    int    `koanf:"max_size" yaml:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups" yaml:"max_backups"`
	MaxAge     int    `koanf:"max_age" yaml:"max_age"` // дни
	Compress   bool   `koanf:"compress" yaml:"compress"`
}

// TracingConfig — экспорт трассировок по OTLP/gRPC.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled" yaml:"enabled"`
	Endpoint    string  `koanf:"endpoint" yaml:"endpoint"`
	SampleRate  float64 `koanf:"sample_rate" yaml:"sample_rate"`
	Environment string  `koanf:"environment" yaml:"environment"`
}

// ValidationConfig — проверка запросов по OpenAPI-схеме.
type ValidationConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// Location возвращает часовой пояс аналитики.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Analytics.Timezone)
}

// Load загружает конфигурацию. path — явный путь к YAML-файлу
// (пустой — используется FD_CONFIG_PATH, если задан).
func Load(path string) (*Config, error) {
	k := koanf.New(keyDelimiter)

	if err := k.Load(confmap.Provider(defaults(), keyDelimiter), nil); err != nil {
		return nil, fmt.Errorf("ошибка загрузки значений по умолчанию: %w", err)
	}

	if path == "" {
		path = os.Getenv(configEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, keyDelimiter, envTransform), nil); err != nil {
		return nil, fmt.Errorf("ошибка загрузки переменных окружения: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения конфигурации.
func (c *Config) Validate() error {
	if c.HTTP.Port < minPort || c.HTTP.Port > maxPort {
		return fmt.Errorf("http.port: значение %d вне диапазона %d-%d", c.HTTP.Port, minPort, maxPort)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout: значение должно быть положительным")
	}

	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		return fmt.Errorf("storage.upload_dir: обязательный параметр")
	}
	if c.Storage.MaxFileSize <= 0 || c.Storage.MaxFileSize > maxUploadSize {
		return fmt.Errorf("storage.max_file_size: значение %d вне диапазона 1-%d", c.Storage.MaxFileSize, maxUploadSize)
	}
	if c.Storage.MaxFiles <= 0 {
		return fmt.Errorf("storage.max_files: значение должно быть положительным")
	}
	if len(c.Storage.AllowedExtensions) == 0 {
		return fmt.Errorf("storage.allowed_extensions: список не может быть пустым")
	}
	for i, ext := range c.Storage.AllowedExtensions {
		c.Storage.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("analytics.timezone: %w", err)
	}

	if c.Sweeper.Enabled {
		if c.Sweeper.Interval <= 0 {
			return fmt.Errorf("sweeper.interval: значение должно быть положительным")
		}
		if c.Sweeper.GracePeriod < 0 {
			return fmt.Errorf("sweeper.grace_period: значение не может быть отрицательным")
		}
	}

	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format: недопустимое значение %q, допустимые: json, text", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.File == "" {
			return fmt.Errorf("log.file: обязателен при log.output=file")
		}
	default:
		return fmt.Errorf("log.output: недопустимое значение %q, допустимые: stdout, stderr, file", c.Log.Output)
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint: обязателен при tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate: значение %v вне диапазона 0-1", c.Tracing.SampleRate)
		}
	}

	return nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"http.port":             5000,
		"http.read_timeout":     30 * time.Second,
		"http.write_timeout":    60 * time.Second,
		"http.idle_timeout":     120 * time.Second,
		"http.shutdown_timeout": 10 * time.Second,

		"storage.upload_dir":    "uploads",
		"storage.max_file_size": 10 * 1024 * 1024, // 10 MB
		"storage.max_files":     5,
		"storage.allowed_extensions": []string{
			"jpeg", "jpg", "png", "gif", "pdf", "doc", "docx", "txt", "xlsx", "xls",
		},

		"workflow.enforce_transitions": false,

		"analytics.timezone": "UTC",

		"seed.enabled": true,
		"seed.file":    "",

		"sweeper.enabled":      true,
		"sweeper.interval":     time.Hour,
		"sweeper.grace_period": 10 * time.Minute,

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file":        "",
		"log.max_size":    100,
		"log.max_backups": 5,
		"log.max_age":     30,
		"log.compress":    true,

		"tracing.enabled":     false,
		"tracing.endpoint":    "localhost:4317",
		"tracing.sample_rate": 1.0,
		"tracing.environment": "development",

		"validation.enabled": true,
	}
}

// envTransform переводит FD_HTTP_PORT в http.port.
// Ключи с подчёркиванием в имени поля задаются явным маппингом.
func envTransform(envKey, value string) (string, interface{}) {
	key := strings.ToLower(strings.TrimPrefix(envKey, envPrefix))
	if key == "config_path" {
		return "", nil
	}

	if mapped, ok := envKeyMappings[key]; ok {
		key = mapped
	} else {
		key = strings.Replace(key, "_", ".", 1)
	}

	if key == "storage.allowed_extensions" {
		return key, splitAndTrim(value)
	}
	return key, value
}

var envKeyMappings = map[string]string{
	"http_read_timeout":            "http.read_timeout",
	"http_write_timeout":           "http.write_timeout",
	"http_idle_timeout":            "http.idle_timeout",
	"http_shutdown_timeout":        "http.shutdown_timeout",
	"storage_upload_dir":           "storage.upload_dir",
	"storage_max_file_size":        "storage.max_file_size",
	"storage_max_files":            "storage.max_files",
	"storage_allowed_extensions":   "storage.allowed_extensions",
	"workflow_enforce_transitions": "workflow.enforce_transitions",
	"sweeper_grace_period":         "sweeper.grace_period",
	"log_max_size":                 "log.max_size",
	"log_max_backups":              "log.max_backups",
	"log_max_age":                  "log.max_age",
	"tracing_sample_rate":          "tracing.sample_rate",
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
