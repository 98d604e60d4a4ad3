package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/logger"
)

// SetupLogger initializes the application logger with file and stdout output.
// The file side rotates by size so long-running processes do not fill the disk.
// Returns the rotating writer (caller must close) and any error encountered.
func SetupLogger(cfg *config.Config) (io.Closer, error) {
	return setupLogger(cfg, os.Stdout)
}

func setupLogger(cfg *config.Config, console io.Writer) (io.Closer, error) {
	if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateLogsDir, err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, LogFileName),
		MaxSize:    LogFileMaxSizeMB,
		MaxBackups: LogFileMaxBackups,
		MaxAge:     LogFileMaxAgeDays,
		Compress:   true,
	}

	logCfg := logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, false)
	logger.InitLoggerWithWriter(logCfg, io.MultiWriter(console, fileWriter))

	slog.Info(LogMsgLoggingInitialized, "level", logCfg.LogLevel(), "file", fileWriter.Filename)
	slog.Info(LogMsgStartingCritiQuest,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"version", cfg.Version)

	slog.Debug(LogMsgConfigurationLoaded,
		"store_backend", cfg.StoreBackend,
		"catalog_path", cfg.CatalogPath,
		"offline_queue_path", cfg.OfflineQueuePath,
		"port", cfg.Port)

	return fileWriter, nil
}
