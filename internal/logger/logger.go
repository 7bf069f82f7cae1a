package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"

	"taskchat/internal/config"
)

var output io.Writer = os.Stdout

func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

func createRotatingLogger(logFilePath string, cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// Setup points the standard logger at stdout, and additionally at a rotating
// file when LOG_OUTPUT names a directory.
func Setup(cfg *config.Config) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	dir := cfg.Logging.OutputPath
	if dir == "" || dir == "stdout" {
		output = os.Stdout
		log.SetOutput(output)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(dir, "taskchat")
	output = io.MultiWriter(os.Stdout, createRotatingLogger(logFilePath, cfg.Logging))
	log.SetOutput(output)

	log.Printf("Logging initialized: writing to %s", logFilePath)
	return nil
}

// Writer returns whatever Setup chose as the log destination.
func Writer() io.Writer {
	return output
}

// Gorm builds a gorm logger that shares the process log destination.
func Gorm(level string) gormlogger.Interface {
	return gormlogger.New(
		log.New(output, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  GormLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
