package logger

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"synthkit/internal/models"
)

// ConsoleLogger implements the Service interface by writing to stderr.
// It lets the toolkit run without a database.
type ConsoleLogger struct {
	out *log.Logger
}

// NewConsoleLogger creates a new console logger
func NewConsoleLogger() Service {
	return &ConsoleLogger{
		out: log.New(os.Stderr, "", log.LstdFlags|log.LUTC),
	}
}

// LogInfo logs an informational message
func (l *ConsoleLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	l.write(ctx, "INFO", operation, "", message, nil, metadata)
}

// LogSuccess logs a successful operation
func (l *ConsoleLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	l.write(ctx, "INFO", operation, targetName, message, nil, metadata)
}

// LogError logs an error with its severity
func (l *ConsoleLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	l.write(ctx, "ERROR("+string(severity)+")", operation, targetName, message, err, metadata)
}

func (l *ConsoleLogger) write(ctx context.Context, level, operation, targetName, message string, err error, metadata map[string]interface{}) {
	logEvent := GetLogEvent(ctx)

	line := level + " op=" + operation
	if targetName != "" {
		line += " target=" + targetName
	}
	line += " pid=" + logEvent.ProcessID + " " + message
	if err != nil {
		line += " err=" + err.Error()
	}
	if len(metadata) > 0 {
		if jsonBytes, jsonErr := json.Marshal(metadata); jsonErr == nil {
			line += " meta=" + string(jsonBytes)
		}
	}

	l.out.Println(line)
}

// Close is a no-op for the console logger
func (l *ConsoleLogger) Close() error {
	return nil
}
