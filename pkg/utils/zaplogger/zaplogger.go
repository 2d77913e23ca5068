// Package zaplogger contains the logging utilities for the Tunely API
package zaplogger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

var log *zap.Logger
var atomicLevel zap.AtomicLevel
var encoderConfig zapcore.EncoderConfig

// Fields type, used to pass structured fields to the log functions.
type Fields map[string]interface{}

// LogModel represents a log entry persisted to the database
type LogModel struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index"`
	Level     string
	Caller    string
	Message   string
	Fields    string // JSON string of additional fields
}

// TableName specifies the table name for the LogModel
func (LogModel) TableName() string {
	return "_app_logs"
}

// dbWriter implements zapcore.WriteSyncer and stores log entries via GORM
type dbWriter struct {
	db *gorm.DB
}

func (w *dbWriter) Write(p []byte) (n int, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(p, &raw); err != nil {
		return 0, err
	}

	entry := LogModel{Timestamp: time.Now()}
	if v, ok := raw["level"]; ok {
		_ = json.Unmarshal(v, &entry.Level)
	}
	if v, ok := raw["caller"]; ok {
		_ = json.Unmarshal(v, &entry.Caller)
	}
	if v, ok := raw["message"]; ok {
		_ = json.Unmarshal(v, &entry.Message)
	}
	if v, ok := raw["timestamp"]; ok {
		var ts string
		_ = json.Unmarshal(v, &ts)
		if parsed, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			entry.Timestamp = parsed
		}
	}

	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		switch k {
		case "level", "timestamp", "caller", "message":
		default:
			extra[k] = v
		}
	}
	fieldsJSON, err := json.Marshal(extra)
	if err != nil {
		return 0, err
	}
	entry.Fields = string(fieldsJSON)

	if result := w.db.Create(&entry); result.Error != nil {
		return 0, result.Error
	}
	return len(p), nil
}

func (w *dbWriter) Sync() error {
	return nil
}

func init() {
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	encoderConfig = zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "timestamp",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.RFC3339NanoTimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		atomicLevel,
	)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// InitLogger initializes the logger with both console and database output
func InitLogger(db *gorm.DB) error {
	if err := db.AutoMigrate(&LogModel{}); err != nil {
		return fmt.Errorf("failed to migrate log table: %v", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), atomicLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&dbWriter{db: db}), atomicLevel),
	)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) {
	switch level {
	case "debug":
		atomicLevel.SetLevel(zapcore.DebugLevel)
	case "info":
		atomicLevel.SetLevel(zapcore.InfoLevel)
	case "warn":
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	default:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Sync flushes any buffered log entries
func Sync() {
	_ = log.Sync()
}

// Debug logs a debug message
func Debug(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Debug(msg, zapFields(fields[0])...)
	} else {
		log.Debug(msg)
	}
}

// Info logs an info message
func Info(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Info(msg, zapFields(fields[0])...)
	} else {
		log.Info(msg)
	}
}

// Warn logs a warning message
func Warn(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Warn(msg, zapFields(fields[0])...)
	} else {
		log.Warn(msg)
	}
}

// Error logs an error message
func Error(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Error(msg, zapFields(fields[0])...)
	} else {
		log.Error(msg)
	}
}

// Fatal logs a fatal message and exits the program
func Fatal(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Fatal(msg, zapFields(fields[0])...)
	} else {
		log.Fatal(msg)
	}
}

func zapFields(fields Fields) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}
