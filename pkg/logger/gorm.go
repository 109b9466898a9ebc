package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxLoggedSQL caps the statement text attached to a log entry
const maxLoggedSQL = 1000

var gormLevels = map[string]gormlogger.LogLevel{
	"silent":  gormlogger.Silent,
	"error":   gormlogger.Error,
	"warn":    gormlogger.Warn,
	"warning": gormlogger.Warn,
	"info":    gormlogger.Info,
	"debug":   gormlogger.Info,
}

// GormLogger adapts GORM logging to zap. It is used by the creation audit store.
type GormLogger struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLoggerWithConfig maps the service log level onto GORM's levels, defaulting to warn
func NewGormLoggerWithConfig(zapLogger *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	level, ok := gormLevels[logLevel]
	if !ok {
		level = gormlogger.Warn
	}

	return &GormLogger{
		ZapLogger:     zapLogger.Named("gorm"),
		SlowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
		LogLevel:      level,
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if s := l.sugar(ctx, gormlogger.Info); s != nil {
		s.Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if s := l.sugar(ctx, gormlogger.Warn); s != nil {
		s.Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if s := l.sugar(ctx, gormlogger.Error); s != nil {
		s.Errorf(msg, data...)
	}
}

// sugar returns nil when level is above the configured GORM level
func (l *GormLogger) sugar(ctx context.Context, level gormlogger.LogLevel) *zap.SugaredLogger {
	if l.LogLevel < level {
		return nil
	}
	return WithContext(ctx, l.ZapLogger).Sugar()
}

// Trace implements gormlogger.Interface. Failed statements log at error, slow ones at warn,
// and everything else only at the info level.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold

	var msg string
	switch {
	case failed && l.LogLevel >= gormlogger.Error:
		msg = "gorm query error"
	case slow && l.LogLevel >= gormlogger.Warn:
		msg = "gorm slow query"
	case l.LogLevel >= gormlogger.Info:
		msg = "gorm query"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
		fields = append(fields, zap.Bool("sql_truncated", true))
	}
	fields = append(fields, zap.String("sql", sql))

	log := WithContext(ctx, l.ZapLogger)
	switch {
	case failed:
		log.Error(msg, append(fields, zap.Error(err))...)
	case slow:
		log.Warn(msg, append(fields, zap.Duration("threshold", l.SlowThreshold))...)
	default:
		log.Info(msg, fields...)
	}
}
