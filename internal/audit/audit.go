// Package audit records the onboarding trail of every user.
package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/repository"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileConfig controls the rotating audit file
type FileConfig struct {
	Pattern      string // strftime pattern, e.g. logs/audit.%Y%m%d.log
	LinkName     string // symlink to the current file, optional
	MaxAge       time.Duration
	RotationTime time.Duration
}

// NewFileCore returns a JSON core writing to a rotating file and the writer to close on shutdown
func NewFileCore(cfg FileConfig) (zapcore.Core, io.Closer, error) {
	opts := []rotatelogs.Option{
		rotatelogs.WithMaxAge(cfg.MaxAge),
		rotatelogs.WithRotationTime(cfg.RotationTime),
	}
	if cfg.LinkName != "" {
		opts = append(opts, rotatelogs.WithLinkName(cfg.LinkName))
	}

	w, err := rotatelogs.New(cfg.Pattern, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), zapcore.InfoLevel)
	return core, w, nil
}

type eventIDKey struct{}

// WithEventID tags ctx with the correlation id of the event being handled
func WithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey{}, id)
}

// EventID returns the correlation id of ctx, empty outside a handled event
func EventID(ctx context.Context) string {
	id, _ := ctx.Value(eventIDKey{}).(string)
	return id
}

// Logger writes audit lines to the log and to the audit table
type Logger struct {
	repo   repository.AuditRepository
	out    *zap.Logger
	logger *zap.Logger
	now    func() time.Time
}

// NewLogger creates an audit logger. Lines go to logger and, when file is not nil, to file as well.
func NewLogger(repo repository.AuditRepository, file zapcore.Core, logger *zap.Logger) *Logger {
	out := logger
	if file != nil {
		out = zap.New(zapcore.NewTee(logger.Core(), file))
	}

	return &Logger{
		repo:   repo,
		out:    out.Named("audit"),
		logger: logger,
		now:    time.Now,
	}
}

// Record writes one audit line. Storage failures are logged and swallowed.
func (l *Logger) Record(ctx context.Context, username string, state domain.State, message string) {
	entry := repository.AuditEntry{
		ID:        ksuid.New().String(),
		Username:  username,
		State:     state,
		Message:   message,
		CreatedAt: l.now().UTC(),
	}

	fields := []zap.Field{
		zap.String("audit_id", entry.ID),
		zap.String("username", username),
		zap.String("state", string(state)),
	}
	if id := EventID(ctx); id != "" {
		fields = append(fields, zap.String("event_id", id))
	}
	l.out.Info(message, fields...)

	if err := l.repo.Append(ctx, entry); err != nil {
		l.logger.Warn("Failed to persist audit entry",
			zap.String("audit_id", entry.ID),
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

// Message logs a direct message from a flagged user
func (l *Logger) Message(ctx context.Context, username string, state domain.State, text string) {
	l.Record(ctx, username, state, "Message: "+text)
}
