package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"onboarder/internal/audit"
	"onboarder/internal/domain"
	"onboarder/internal/handler"
	"onboarder/internal/repository"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// MessageAuditor records messages of flagged users
type MessageAuditor interface {
	Message(ctx context.Context, username string, state domain.State, text string)
}

// FlaggedMessages logs every direct message of users that declined the code of conduct
func FlaggedMessages(flags repository.FlagRepository, users repository.UserRepository, auditor MessageAuditor, logger *zap.Logger) handler.MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, ev domain.Event) error {
			if ev.Kind != domain.EventMessageReceived {
				return next(ctx, ev)
			}

			flagged, err := flags.IsFlagged(ctx, ev.UserID)
			if err != nil {
				logger.Error("Failed to check flag in middleware",
					zap.String("user_id", ev.UserID),
					zap.Error(err),
				)
				return next(ctx, ev)
			}

			if flagged {
				state := domain.StateDeclined
				if record, err := users.Get(ctx, ev.Username); err == nil {
					state = record.State
				}
				auditor.Message(ctx, ev.Username, state, ev.Text)
			}

			return next(ctx, ev)
		}
	}
}

// Recover turns a panic while handling an event into an error
func Recover(logger *zap.Logger) handler.MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, ev domain.Event) (err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("Panic while handling event",
						zap.String("user_id", ev.UserID),
						zap.String("kind", string(ev.Kind)),
						zap.Any("panic", p),
						zap.ByteString("stack", debug.Stack()),
					)
					err = fmt.Errorf("panic: %v", p)
				}
			}()
			return next(ctx, ev)
		}
	}
}

// Logging assigns every event a correlation id, carried into audit lines, and logs its outcome
func Logging(logger *zap.Logger) handler.MiddlewareFunc {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, ev domain.Event) error {
			id := ksuid.New().String()
			ctx = audit.WithEventID(ctx, id)
			start := time.Now()

			fields := []zap.Field{
				zap.String("event_id", id),
				zap.String("kind", string(ev.Kind)),
				zap.String("user_id", ev.UserID),
				zap.String("username", ev.Username),
			}
			if ev.IsReaction() {
				fields = append(fields, zap.String("emoji", ev.Emoji), zap.String("prompt_id", ev.PromptID))
			}

			err := next(ctx, ev)

			fields = append(fields, zap.Duration("took", time.Since(start)))
			if err != nil {
				logger.Warn("Event failed", append(fields, zap.Error(err))...)
				return err
			}
			logger.Debug("Event handled", fields...)
			return nil
		}
	}
}
