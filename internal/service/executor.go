package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/platform"
	"onboarder/internal/repository"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Localizer renders conversation texts
type Localizer interface {
	Text(lang domain.Language, key string, args ...any) string
}

// Auditor writes audit lines
type Auditor interface {
	Record(ctx context.Context, username string, state domain.State, message string)
}

// Notifier alerts operators about users that need manual attention
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// RetryPolicy bounds retries of transient delivery failures
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no policy is configured
var DefaultRetryPolicy = RetryPolicy{
	MaxTries:        5,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     10 * time.Second,
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	return b
}

// ExecutorOption customizes an Executor
type ExecutorOption func(*Executor)

// WithRetryPolicy overrides DefaultRetryPolicy
func WithRetryPolicy(p RetryPolicy) ExecutorOption {
	return func(x *Executor) {
		if p.MaxTries > 0 {
			x.retry = p
		}
	}
}

// WithNotifier sets where operator alerts go
func WithNotifier(n Notifier) ExecutorOption {
	return func(x *Executor) {
		if n != nil {
			x.alerts = n
		}
	}
}

// Executor carries out workflow decisions against the platform and storage
type Executor struct {
	messenger platform.Messenger
	roles     platform.RoleManager
	users     repository.UserRepository
	flags     repository.FlagRepository
	texts     Localizer
	auditor   Auditor
	alerts    Notifier
	logger    *zap.Logger
	retry     RetryPolicy
}

// NewExecutor creates a new executor
func NewExecutor(
	messenger platform.Messenger,
	roles platform.RoleManager,
	users repository.UserRepository,
	flags repository.FlagRepository,
	texts Localizer,
	auditor Auditor,
	logger *zap.Logger,
	opts ...ExecutorOption,
) *Executor {
	x := &Executor{
		messenger: messenger,
		roles:     roles,
		users:     users,
		flags:     flags,
		texts:     texts,
		auditor:   auditor,
		alerts:    nopNotifier{},
		logger:    logger,
		retry:     DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute runs the effects of d in order for the member userID and returns the stored record.
// record is the state d was computed from; its Version guards the write.
// On error nothing after the failing effect runs and the stored record is left untouched.
func (x *Executor) Execute(ctx context.Context, userID string, record domain.UserRecord, d Decision) (domain.UserRecord, error) {
	pending := d.Next

	for _, eff := range d.Effects {
		switch e := eff.(type) {
		case SendMessage:
			id, err := x.send(ctx, userID, pending.Language, e)
			if err != nil {
				return record, x.fail(ctx, pending, "send "+e.Key, err)
			}
			if e.Prompt {
				pending.LastPromptID = id
			}

		case GrantRoles:
			err := x.deliver(ctx, "grant roles", func() error {
				return x.roles.GrantRoles(ctx, userID, e.Roles)
			})
			if err != nil {
				return record, x.fail(ctx, pending, "grant roles", err)
			}

		case RevokeRoles:
			err := x.deliver(ctx, "revoke roles", func() error {
				return x.roles.RevokeRoles(ctx, userID, e.Roles)
			})
			if err != nil {
				return record, x.fail(ctx, pending, "revoke roles", err)
			}

		case FlagUser:
			if err := x.flags.Flag(ctx, userID); err != nil {
				return record, fmt.Errorf("flag user: %w", err)
			}

		case AlertOperators:
			x.alert(ctx, e.Message)

		case Persist:
			if err := x.users.Save(ctx, pending, record.Version); err != nil {
				return record, fmt.Errorf("persist %s: %w", pending.Username, err)
			}
			pending.Version = record.Version + 1

		case Audit:
			x.auditor.Record(ctx, pending.Username, pending.State, e.Message)

		default:
			return record, fmt.Errorf("unknown effect %T", eff)
		}
	}

	return pending, nil
}

func (x *Executor) send(ctx context.Context, userID string, lang domain.Language, e SendMessage) (string, error) {
	msg := platform.OutgoingMessage{
		Text:        x.texts.Text(lang, e.Key, e.Args...),
		Attachments: e.Attachments,
	}

	var id string
	err := x.deliver(ctx, "send message", func() error {
		var err error
		id, err = x.messenger.SendDirectMessage(ctx, userID, msg)
		return err
	})
	if err != nil {
		return "", err
	}

	for _, s := range e.Reactions {
		err := x.deliver(ctx, "add reaction", func() error {
			return x.messenger.AddReaction(ctx, userID, id, s)
		})
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

// deliver calls fn until it succeeds, fails permanently or the retry policy gives up
func (x *Executor) deliver(ctx context.Context, op string, fn func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, platform.ErrTransient) {
			x.logger.Warn("Transient delivery failure",
				zap.String("operation", op),
				zap.Error(err),
			)
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(x.retry.backOff()),
		backoff.WithMaxTries(x.retry.MaxTries),
	)
	return err
}

func (x *Executor) fail(ctx context.Context, pending domain.UserRecord, op string, err error) error {
	if errors.Is(err, platform.ErrPermission) {
		x.logger.Error("Permission denied, user needs manual attention",
			zap.String("username", pending.Username),
			zap.String("operation", op),
			zap.Error(err),
		)
		x.alert(ctx, fmt.Sprintf("Could not %s for %s (permission denied). Onboarding is stuck, please help manually.", op, pending.Username))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (x *Executor) alert(ctx context.Context, text string) {
	if err := x.alerts.Notify(ctx, text); err != nil {
		x.logger.Warn("Failed to notify operators", zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) error { return nil }
