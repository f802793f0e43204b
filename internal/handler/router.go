package handler

import (
	"context"
	"fmt"
	"strings"

	"onboarder/internal/domain"
	"onboarder/internal/repository"
	"onboarder/internal/service"

	"go.uber.org/zap"
)

// HandlerFunc handles one platform event
type HandlerFunc func(ctx context.Context, ev domain.Event) error

// MiddlewareFunc wraps a HandlerFunc
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// RegistrationLookup finds the registration of a user, nil when there is none
type RegistrationLookup interface {
	FindByUsername(ctx context.Context, username string) (*domain.Order, error)
}

// Router feeds platform events through the guard, the workflow and the executor
type Router struct {
	users         repository.UserRepository
	registrations RegistrationLookup
	guard         *service.Guard
	workflow      *service.Workflow
	executor      *service.Executor
	rejoinKeyword string
	middleware    []MiddlewareFunc
	logger        *zap.Logger
}

// NewRouter creates a new router. An empty rejoinKeyword disables rejoining by message.
func NewRouter(
	users repository.UserRepository,
	registrations RegistrationLookup,
	guard *service.Guard,
	workflow *service.Workflow,
	executor *service.Executor,
	rejoinKeyword string,
	logger *zap.Logger,
) *Router {
	return &Router{
		users:         users,
		registrations: registrations,
		guard:         guard,
		workflow:      workflow,
		executor:      executor,
		rejoinKeyword: rejoinKeyword,
		logger:        logger,
	}
}

// Use appends middleware. The first one added runs outermost.
func (r *Router) Use(mw ...MiddlewareFunc) {
	r.middleware = append(r.middleware, mw...)
}

// Handler returns Handle wrapped in the registered middleware
func (r *Router) Handler() HandlerFunc {
	h := HandlerFunc(r.Handle)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h
}

// Handle processes one event for its user
func (r *Router) Handle(ctx context.Context, ev domain.Event) error {
	if r.guard.FromSelf(ev) {
		return nil
	}

	if ev.Kind == domain.EventMessageReceived && r.isRejoin(ev.Text) {
		r.logger.Info("Rejoin requested", zap.String("username", ev.Username))
		ev = domain.Event{Kind: domain.EventMemberJoined, UserID: ev.UserID, Username: ev.Username}
	}

	record, err := r.users.Get(ctx, ev.Username)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ev.Username, err)
	}

	if !r.guard.Accept(ev, record) {
		r.logger.Debug("Ignoring event",
			zap.String("username", ev.Username),
			zap.String("kind", string(ev.Kind)),
			zap.String("prompt_id", ev.PromptID),
			zap.String("expected_prompt_id", record.LastPromptID),
		)
		return nil
	}

	var order *domain.Order
	if r.workflow.NeedsRegistration(record, ev) {
		order, err = r.registrations.FindByUsername(ctx, ev.Username)
		if err != nil {
			return fmt.Errorf("failed to look up registration of %s: %w", ev.Username, err)
		}
	}

	decision, err := r.workflow.Decide(record, ev, order)
	if err != nil {
		return fmt.Errorf("failed to decide for %s: %w", ev.Username, err)
	}
	if decision.Noop() {
		return nil
	}

	next, err := r.executor.Execute(ctx, ev.UserID, record, decision)
	if err != nil {
		r.logger.Error("Failed to apply event",
			zap.String("username", ev.Username),
			zap.String("kind", string(ev.Kind)),
			zap.String("symbol", string(ev.Symbol)),
			zap.String("state", string(record.State)),
			zap.Error(err),
		)
		return err
	}

	if next.State != record.State {
		r.logger.Info("User advanced",
			zap.String("username", ev.Username),
			zap.String("from", string(record.State)),
			zap.String("to", string(next.State)),
		)
	}
	return nil
}

func (r *Router) isRejoin(text string) bool {
	return r.rejoinKeyword != "" && strings.TrimSpace(text) == r.rejoinKeyword
}
