package handler

import (
	"context"
	"sync"
	"time"

	"onboarder/internal/domain"

	"go.uber.org/zap"
)

// Dispatcher runs events of the same user one at a time, in submission order.
// Different users are processed concurrently.
type Dispatcher struct {
	ctx     context.Context
	handler HandlerFunc
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	queues map[string][]domain.Event // present while a worker runs for the user, or while held
	held   bool
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Each event gets at most timeout to complete, zero means no limit.
func NewDispatcher(ctx context.Context, handler HandlerFunc, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ctx:     ctx,
		handler: handler,
		timeout: timeout,
		logger:  logger,
		queues:  make(map[string][]domain.Event),
	}
}

// Submit queues ev behind earlier events of the same user. It reports false after Close.
func (d *Dispatcher) Submit(ev domain.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("Dropping event after shutdown",
			zap.String("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)),
		)
		return false
	}

	queue, running := d.queues[ev.UserID]
	d.queues[ev.UserID] = append(queue, ev)
	if !running && !d.held {
		d.wg.Add(1)
		go d.run(ev.UserID)
	}
	return true
}

// Hold keeps submitted events queued without processing them until Release
func (d *Dispatcher) Hold() {
	d.mu.Lock()
	d.held = true
	d.mu.Unlock()
}

// Release starts processing the events queued since Hold
func (d *Dispatcher) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.held {
		return
	}
	d.held = false
	for userID := range d.queues {
		d.wg.Add(1)
		go d.run(userID)
	}
}

// Close stops accepting events and waits for queued ones to finish
func (d *Dispatcher) Close() {
	d.Release()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

// Pending returns the number of queued events that have not started yet
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, q := range d.queues {
		n += len(q)
	}
	return n
}

func (d *Dispatcher) run(userID string) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[userID]
		if len(queue) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.queues[userID] = queue[1:]
		d.mu.Unlock()

		d.process(ev)
	}
}

func (d *Dispatcher) process(ev domain.Event) {
	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.handler(ctx, ev); err != nil {
		d.logger.Warn("Event handling failed",
			zap.String("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
	}
}
