package app

import (
	"context"
	"fmt"
	"sync"

	"writer_digest_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
)

// EventHandler processes one inbound event.
type EventHandler func(ctx context.Context, ev chat.Event) error

// Dispatcher routes events to the handler registered for their kind.
// Handlers run one at a time, in arrival order.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[chat.EventKind]EventHandler
	logger   *logrus.Entry
}

func NewDispatcher(logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[chat.EventKind]EventHandler),
		logger:   logger,
	}
}

// On registers h for kind, replacing any previous handler.
func (d *Dispatcher) On(kind chat.EventKind, h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Dispatch runs the handler for ev. Errors and panics are logged and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev chat.Event) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, ok := d.handlers[ev.Kind]
	if !ok {
		d.logger.WithField("event", ev.Kind).Debug("No handler registered for event")
		return nil
	}

	logCtx := d.logger.WithFields(logrus.Fields{
		"event":    ev.Kind,
		"guild_id": ev.GuildID,
	})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %s panicked: %v", ev.Kind, r)
			logCtx.Error(err)
		}
	}()

	if err = h(ctx, ev); err != nil {
		logCtx.WithError(err).Error("Event handler failed")
	}
	return err
}
