// Package notify delivers culture and context changes to subscribers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/pitabwire/lingua/culture"
)

// Property names the piece of engine state that changed.
type Property string

const (
	PropertyLanguage Property = "Language"
	PropertyContext  Property = "Context"
)

// Change describes engine state right after a successful mutation.
type Change struct {
	Property Property
	Culture  culture.Tag
	BasePath string
}

// Handler observes changes. Returned errors and panics are contained by the
// Notifier and never reach the mutator.
type Handler func(ctx context.Context, change Change) error

// Subscription identifies a registered handler.
type Subscription string

// FailureObserver is told about every handler failure, in addition to logging.
type FailureObserver func(ctx context.Context, change Change)

type subscriber struct {
	id      Subscription
	handler Handler
}

// Notifier is an ordered registry of handlers.
type Notifier struct {
	mu          sync.RWMutex
	subscribers []subscriber
	onFailure   FailureObserver
}

// New returns an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// OnFailure installs an observer for handler failures.
func (n *Notifier) OnFailure(observer FailureObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onFailure = observer
}

// Subscribe registers handler and returns its handle. A nil handler is
// accepted and ignored during delivery.
func (n *Notifier) Subscribe(handler Handler) Subscription {
	id := Subscription(xid.New().String())

	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, subscriber{id: id, handler: handler})
	return id
}

// Unsubscribe removes the handler registered under sub and reports whether
// it was present.
func (n *Notifier) Unsubscribe(sub Subscription) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subscribers {
		if s.id == sub {
			n.subscribers = append(n.subscribers[:i:i], n.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Notify calls every handler registered at the time of the call, in
// subscription order. All failures are logged and joined into the result;
// a failing handler does not stop delivery to the rest.
func (n *Notifier) Notify(ctx context.Context, change Change) error {
	n.mu.RLock()
	subscribers := make([]subscriber, len(n.subscribers))
	copy(subscribers, n.subscribers)
	onFailure := n.onFailure
	n.mu.RUnlock()

	var errs []error
	for _, s := range subscribers {
		if s.handler == nil {
			continue
		}

		err := deliver(ctx, s.handler, change)
		if err == nil {
			continue
		}

		util.Log(ctx).
			WithError(err).
			WithField("subscription", string(s.id)).
			WithField("property", string(change.Property)).
			Warn("change handler failed")

		if onFailure != nil {
			onFailure(ctx, change)
		}
		errs = append(errs, fmt.Errorf("subscription %s: %w", s.id, err))
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, handler Handler, change Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, change)
}
