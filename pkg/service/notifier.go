package service

import (
	"fmt"
	"sync"

	"github.com/velkovb/taskforge/pkg/models"
)

// Listener receives change events. A non-nil error (or a panic) from one
// listener never prevents delivery to the others.
type Listener func(event models.ChangeEvent) error

// Subscription identifies a registered listener for Unsubscribe.
type Subscription int64

// ChangeNotifier fans task lifecycle events out to registered listeners.
// Dispatch is synchronous: Publish returns only after every listener has been
// invoked, so an orchestrator operation does not return to its caller with
// deliveries still in flight.
type ChangeNotifier struct {
	mu        sync.RWMutex
	nextSub   Subscription
	listeners map[Subscription]Listener
	logger    Logger
}

func NewChangeNotifier(logger Logger) *ChangeNotifier {
	return &ChangeNotifier{
		nextSub:   1,
		listeners: make(map[Subscription]Listener),
		logger:    logger,
	}
}

// Subscribe registers a listener and returns its handle.
func (n *ChangeNotifier) Subscribe(l Listener) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	sub := n.nextSub
	n.nextSub++
	n.listeners[sub] = l
	return sub
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (n *ChangeNotifier) Unsubscribe(sub Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, sub)
}

// Publish delivers the event to every listener. Listener failures are
// isolated and returned as secondary warnings; they never roll back the
// mutation that produced the event.
func (n *ChangeNotifier) Publish(event models.ChangeEvent) []error {
	n.mu.RLock()
	listeners := make(map[Subscription]Listener, len(n.listeners))
	for sub, l := range n.listeners {
		listeners[sub] = l
	}
	n.mu.RUnlock()

	var warnings []error
	for sub, l := range listeners {
		if err := n.dispatch(sub, l, event); err != nil {
			n.logger.Errorf("Listener %d failed for event %s on task %s: %v", sub, event.Kind, event.TaskID, err)
			warnings = append(warnings, err)
		}
	}
	return warnings
}

func (n *ChangeNotifier) dispatch(sub Subscription, l Listener, event models.ChangeEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %d panicked: %v", sub, r)
		}
	}()
	return l(event)
}
