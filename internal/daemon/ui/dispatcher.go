// Package ui implements the hand-off from the webhook listener to the
// notification surface: a main-thread dispatcher abstraction, the surface
// registry with its update-in-place policy, and the native notification path.
package ui

import (
	"fmt"
	"sync"
)

// Dispatcher submits work items to wherever the window toolkit requires
// them to run. The webhook listener never touches surfaces directly; it
// goes through a Dispatcher so the core stays testable with a fake.
type Dispatcher interface {
	Submit(work func()) error
}

// SerialDispatcher runs submitted work items one at a time in submission
// order on a single goroutine. It is the default dispatcher when no GUI
// toolkit owns the main thread.
type SerialDispatcher struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewSerialDispatcher creates a dispatcher. Call Run to start draining
// the queue; on a host toolkit that requires main-thread affinity, call
// Run from that thread.
func NewSerialDispatcher() *SerialDispatcher {
	return &SerialDispatcher{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes work items until Close is called. Items run to completion
// in FIFO order.
func (d *SerialDispatcher) Run() {
	for {
		select {
		case work := <-d.queue:
			work()
		case <-d.done:
			return
		}
	}
}

// Submit queues a work item. It fails only when the dispatcher has been
// closed.
func (d *SerialDispatcher) Submit(work func()) error {
	select {
	case <-d.done:
		return fmt.Errorf("dispatcher is closed")
	default:
	}

	select {
	case d.queue <- work:
		return nil
	case <-d.done:
		return fmt.Errorf("dispatcher is closed")
	}
}

// Close stops the dispatcher. Pending items are dropped.
func (d *SerialDispatcher) Close() {
	d.once.Do(func() { close(d.done) })
}
