package notifier

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultTimeout bounds a single notification send.
const DefaultTimeout = 5 * time.Second

// Sender delivers a text message to some destination.
type Sender interface {
	Send(ctx context.Context, text string) error
	Enabled() bool
}

// Dispatcher sends notifications in the background. A send never blocks the
// caller and its failure is only logged.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps sender. A nil sender yields a dispatcher that drops everything.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Notify queues text for delivery and returns immediately.
func (d *Dispatcher) Notify(text string) {
	if d == nil || d.sender == nil || !d.sender.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] notification panic: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, text); err != nil {
			log.Printf("[WARN] notification failed: %v", err)
		}
	}()
}

// Wait blocks until in-flight sends finish or max elapses.
// It returns false when sends were abandoned.
func (d *Dispatcher) Wait(max time.Duration) bool {
	if d == nil {
		return true
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(max):
		log.Printf("[WARN] abandoning in-flight notifications after %v", max)
		return false
	}
}

// Timeout returns the per-send timeout.
func (d *Dispatcher) Timeout() time.Duration { return d.timeout }
