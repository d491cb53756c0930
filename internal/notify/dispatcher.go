package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher decouples the commit path from notification delivery: events
// go onto a bounded queue and a single worker drains it. Enqueue never
// blocks; when the queue is full the event is dropped and logged.
type Dispatcher struct {
	Sink    Notifier
	Logger  zerolog.Logger
	Timeout time.Duration

	queue chan Event
	once  sync.Once
	done  chan struct{}
	wg    sync.WaitGroup
}

func NewDispatcher(sink Notifier, size int, logger zerolog.Logger) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	return &Dispatcher{
		Sink:    sink,
		Logger:  logger,
		Timeout: 10 * time.Second,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		d.wg.Add(1)
		go d.run()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-d.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case ev := <-d.queue:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	if err := d.Sink.NotifyAssignment(ctx, ev); err != nil {
		d.Logger.Warn().Err(err).Str("request_id", ev.RequestID).Msg("notification delivery failed")
	}
}

// NotifyAssignment enqueues the event. The returned error is always nil:
// dropped events are a logged degradation, never a caller failure.
func (d *Dispatcher) NotifyAssignment(_ context.Context, ev Event) error {
	select {
	case d.queue <- ev:
	default:
		d.Logger.Warn().Str("request_id", ev.RequestID).Msg("notification queue full, event dropped")
	}
	return nil
}

// Depth reports how many events are waiting for delivery.
func (d *Dispatcher) Depth() int {
	return len(d.queue)
}

// Close stops the worker after draining queued events.
func (d *Dispatcher) Close() {
	close(d.done)
	d.wg.Wait()
}
