package triage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Notifier delivers an analysis to one operator channel. Implementations
// live under internal/notify.
type Notifier interface {
	// Name identifies the channel in outcomes and metrics.
	Name() string
	// Configured reports whether the channel has enough configuration to
	// attempt delivery. Unconfigured channels yield a skipped outcome.
	Configured() bool
	// Send delivers the result. Bounded by the dispatcher's per-channel
	// timeout.
	Send(ctx context.Context, res *Result) error
}

// Dispatcher fans an analysis out to every configured channel. Channels
// are independent: one failure, timeout or misconfiguration never
// affects a sibling's outcome or the request itself.
type Dispatcher struct {
	channels []Notifier
	timeout  time.Duration
	logger   log.Logger
	observe  func(channel string, status OutcomeStatus, durationSeconds float64)
}

// NewDispatcher creates a dispatcher over a fixed channel list with a
// per-channel delivery timeout.
func NewDispatcher(logger log.Logger, timeout time.Duration, channels ...Notifier) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		logger:   logger,
	}
}

// SetObserver wires a per-delivery metrics callback.
func (d *Dispatcher) SetObserver(fn func(channel string, status OutcomeStatus, durationSeconds float64)) {
	d.observe = fn
}

// Dispatch delivers the result to all channels concurrently and waits
// for every channel to complete or time out. Outcomes are returned in
// channel registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, res *Result) []Outcome {
	outcomes := make([]Outcome, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		if !ch.Configured() {
			outcomes[i] = Outcome{Channel: ch.Name(), Status: OutcomeSkipped}
			d.record(ch.Name(), OutcomeSkipped, 0)
			continue
		}

		wg.Add(1)
		go func(i int, ch Notifier) {
			defer wg.Done()

			// Independent timeout per channel so a slow channel cannot
			// starve a fast one's result reporting.
			cctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			start := time.Now()
			err := ch.Send(cctx, res)
			dur := time.Since(start).Seconds()

			if err != nil {
				detail := err.Error()
				if errors.Is(err, context.DeadlineExceeded) {
					detail = "delivery timed out"
				}
				outcomes[i] = Outcome{Channel: ch.Name(), Status: OutcomeFailed, Error: detail}
				d.record(ch.Name(), OutcomeFailed, dur)
				d.logger.Error(ctx, err, "notification delivery failed", "channel", ch.Name())
				return
			}

			outcomes[i] = Outcome{Channel: ch.Name(), Status: OutcomeDelivered}
			d.record(ch.Name(), OutcomeDelivered, dur)
			d.logger.Info(ctx, "notification delivered", "channel", ch.Name(), "duration", dur)
		}(i, ch)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) record(channel string, status OutcomeStatus, dur float64) {
	if d.observe != nil {
		d.observe(channel, status, dur)
	}
}
