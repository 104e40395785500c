// Package watch rebuilds the manual when its inputs change.
//
// File events and scheduled ticks are requests; a Debouncer coalesces bursts
// of requests into single rebuild triggers, and the Watcher runs rebuilds one
// at a time with at most one follow-up queued behind a running rebuild.
package watch

import (
	"context"
	"sync"
	"time"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Trigger is emitted once per coalesced burst of requests.
type Trigger struct {
	Cause        string // quiet | max_delay
	LastReason   string
	RequestCount int
	FirstRequest time.Time
	LastRequest  time.Time
}

type request struct {
	reason string
	at     time.Time
}

// Debouncer coalesces bursts of rebuild requests into a single Trigger:
//   - a trigger fires once no request arrived for the quiet window
//   - a continuous stream cannot postpone it longer than the max delay
//   - while a trigger is still unconsumed, further bursts fold into it
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration

	reqs chan request
	out  chan Trigger

	readyOnce sync.Once
	ready     chan struct{}

	pending      bool
	first        time.Time
	last         time.Time
	lastReason   string
	requestCount int
}

// NewDebouncer validates the windows and returns an idle Debouncer.
func NewDebouncer(quiet, maxDelay time.Duration) (*Debouncer, error) {
	if quiet <= 0 {
		return nil, derrors.ValidationError("quiet window must be > 0").Build()
	}
	if maxDelay <= 0 {
		return nil, derrors.ValidationError("max delay must be > 0").Build()
	}
	if maxDelay < quiet {
		maxDelay = quiet
	}
	return &Debouncer{
		quiet:    quiet,
		maxDelay: maxDelay,
		reqs:     make(chan request, 64),
		out:      make(chan Trigger, 1),
		ready:    make(chan struct{}),
	}, nil
}

// Request asks for a rebuild. It never blocks; when the request buffer is
// full the request is already covered by the pending burst.
func (d *Debouncer) Request(reason string) {
	select {
	case d.reqs <- request{reason: reason, at: time.Now()}:
	default:
	}
}

// C delivers triggers. It has capacity one.
func (d *Debouncer) C() <-chan Trigger { return d.out }

// Ready is closed once Run is consuming requests.
func (d *Debouncer) Ready() <-chan struct{} { return d.ready }

// Run processes requests until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var quietC, maxC <-chan time.Time

	d.readyOnce.Do(func() { close(d.ready) })

	for {
		select {
		case <-ctx.Done():
			quietTimer.Stop()
			maxTimer.Stop()
			return
		case req := <-d.reqs:
			d.onRequest(req)
			resetTimer(quietTimer, d.quiet)
			quietC = quietTimer.C
			if d.requestCount == 1 {
				resetTimer(maxTimer, d.maxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			d.emit("quiet")
			quietC, maxC = nil, nil
			maxTimer.Stop()
		case <-maxC:
			d.emit("max_delay")
			quietC, maxC = nil, nil
			quietTimer.Stop()
		}
	}
}

func (d *Debouncer) onRequest(req request) {
	if !d.pending {
		d.pending = true
		d.first = req.at
		d.requestCount = 0
	}
	d.last = req.at
	d.lastReason = req.reason
	d.requestCount++
}

func (d *Debouncer) emit(cause string) {
	if !d.pending {
		return
	}
	t := Trigger{
		Cause:        cause,
		LastReason:   d.lastReason,
		RequestCount: d.requestCount,
		FirstRequest: d.first,
		LastRequest:  d.last,
	}
	d.pending = false
	select {
	case d.out <- t:
	default:
		// A trigger is still waiting; it will pick up these changes.
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
