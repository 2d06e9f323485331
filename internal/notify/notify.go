// Package notify implements the deck's notification queue. Messages enter a
// FIFO; each one in turn animates through slide-in, visible, and slide-out
// phases, driven by the shell's frame clock. The queue is owned by the frame
// loop and is not safe for concurrent use.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/llzware/llzdeck/api"
)

// Phase is the animation stage of the active notification.
type Phase int

// Phases, in the order the machine walks them.
const (
	PhaseIdle Phase = iota
	PhaseSlideIn
	PhaseVisible
	PhaseSlideOut
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSlideIn:
		return "slide-in"
	case PhaseVisible:
		return "visible"
	case PhaseSlideOut:
		return "slide-out"
	default:
		return "unknown"
	}
}

// Defaults.
const (
	DefaultSlide    = 300 * time.Millisecond
	DefaultHold     = 2500 * time.Millisecond
	DefaultCapacity = 16
)

type item struct {
	id   string
	n    api.Notification
	hold float64
}

// Queue is the notification state machine. At most one notification is
// active; the rest wait in arrival order.
type Queue struct {
	slide    float64
	hold     float64
	capacity int
	newID    func() string

	pending []item
	active  *item
	phase   Phase
	elapsed float64
	dropped uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithSlideDuration sets the slide-in and slide-out duration.
func WithSlideDuration(d time.Duration) Option {
	return func(q *Queue) {
		q.slide = d.Seconds()
	}
}

// WithHoldDuration sets the default fully-visible duration, used when a
// notification carries no Duration of its own.
func WithHoldDuration(d time.Duration) Option {
	return func(q *Queue) {
		q.hold = d.Seconds()
	}
}

// WithCapacity bounds the pending queue. When full, the oldest pending
// notification is dropped and counted.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		q.capacity = n
	}
}

// WithIDFunc replaces the ID generator. Tests inject deterministic IDs.
func WithIDFunc(fn func() string) Option {
	return func(q *Queue) {
		q.newID = fn
	}
}

// NewQueue creates an idle queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		slide:    DefaultSlide.Seconds(),
		hold:     DefaultHold.Seconds(),
		capacity: DefaultCapacity,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push enqueues a notification and returns its ID. When the queue is idle
// the notification begins its slide-in on the next Update.
func (q *Queue) Push(n api.Notification) string {
	it := item{id: q.newID(), n: n, hold: q.hold}
	if n.Duration > 0 {
		it.hold = n.Duration.Seconds()
	}

	if q.active == nil {
		q.active = &it
		q.phase = PhaseSlideIn
		q.elapsed = 0
		return it.id
	}

	if q.capacity > 0 && len(q.pending) >= q.capacity {
		q.pending = q.pending[1:]
		q.dropped++
	}
	q.pending = append(q.pending, it)
	return it.id
}

// Update advances the machine by dt seconds. A large dt may walk through
// several phases, or several notifications, in one call.
func (q *Queue) Update(dt float64) {
	if q.active == nil || dt <= 0 {
		return
	}

	q.elapsed += dt
	for q.active != nil {
		switch q.phase {
		case PhaseSlideIn:
			if q.elapsed < q.slide {
				return
			}
			q.elapsed -= q.slide
			q.phase = PhaseVisible

		case PhaseVisible:
			if q.elapsed < q.active.hold {
				return
			}
			q.elapsed -= q.active.hold
			q.phase = PhaseSlideOut

		case PhaseSlideOut:
			if q.elapsed < q.slide {
				return
			}
			q.elapsed -= q.slide
			q.next()

		default:
			return
		}
	}
}

// next retires the active notification and promotes the head of the queue,
// keeping any leftover elapsed time so animations stay continuous.
func (q *Queue) next() {
	q.active = nil
	q.phase = PhaseIdle

	if len(q.pending) == 0 {
		q.elapsed = 0
		return
	}

	head := q.pending[0]
	q.pending = q.pending[1:]
	q.active = &head
	q.phase = PhaseSlideIn
}

// Active returns the active notification, its phase, and the eased reveal
// offset: 0 is fully hidden, 1 fully shown.
func (q *Queue) Active() (n api.Notification, phase Phase, offset float64, ok bool) {
	if q.active == nil {
		return api.Notification{}, PhaseIdle, 0, false
	}

	switch q.phase {
	case PhaseSlideIn:
		offset = easeOutCubic(ratio(q.elapsed, q.slide))
	case PhaseVisible:
		offset = 1
	case PhaseSlideOut:
		offset = 1 - easeInCubic(ratio(q.elapsed, q.slide))
	}
	return q.active.n, q.phase, offset, true
}

// ActiveID returns the ID of the active notification, or "".
func (q *Queue) ActiveID() string {
	if q.active == nil {
		return ""
	}
	return q.active.id
}

// Dismiss jumps the active notification to its slide-out.
func (q *Queue) Dismiss() {
	if q.active == nil || q.phase == PhaseSlideOut {
		return
	}
	q.phase = PhaseSlideOut
	q.elapsed = 0
}

// DismissAll dismisses the active notification and clears everything
// pending.
func (q *Queue) DismissAll() {
	q.pending = nil
	q.Dismiss()
}

// Pending returns the number of queued notifications behind the active one.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Dropped returns how many pending notifications were discarded to the
// capacity bound.
func (q *Queue) Dropped() uint64 {
	return q.dropped
}

// ratio maps elapsed over total onto 0..1, treating a non-positive total as
// already complete.
func ratio(elapsed, total float64) float64 {
	if total <= 0 {
		return 1
	}
	r := elapsed / total
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func easeInCubic(t float64) float64 {
	return t * t * t
}
