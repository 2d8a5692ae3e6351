// Package capture runs the timed multi-shot sequence: a countdown, one
// still from the camera, a pause, and again until every photo is taken.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// State is the sequencer's position in the capture cycle.
type State int

const (
	StateIdle State = iota
	StateCountdown
	StateShooting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateShooting:
		return "shooting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrNothingToRetake is returned by Retake before any photo exists.
var ErrNothingToRetake = errors.New("no photos to retake")

// Status is what a countdown display needs.
type Status struct {
	State     State
	Remaining int // countdown seconds left while counting down
	Taken     int
	Total     int
	Pending   bool // a timer will advance the sequence without user input
}

// Target is the photo store the sequencer fills. *session.Session
// satisfies it.
type Target interface {
	Epoch() uint64
	PhotoCount() int
	PhotosTaken() int
	AddPhoto(epoch uint64, img []byte) error
	ClearPhotos()
}

// Timing holds the sequencer's delays.
type Timing struct {
	Countdown int           // ticks before each shot
	Tick      time.Duration // countdown granularity
	Settle    time.Duration // between entering Shooting and the camera request
	Pause     time.Duration // between a successful shot and the next countdown
}

// DefaultTiming is a 3-2-1 countdown at one second per tick.
var DefaultTiming = Timing{
	Countdown: 3,
	Tick:      time.Second,
	Settle:    100 * time.Millisecond,
	Pause:     1500 * time.Millisecond,
}

// Sequencer drives Idle → Countdown → Shooting → Idle|Done with a single
// pending timer. Every callback carries the generation and session epoch it
// was scheduled under. A callback from an older generation is dropped; one
// whose epoch has moved on resets the sequencer to Idle. Photos are added
// and cleared with mu released so target listeners may query the sequencer.
type Sequencer struct {
	mu sync.Mutex

	target Target
	camera Camera
	sched  Scheduler
	timing Timing

	state     State
	remaining int
	gen       uint64
	timer     Timer
	cancelReq context.CancelFunc

	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func(Status)
}

// NewSequencer creates an idle sequencer. A nil scheduler uses real timers.
func NewSequencer(target Target, camera Camera, sched Scheduler, timing Timing) *Sequencer {
	if sched == nil {
		sched = RealScheduler{}
	}
	if timing.Countdown < 1 {
		timing.Countdown = 1
	}
	return &Sequencer{
		target: target,
		camera: camera,
		sched:  sched,
		timing: timing,
	}
}

// OnChange registers a listener called after every state or countdown
// change. The returned func removes it.
func (s *Sequencer) OnChange(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Status returns the current state.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Sequencer) statusLocked() Status {
	return Status{
		State:     s.state,
		Remaining: s.remaining,
		Taken:     s.target.PhotosTaken(),
		Total:     s.target.PhotoCount(),
		Pending:   s.timer != nil,
	}
}

func (s *Sequencer) notify(st Status) {
	s.mu.Lock()
	listeners := append([]listener{}, s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(st)
	}
}

// Start begins a countdown. It does nothing while counting down or
// shooting, or once every photo is taken.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if !s.startLocked() {
		s.mu.Unlock()
		return
	}
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)
}

func (s *Sequencer) startLocked() bool {
	if s.state == StateCountdown || s.state == StateShooting {
		return false
	}
	if s.target.PhotosTaken() >= s.target.PhotoCount() {
		s.state = StateDone
		return false
	}
	s.state = StateCountdown
	s.remaining = s.timing.Countdown
	log.Printf("capture: countdown %d", s.remaining)
	s.scheduleLocked(s.timing.Tick, s.tick)
	return true
}

// scheduleLocked replaces the pending timer with fn after d.
func (s *Sequencer) scheduleLocked(d time.Duration, fn func(gen, epoch uint64)) {
	if s.timer != nil {
		s.timer.Stop()
	}
	gen, epoch := s.gen, s.target.Epoch()
	s.timer = s.sched.AfterFunc(d, func() { fn(gen, epoch) })
}

// enter locks mu for a callback scheduled under gen and epoch. It returns
// false, with mu released, when the callback must not run. A session epoch
// that moved on underneath a live callback resets the sequencer.
func (s *Sequencer) enter(gen, epoch uint64) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	if epoch != s.target.Epoch() {
		log.Printf("capture: photos changed, sequence reset")
		s.haltLocked()
		s.settleLocked()
		st := s.statusLocked()
		s.mu.Unlock()
		s.notify(st)
		return false
	}
	return true
}

// settleLocked puts a halted sequencer in Done when every photo exists and
// in Idle otherwise.
func (s *Sequencer) settleLocked() {
	if s.target.PhotosTaken() >= s.target.PhotoCount() {
		s.state = StateDone
	} else {
		s.state = StateIdle
	}
}

func (s *Sequencer) tick(gen, epoch uint64) {
	if !s.enter(gen, epoch) {
		return
	}
	if s.state != StateCountdown {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.remaining--
	if s.remaining > 0 {
		log.Printf("capture: countdown %d", s.remaining)
		s.scheduleLocked(s.timing.Tick, s.tick)
	} else {
		s.state = StateShooting
		s.scheduleLocked(s.timing.Settle, s.shoot)
	}
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)
}

func (s *Sequencer) shoot(gen, epoch uint64) {
	if !s.enter(gen, epoch) {
		return
	}
	if s.state != StateShooting {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelReq = cancel
	s.mu.Unlock()

	img, err := s.camera.RequestStill(ctx)
	cancel()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		log.Printf("capture: discarding stale still")
		return
	}
	s.cancelReq = nil
	s.mu.Unlock()

	// AddPhoto rejects the still itself if the epoch moved on.
	if err == nil {
		err = s.target.AddPhoto(epoch, img)
	}

	if !s.enter(gen, epoch) {
		return
	}
	if err != nil {
		log.Printf("capture: shot skipped: %v", err)
		s.state = StateIdle
	} else if s.target.PhotosTaken() < s.target.PhotoCount() {
		log.Printf("capture: photo %d of %d", s.target.PhotosTaken(), s.target.PhotoCount())
		s.state = StateIdle
		s.scheduleLocked(s.timing.Pause, s.resume)
	} else {
		log.Printf("capture: all %d photos taken", s.target.PhotoCount())
		s.state = StateDone
	}
	s.remaining = 0
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)
}

func (s *Sequencer) resume(gen, epoch uint64) {
	if !s.enter(gen, epoch) {
		return
	}
	s.timer = nil
	if !s.startLocked() {
		s.mu.Unlock()
		return
	}
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)
}

// haltLocked drops the pending timer and any in-flight camera request and
// invalidates callbacks already queued.
func (s *Sequencer) haltLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelReq != nil {
		s.cancelReq()
		s.cancelReq = nil
	}
	s.gen++
	s.remaining = 0
}

// Retake discards every photo and returns to Idle. It requires at least
// one photo.
func (s *Sequencer) Retake() error {
	s.mu.Lock()
	if s.target.PhotosTaken() == 0 {
		s.mu.Unlock()
		return fmt.Errorf("retake: %w", ErrNothingToRetake)
	}
	s.haltLocked()
	s.state = StateIdle
	s.mu.Unlock()

	s.target.ClearPhotos()
	log.Printf("capture: retake")
	s.notify(s.Status())
	return nil
}

// Cancel stops any countdown or capture in progress without touching the
// photos, as leaving the capture step does.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	s.haltLocked()
	s.settleLocked()
	st := s.statusLocked()
	s.mu.Unlock()
	s.notify(st)
}

// Wait blocks until the sequence reaches Done, stalls in Idle with nothing
// scheduled, or ctx ends.
func (s *Sequencer) Wait(ctx context.Context) (Status, error) {
	done := make(chan Status, 1)
	unsubscribe := s.OnChange(func(st Status) {
		if st.State == StateDone || (st.State == StateIdle && !st.Pending) {
			select {
			case done <- st:
			default:
			}
		}
	})
	defer unsubscribe()
	if st := s.Status(); st.State == StateDone || (st.State == StateIdle && !st.Pending) {
		return st, nil
	}
	select {
	case st := <-done:
		return st, nil
	case <-ctx.Done():
		return s.Status(), ctx.Err()
	}
}
