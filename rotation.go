package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"gregoryjjb/carousel/circularbuffer"
	"gregoryjjb/carousel/closedlist"
	"gregoryjjb/carousel/pubsub"
)

var rlog zerolog.Logger

func init() {
	rlog = log.With().Str("component", "rotation").Logger()
}

// Indicator shows the cursor's position somewhere outside the process.
type Indicator interface {
	Show(position int) error
}

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

type Move struct {
	Direction Direction `json:"direction"`
	Step      int       `json:"step"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Laps      int       `json:"laps"`
	At        time.Time `json:"at"`
}

type EventKind string

const (
	EventMove  EventKind = "move"
	EventLap   EventKind = "lap"
	EventJoin  EventKind = "join"
	EventLeave EventKind = "leave"
	EventReset EventKind = "reset"
)

type Event struct {
	Kind   EventKind `json:"kind"`
	Member string    `json:"member,omitempty"`
	Lap    int64     `json:"lap,omitempty"`
	Move   *Move     `json:"move,omitempty"`
}

type RotationState struct {
	Head     string   `json:"head"`
	Current  string   `json:"current"`
	Previous string   `json:"previous"`
	Next     string   `json:"next"`
	Position int      `json:"position"`
	Members  []string `json:"members"`
	Laps     int64    `json:"laps"`
}

var badMemberRegex = regexp.MustCompile(`[\s\p{C}/]`)

func ValidateMemberName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: member name cannot be blank", ErrValidation)
	}
	if badMemberRegex.MatchString(name) {
		return fmt.Errorf("%w: member name %q contains whitespace, control characters or slashes", ErrValidation, name)
	}
	return nil
}

// Rotation cycles through a pool of members. It is safe for concurrent
// use; every access to the ring goes through mu.
type Rotation struct {
	mu        sync.RWMutex
	ring      *closedlist.ClosedList[string]
	history   *circularbuffer.CircularBuffer[Move]
	ps        *pubsub.Broker[Event]
	indicator Indicator
	laps      *atomic.Int64

	now func() time.Time
}

// NewRotation builds a rotation over members in order. indicator may be nil.
func NewRotation(members []string, historySize int, indicator Indicator) (*Rotation, error) {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if err := ValidateMemberName(m); err != nil {
			return nil, err
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: member %q listed twice", ErrExists, m)
		}
		seen[m] = true
	}

	r := &Rotation{
		ring:      closedlist.FromSlice(members),
		history:   circularbuffer.New[Move](historySize),
		ps:        pubsub.New[Event](),
		indicator: indicator,
		laps:      atomic.NewInt64(0),
		now:       time.Now,
	}

	r.ring.OnHeadReached(func(head string) {
		lap := r.laps.Inc()
		rlog.Debug().Str("head", head).Int64("lap", lap).Msg("Lap complete")
		r.ps.Publish(Event{
			Kind:   EventLap,
			Member: head,
			Lap:    lap,
		})
	})

	r.showPosition()

	return r, nil
}

// Advance moves the cursor forward step members.
func (r *Rotation) Advance(step int) (Move, error) {
	return r.move(step, Forward)
}

// Rewind moves the cursor backward step members.
func (r *Rotation) Rewind(step int) (Move, error) {
	return r.move(step, Backward)
}

func (r *Rotation) move(step int, direction Direction) (Move, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, _ := r.ring.Current()

	var laps int
	var err error
	if direction == Forward {
		laps, err = r.ring.MoveNext(step)
	} else {
		laps, err = r.ring.MoveBack(step)
	}
	if err != nil {
		return Move{}, err
	}

	to, _ := r.ring.Current()
	m := Move{
		Direction: direction,
		Step:      step,
		From:      from,
		To:        to,
		Laps:      laps,
		At:        r.now(),
	}

	r.history.Push(m)
	r.ps.Publish(Event{Kind: EventMove, Member: to, Move: &m})
	r.showPosition()

	rlog.Debug().
		Str("direction", string(direction)).
		Int("step", step).
		Str("from", from).
		Str("to", to).
		Int("laps", laps).
		Msg("Moved")

	return m, nil
}

// Join appends name to the end of the rotation, just before the head.
func (r *Rotation) Join(name string) error {
	return r.join(name, func() error {
		r.ring.Add(name)
		return nil
	})
}

// JoinAt inserts name at index. Index 0 makes name the new head.
func (r *Rotation) JoinAt(index int, name string) error {
	return r.join(name, func() error {
		return r.ring.Insert(index, name)
	})
}

func (r *Rotation) join(name string, insert func() error) error {
	if err := ValidateMemberName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ring.Contains(name) {
		return fmt.Errorf("%w: member %q", ErrExists, name)
	}
	if err := insert(); err != nil {
		return err
	}

	rlog.Info().Str("member", name).Int("members", r.ring.Len()).Msg("Member joined")
	r.ps.Publish(Event{Kind: EventJoin, Member: name})
	r.showPosition()
	return nil
}

// Leave removes name. If name was under the cursor, the cursor moves on
// to the next member.
func (r *Rotation) Leave(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ring.Remove(name) {
		return fmt.Errorf("%w: %q", ErrNotMember, name)
	}

	r.left(name)
	return nil
}

// LeaveAt removes the member at index and returns its name.
func (r *Rotation) LeaveAt(index int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.ring.Values()
	if err := r.ring.RemoveAt(index); err != nil {
		return "", err
	}

	name := members[index]
	r.left(name)
	return name, nil
}

func (r *Rotation) left(name string) {
	rlog.Info().Str("member", name).Int("members", r.ring.Len()).Msg("Member left")
	r.ps.Publish(Event{Kind: EventLeave, Member: name})
	r.showPosition()
}

// Reset removes every member and forgets the history and lap count.
func (r *Rotation) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring.Clear()
	r.history.Reset()
	r.laps.Store(0)

	rlog.Info().Msg("Rotation reset")
	r.ps.Publish(Event{Kind: EventReset})
	r.showPosition()
}

func (r *Rotation) State() RotationState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// All accessors fail together on an empty ring, leaving blanks.
	head, _ := r.ring.Head()
	current, _ := r.ring.Current()
	previous, _ := r.ring.Previous()
	next, _ := r.ring.Next()

	return RotationState{
		Head:     head,
		Current:  current,
		Previous: previous,
		Next:     next,
		Position: r.ring.Position(),
		Members:  r.ring.Values(),
		Laps:     r.laps.Load(),
	}
}

func (r *Rotation) Members() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ring.Values()
}

// History returns the most recent moves, oldest first.
func (r *Rotation) History() []Move {
	return r.history.Slice()
}

func (r *Rotation) Laps() int64 {
	return r.laps.Load()
}

// Subscribe returns a channel of rotation events and a function that
// cancels the subscription.
func (r *Rotation) Subscribe(buffer int) (func(), <-chan Event) {
	id, ch := r.ps.Subscribe(buffer)
	return func() {
		r.ps.Unsubscribe(id)
	}, ch
}

func (r *Rotation) Subscribers() int {
	return r.ps.Len()
}

// Close ends every subscription.
func (r *Rotation) Close() {
	r.ps.Close()
}

// Run advances the rotation by one member every interval until ctx is
// done. A zero interval disables automatic advancing.
func (r *Rotation) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		rlog.Info().Msg("Auto advance disabled")
		return nil
	}

	rlog.Info().Str("interval", interval.String()).Msg("Running auto advance loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rlog.Info().Msg("Stopping auto advance loop")
			return nil
		case <-ticker.C:
			_, err := r.Advance(1)
			if errors.Is(err, closedlist.ErrEmpty) {
				rlog.Debug().Msg("Nothing to advance, rotation is empty")
			} else if err != nil {
				rlog.Err(err).Msg("Auto advance failed")
			}
		}
	}
}

// showPosition must be called with mu held.
func (r *Rotation) showPosition() {
	if r.indicator == nil {
		return
	}
	if err := r.indicator.Show(r.ring.Position()); err != nil {
		rlog.Err(err).Msg("Indicator update failed")
	}
}
