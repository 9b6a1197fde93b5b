// Package closedlist implements a ring of values with a movable cursor.
//
// The cursor moves with MoveNext and MoveBack and wraps around the ends.
// Every time the cursor lands on the head node, registered listeners are
// notified and the landing is counted in the move's return value.
//
// A ClosedList is not safe for concurrent use.
package closedlist

import (
	"fmt"
	"slices"
)

// node is a ring member. prev and next are slots in ClosedList.nodes.
type node[T comparable] struct {
	value T
	prev  int
	next  int
}

type ListenerID int64

type listener[T comparable] struct {
	id ListenerID
	fn func(head T)
}

// ClosedList is a circular doubly linked list with a cursor.
// The zero value is an empty list ready to use.
type ClosedList[T comparable] struct {
	// nodes is the arena, free holds its unused slots.
	nodes []node[T]
	free  []int

	// order holds node slots in insertion order. Walking next links from
	// head visits the same sequence.
	order []int

	// head and current are only valid while order is non-empty.
	head    int
	current int

	listeners      []listener[T]
	nextListenerID ListenerID
}

// New creates a list holding values in order. The first value becomes
// both head and current.
func New[T comparable](values ...T) *ClosedList[T] {
	return FromSlice(values)
}

// FromSlice is like New but takes a slice.
func FromSlice[T comparable](values []T) *ClosedList[T] {
	l := &ClosedList[T]{}
	if len(values) == 0 {
		return l
	}

	l.nodes = make([]node[T], 0, len(values))
	l.order = make([]int, 0, len(values))

	for i, v := range values {
		l.nodes = append(l.nodes, node[T]{
			value: v,
			prev:  i - 1,
			next:  i + 1,
		})
		l.order = append(l.order, i)
	}

	last := len(values) - 1
	l.nodes[0].prev = last
	l.nodes[last].next = 0

	l.head = 0
	l.current = 0

	return l
}

func (l *ClosedList[T]) Len() int {
	return len(l.order)
}

func (l *ClosedList[T]) empty() bool {
	return len(l.order) == 0
}

func (l *ClosedList[T]) Head() (T, error) {
	return l.valueOf(l.head)
}

func (l *ClosedList[T]) Current() (T, error) {
	return l.valueOf(l.current)
}

// Previous returns the value before the cursor. In a single element
// list that is the cursor's own value.
func (l *ClosedList[T]) Previous() (T, error) {
	if l.empty() {
		var zero T
		return zero, ErrEmpty
	}
	return l.nodes[l.nodes[l.current].prev].value, nil
}

// Next returns the value after the cursor.
func (l *ClosedList[T]) Next() (T, error) {
	if l.empty() {
		var zero T
		return zero, ErrEmpty
	}
	return l.nodes[l.nodes[l.current].next].value, nil
}

func (l *ClosedList[T]) valueOf(slot int) (T, error) {
	if l.empty() {
		var zero T
		return zero, ErrEmpty
	}
	return l.nodes[slot].value, nil
}

// Position returns the insertion order index of the cursor node, or -1
// if the list is empty.
func (l *ClosedList[T]) Position() int {
	if l.empty() {
		return -1
	}
	return slices.Index(l.order, l.current)
}

//////////////////////////////////
// Cursor

// MoveNext advances the cursor step nodes and returns how many times it
// landed on head along the way.
func (l *ClosedList[T]) MoveNext(step int) (int, error) {
	return l.move(step, true)
}

// MoveBack retreats the cursor step nodes and returns how many times it
// landed on head along the way.
func (l *ClosedList[T]) MoveBack(step int) (int, error) {
	return l.move(step, false)
}

// Step is MoveNext(1).
func (l *ClosedList[T]) Step() (int, error) {
	return l.move(1, true)
}

// StepBack is MoveBack(1).
func (l *ClosedList[T]) StepBack() (int, error) {
	return l.move(1, false)
}

// move walks one link at a time so that every pass over head is seen.
func (l *ClosedList[T]) move(step int, forward bool) (int, error) {
	if step <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}
	if l.empty() {
		return 0, ErrEmpty
	}

	crossings := 0
	for ; step > 0; step-- {
		if forward {
			l.current = l.nodes[l.current].next
		} else {
			l.current = l.nodes[l.current].prev
		}

		if l.current == l.head {
			crossings++
			l.notify(l.nodes[l.head].value)

			// A listener may have emptied the ring.
			if l.empty() {
				break
			}
		}
	}

	return crossings, nil
}

//////////////////////////////////
// Listeners

// OnHeadReached registers fn to be called every time the cursor lands on
// head. fn runs synchronously inside MoveNext or MoveBack. If fn changes
// the list, the walk carries on from wherever the cursor ends up, and
// stops early once the list is empty.
func (l *ClosedList[T]) OnHeadReached(fn func(head T)) ListenerID {
	id := l.nextListenerID
	l.nextListenerID++
	l.listeners = append(l.listeners, listener[T]{id: id, fn: fn})
	return id
}

// RemoveListener unregisters a listener. It reports whether id was found.
func (l *ClosedList[T]) RemoveListener(id ListenerID) bool {
	for i, ln := range l.listeners {
		if ln.id == id {
			// Copy so that a notify loop in progress keeps its view.
			l.listeners = append(l.listeners[:i:i], l.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (l *ClosedList[T]) notify(head T) {
	for _, ln := range l.listeners {
		ln.fn(head)
	}
}

//////////////////////////////////
// Mutation

// Add appends item at the logical end of the ring, just before head.
// The cursor does not move.
func (l *ClosedList[T]) Add(item T) {
	slot := l.alloc(item)

	if l.empty() {
		l.nodes[slot].prev = slot
		l.nodes[slot].next = slot
		l.head = slot
		l.current = slot
	} else {
		l.linkBefore(slot, l.head)
	}

	l.order = append(l.order, slot)
}

// Insert puts item at index in insertion order. Inserting at 0 makes
// item the new head. The cursor keeps pointing at the same node, so its
// Position shifts when the insertion lands at or before it.
func (l *ClosedList[T]) Insert(index int, item T) error {
	if index < 0 || index > len(l.order) {
		return fmt.Errorf("%w: insert at %d with length %d", ErrIndexOutOfRange, index, len(l.order))
	}

	if l.empty() {
		l.Add(item)
		return nil
	}

	slot := l.alloc(item)
	if index == len(l.order) {
		// The node after the last one is head.
		l.linkBefore(slot, l.head)
	} else {
		l.linkBefore(slot, l.order[index])
	}

	if index == 0 {
		l.head = slot
	}

	l.order = slices.Insert(l.order, index, slot)
	return nil
}

// Remove deletes the first node, in insertion order, whose value equals
// item. It reports whether a node was removed.
func (l *ClosedList[T]) Remove(item T) bool {
	i := l.IndexOf(item)
	if i < 0 {
		return false
	}
	l.removeAt(i)
	return true
}

// RemoveAt removes by the value found at index, so with duplicate values
// it is the first equal node in insertion order that goes.
func (l *ClosedList[T]) RemoveAt(index int) error {
	if index < 0 || index >= len(l.order) {
		return fmt.Errorf("%w: remove at %d with length %d", ErrIndexOutOfRange, index, len(l.order))
	}
	l.Remove(l.nodes[l.order[index]].value)
	return nil
}

func (l *ClosedList[T]) removeAt(index int) {
	slot := l.order[index]

	if len(l.order) == 1 {
		l.reset()
		return
	}

	n := l.nodes[slot]
	l.nodes[n.prev].next = n.next
	l.nodes[n.next].prev = n.prev

	if l.head == slot {
		l.head = n.next
	}
	if l.current == slot {
		l.current = n.next
	}

	l.order = slices.Delete(l.order, index, index+1)
	l.release(slot)
}

// Clear removes every node. Listeners stay registered.
func (l *ClosedList[T]) Clear() {
	l.reset()
}

func (l *ClosedList[T]) reset() {
	l.nodes = nil
	l.free = nil
	l.order = nil
	l.head = 0
	l.current = 0
}

func (l *ClosedList[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// IndexOf returns the insertion order index of the first node equal to
// item, or -1.
func (l *ClosedList[T]) IndexOf(item T) int {
	for i, slot := range l.order {
		if l.nodes[slot].value == item {
			return i
		}
	}
	return -1
}

// Values returns a copy of the values in insertion order.
func (l *ClosedList[T]) Values() []T {
	values := make([]T, 0, len(l.order))
	for _, slot := range l.order {
		values = append(values, l.nodes[slot].value)
	}
	return values
}

func (l *ClosedList[T]) String() string {
	return fmt.Sprint(l.Values())
}

// Get is not supported; the cursor is the access path.
func (l *ClosedList[T]) Get(index int) (T, error) {
	var zero T
	return zero, fmt.Errorf("%w: get at %d", ErrUnsupported, index)
}

// Set is not supported; the cursor is the access path.
func (l *ClosedList[T]) Set(index int, item T) error {
	return fmt.Errorf("%w: set at %d", ErrUnsupported, index)
}

//////////////////////////////////
// Arena

func (l *ClosedList[T]) alloc(value T) int {
	if n := len(l.free); n > 0 {
		slot := l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[slot] = node[T]{value: value}
		return slot
	}
	l.nodes = append(l.nodes, node[T]{value: value})
	return len(l.nodes) - 1
}

func (l *ClosedList[T]) release(slot int) {
	l.nodes[slot] = node[T]{}
	l.free = append(l.free, slot)
}

// linkBefore splices the unlinked node at slot in front of the node at at.
func (l *ClosedList[T]) linkBefore(slot, at int) {
	prev := l.nodes[at].prev
	l.nodes[slot].prev = prev
	l.nodes[slot].next = at
	l.nodes[prev].next = slot
	l.nodes[at].prev = slot
}
