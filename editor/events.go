package editor

import (
	"landscape-engine/planar"
)

// Event is something the engine reports back to the host application.
type Event interface {
	isEvent()
}

// ObjectSelected is emitted when the user picks an object.
type ObjectSelected struct {
	ID string
}

// SelectionCleared is emitted when a selection is dropped, either by
// clicking empty space or because the selected object went away.
type SelectionCleared struct{}

// ObjectUpdated carries the new values the user set with a drag. Only the
// changed fields are non-nil.
type ObjectUpdated struct {
	ID      string
	Changes Changes
}

// Changes lists the edited fields of an object. Scale components are the
// object's scale multipliers, not world sizes.
type Changes struct {
	Position *planar.Point
	ScaleX   *float32
	ScaleY   *float32
	ScaleZ   *float32
}

// Empty reports whether no field changed.
func (c Changes) Empty() bool {
	return c.Position == nil && c.ScaleX == nil && c.ScaleY == nil && c.ScaleZ == nil
}

func (ObjectSelected) isEvent()   {}
func (SelectionCleared) isEvent() {}
func (ObjectUpdated) isEvent()    {}

// Bus delivers events synchronously, in subscription order, on the goroutine
// that drives the engine.
type Bus struct {
	next     int
	handlers []subscription
}

type subscription struct {
	id int
	fn func(Event)
}

// Subscribe registers fn and returns a function removing it again.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.next++
	id := b.next
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})
	return func() {
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish hands e to every subscriber.
func (b *Bus) Publish(e Event) {
	for _, s := range b.handlers {
		s.fn(e)
	}
}
