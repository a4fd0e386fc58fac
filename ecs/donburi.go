package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// System is one stage of the frame. Init runs once before the first Update.
type System[C any] interface {
	Init(ctx C)
	Update(ctx C, dt float32)
}

// SystemFunc adapts a plain update function into a System with no Init step.
type SystemFunc[C any] func(ctx C, dt float32)

// Init does nothing.
func (f SystemFunc[C]) Init(C) {}

// Update calls f.
func (f SystemFunc[C]) Update(ctx C, dt float32) { f(ctx, dt) }

// Scheduler runs systems in a fixed order against a donburi world.
type Scheduler[C any] struct {
	world   donburi.World
	systems []System[C]
	pending []System[C] // awaiting Init
	frame   uint64
}

// NewScheduler creates a scheduler for world with the given systems.
func NewScheduler[C any](world donburi.World, systems ...System[C]) *Scheduler[C] {
	s := &Scheduler[C]{world: world}
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

// World returns the donburi world the systems operate on.
func (s *Scheduler[C]) World() donburi.World { return s.world }

// Add appends a system. Systems added after the first Update are
// initialized on the next Update.
func (s *Scheduler[C]) Add(sys System[C]) {
	s.systems = append(s.systems, sys)
	s.pending = append(s.pending, sys)
}

// Frame returns the number of completed Update calls.
func (s *Scheduler[C]) Frame() uint64 { return s.frame }

// Len returns the number of registered systems.
func (s *Scheduler[C]) Len() int { return len(s.systems) }

// Update runs one frame: Init on first use, then every system's Update in
// order, then all queued events.
func (s *Scheduler[C]) Update(ctx C, dt float32) {
	for _, sys := range s.pending {
		sys.Init(ctx)
	}
	s.pending = nil
	for _, sys := range s.systems {
		sys.Update(ctx, dt)
	}
	events.ProcessAllEvents(s.world)
	s.frame++
}

// Collect returns the entries matched by q. Use it to mutate or remove
// entities without modifying the world during iteration.
func Collect(world donburi.World, q *donburi.Query) []*donburi.Entry {
	var out []*donburi.Entry
	q.Each(world, func(e *donburi.Entry) {
		out = append(out, e)
	})
	return out
}

// RemoveAll removes every entity matched by q and returns how many were
// removed.
func RemoveAll(world donburi.World, q *donburi.Query) int {
	entries := Collect(world, q)
	for _, e := range entries {
		world.Remove(e.Entity())
	}
	return len(entries)
}
