// Package ecs runs ordered systems over a [Donburi] world.
//
// A [Scheduler] owns the world and a fixed list of systems. Each call to
// [Scheduler.Update] runs every system once, in registration order, and then
// flushes queued donburi events so subscribers observe a consistent frame.
// Systems receive a caller-defined context value C that carries singletons
// as named fields.
//
// Usage:
//
//	sched := ecs.NewScheduler[*MyContext](donburi.NewWorld(), inputSystem, drawSystem)
//	sched.Update(ctx, dt)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
