package ecs

import (
	"testing"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

type testCtx struct {
	log []string
}

type recordingSystem struct {
	name  string
	inits int
}

func (r *recordingSystem) Init(ctx *testCtx) {
	r.inits++
	ctx.log = append(ctx.log, r.name+".init")
}

func (r *recordingSystem) Update(ctx *testCtx, dt float32) {
	ctx.log = append(ctx.log, r.name+".update")
}

func TestSchedulerOrder(t *testing.T) {
	a := &recordingSystem{name: "a"}
	b := &recordingSystem{name: "b"}
	s := NewScheduler[*testCtx](donburi.NewWorld(), a, b)
	ctx := &testCtx{}

	s.Update(ctx, 1.0/60)
	s.Update(ctx, 1.0/60)

	want := []string{"a.init", "b.init", "a.update", "b.update", "a.update", "b.update"}
	if len(ctx.log) != len(want) {
		t.Fatalf("log = %v, want %v", ctx.log, want)
	}
	for i := range want {
		if ctx.log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, ctx.log[i], want[i])
		}
	}
	if a.inits != 1 || b.inits != 1 {
		t.Errorf("inits = %d,%d, want 1,1", a.inits, b.inits)
	}
	if s.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", s.Frame())
	}
}

func TestSchedulerAddAfterStart(t *testing.T) {
	a := &recordingSystem{name: "a"}
	s := NewScheduler[*testCtx](donburi.NewWorld(), a)
	ctx := &testCtx{}
	s.Update(ctx, 0)

	c := &recordingSystem{name: "c"}
	s.Add(c)
	s.Update(ctx, 0)
	if a.inits != 1 || c.inits != 1 {
		t.Errorf("inits = %d,%d, want 1,1", a.inits, c.inits)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestSystemFunc(t *testing.T) {
	var got float32
	s := NewScheduler[*testCtx](donburi.NewWorld(), SystemFunc[*testCtx](func(_ *testCtx, dt float32) {
		got += dt
	}))
	s.Update(&testCtx{}, 0.5)
	s.Update(&testCtx{}, 0.25)
	if got != 0.75 {
		t.Errorf("dt sum = %v, want 0.75", got)
	}
}

var testEvent = events.NewEventType[int]()

func TestSchedulerFlushesEvents(t *testing.T) {
	world := donburi.NewWorld()
	var received []int
	testEvent.Subscribe(world, func(w donburi.World, v int) {
		received = append(received, v)
	})
	s := NewScheduler[*testCtx](world, SystemFunc[*testCtx](func(_ *testCtx, _ float32) {
		testEvent.Publish(world, 7)
	}))

	s.Update(&testCtx{}, 0)
	if len(received) != 1 || received[0] != 7 {
		t.Errorf("received = %v, want [7]", received)
	}
}

type marker struct{ N int }

var markerType = donburi.NewComponentType[marker]()

func TestCollectAndRemoveAll(t *testing.T) {
	world := donburi.NewWorld()
	for i := 0; i < 3; i++ {
		e := world.Entry(world.Create(markerType))
		markerType.SetValue(e, marker{N: i})
	}
	world.Create()

	q := donburi.NewQuery(filter.Contains(markerType))
	if n := len(Collect(world, q)); n != 3 {
		t.Errorf("Collect = %d entries, want 3", n)
	}
	if n := RemoveAll(world, q); n != 3 {
		t.Errorf("RemoveAll = %d, want 3", n)
	}
	if n := q.Count(world); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
	if world.Len() != 1 {
		t.Errorf("world.Len = %d, want 1", world.Len())
	}
}
