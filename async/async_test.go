package async

import (
	"sync"
	"testing"
)

func TestConstantIsResolved(t *testing.T) {
	a := Constant(7)
	v, ok := a.Value()
	if !ok || v != 7 {
		t.Errorf("Value() = (%d,%v), want (7,true)", v, ok)
	}
	calls := 0
	a.OnResult(func(v int) { calls++ })
	if calls != 1 {
		t.Errorf("subscriber calls = %d, want 1 (immediate)", calls)
	}
}

func TestResolveFiresEachSubscriberOnce(t *testing.T) {
	a := New[string]()
	var before, after int
	a.OnResult(func(string) { before++ })
	a.OnResult(func(string) { before++ })

	if !a.Resolve("x") {
		t.Fatal("first Resolve returned false")
	}
	if a.Resolve("y") {
		t.Error("second Resolve returned true")
	}
	a.OnResult(func(v string) {
		after++
		if v != "x" {
			t.Errorf("late subscriber got %q, want x", v)
		}
	})

	if before != 2 {
		t.Errorf("early subscriber calls = %d, want 2", before)
	}
	if after != 1 {
		t.Errorf("late subscriber calls = %d, want 1", after)
	}
}

func TestMapChainFiresOnce(t *testing.T) {
	src := New[int]()
	var evals [3]int
	m1 := Map(src, func(v int) int { evals[0]++; return v + 1 })
	m2 := Map(m1, func(v int) int { evals[1]++; return v * 10 })
	m3 := Map(m2, func(v int) string { evals[2]++; return string(rune('a' + v/10)) })

	var got []string
	m3.OnResult(func(s string) { got = append(got, s) })

	if m3.IsResolved() {
		t.Fatal("chain resolved before source")
	}
	src.Resolve(1)
	src.Resolve(5)
	m3.OnResult(func(s string) { got = append(got, s) })

	for i, n := range evals {
		if n != 1 {
			t.Errorf("transform %d evaluated %d times, want 1", i, n)
		}
	}
	if len(got) != 2 || got[0] != "c" || got[1] != "c" {
		t.Errorf("results = %v, want [c c]", got)
	}
}

func TestMapOnResolvedSource(t *testing.T) {
	m := Map(Constant(2), func(v int) int { return v * v })
	if v, ok := m.Value(); !ok || v != 4 {
		t.Errorf("Value() = (%d,%v), want (4,true)", v, ok)
	}
}

func TestThen(t *testing.T) {
	src := New[int]()
	inner := New[string]()
	out := Then(src, func(int) *Async[string] { return inner })

	src.Resolve(1)
	if out.IsResolved() {
		t.Fatal("Then resolved before inner")
	}
	inner.Resolve("done")
	if v, _ := out.Value(); v != "done" {
		t.Errorf("Then value = %q, want done", v)
	}
}

func TestUnresolvedStaysPending(t *testing.T) {
	a := New[int]()
	fired := false
	a.OnResult(func(int) { fired = true })
	if fired || a.IsResolved() {
		t.Error("pending Async fired without Resolve")
	}
}

func TestMailboxHandsOffToDrainer(t *testing.T) {
	var mb Mailbox
	a := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			ResolveLater(&mb, a, v)
		}(i)
	}
	wg.Wait()

	if a.IsResolved() {
		t.Fatal("Async resolved off the draining goroutine")
	}
	if mb.Len() != 8 {
		t.Errorf("Len = %d, want 8", mb.Len())
	}
	if n := mb.Drain(); n != 8 {
		t.Errorf("Drain = %d, want 8", n)
	}
	if !a.IsResolved() {
		t.Error("Async not resolved after Drain")
	}
	if n := mb.Drain(); n != 0 {
		t.Errorf("second Drain = %d, want 0", n)
	}
}

func TestMailboxPostDuringDrainRunsNextFrame(t *testing.T) {
	var mb Mailbox
	ran := 0
	mb.Post(func() {
		ran++
		mb.Post(func() { ran++ })
	})
	mb.Drain()
	if ran != 1 {
		t.Errorf("ran = %d after first drain, want 1", ran)
	}
	mb.Drain()
	if ran != 2 {
		t.Errorf("ran = %d after second drain, want 2", ran)
	}
}
