package jaus

import (
	"sync"
	"testing"
	"time"
)

func TestStateCoalescesBurst(t *testing.T) {
	s := NewState(map[string]interface{}{"a": 1, "b": 2, "c": 3})

	var mu sync.Mutex
	calls := 0
	var seen []interface{}
	s.Watch(func() {
		mu.Lock()
		calls++
		seen = []interface{}{s.Get("a"), s.Get("b"), s.Get("c")}
		mu.Unlock()
	}, "a", "b", "c")

	s.Set("a", 10)
	s.Set("b", 20)
	s.Set("c", 30)

	time.Sleep(20 * stateCoalesceDelay)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("watcher ran %d times, want 1", calls)
	}
	if seen[0] != 10 || seen[1] != 20 || seen[2] != 30 {
		t.Fatalf("watcher saw %v, want final values", seen)
	}
}

func TestStateSeparateBursts(t *testing.T) {
	s := NewState(nil)
	var mu sync.Mutex
	calls := 0
	s.Watch(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}, "k")

	s.Set("k", 1)
	time.Sleep(20 * stateCoalesceDelay)
	s.Set("k", 2)
	time.Sleep(20 * stateCoalesceDelay)

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("watcher ran %d times, want 2", calls)
	}
}

func TestStateKeyFiltering(t *testing.T) {
	s := NewState(nil)
	var mu sync.Mutex
	var order []string
	watch := func(name string, keys ...string) {
		s.Watch(func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}, keys...)
	}
	watch("ab", "a", "b")
	watch("b", "b")
	watch("c", "c")

	s.Set("b", 1)
	time.Sleep(20 * stateCoalesceDelay)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "ab" || order[1] != "b" {
		t.Fatalf("watchers fired = %v, want [ab b] in registration order", order)
	}
}

func TestStateDelete(t *testing.T) {
	s := NewState(map[string]interface{}{"k": 1})
	fired := make(chan struct{}, 1)
	s.Watch(func() { fired <- struct{}{} }, "k")

	s.Delete("k")
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("delete did not notify watcher")
	}
	if s.Get("k") != nil {
		t.Fatal("key survived delete")
	}
}
