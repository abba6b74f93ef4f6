package config

import "testing"

func TestPushPopRestoresPriorValues(t *testing.T) {
	s := NewStack()
	s.Set("x.y", 1)
	before, _ := s.Get("x.y", true)

	s.Push(map[string]any{"x": map[string]any{"y": 2}})
	s.Pop()

	after, _ := s.Get("x.y", true)
	if before != after {
		t.Fatalf("pop did not restore prior value: before=%v after=%v", before, after)
	}
}

func TestDeepMergeNonDestructive(t *testing.T) {
	s := NewStack()
	s.Push(map[string]any{"a": map[string]any{"k": 1}})
	afterA, _ := s.Get("a.k", true)

	s.Push(map[string]any{"a": map[string]any{"k": 2}})
	s.Pop()

	afterPop, _ := s.Get("a.k", true)
	if afterA != afterPop {
		t.Fatalf("push(a);push(b);pop() changed a's own value: %v != %v", afterA, afterPop)
	}
}

func TestCircularDependencyDetected(t *testing.T) {
	s := NewStack()
	s.Set("A", Thunk(func() any {
		v, _ := s.Resolve("B")
		return v
	}))
	s.Set("B", Thunk(func() any {
		v, _ := s.Resolve("A")
		return v
	}))

	_, err := s.Resolve("A")
	if err == nil {
		t.Fatal("expected circular dependency error, got nil")
	}
}

func TestPathSemantics(t *testing.T) {
	s := NewStack()
	s.Set("x.0.y", 7)

	v, _ := s.Get("x.0.y", true)
	if v != 7 {
		t.Fatalf("expected 7, got %v", v)
	}

	x, _ := s.Get("x", true)
	seq, ok := x.([]any)
	if !ok || len(seq) != 1 {
		t.Fatalf("expected x to resolve to a one-element sequence, got %v (%T)", x, x)
	}
	m, ok := seq[0].(map[string]any)
	if !ok || m["y"] != 7 {
		t.Fatalf("expected x[0] = {y: 7}, got %v", seq[0])
	}
}

func TestDeferredValueResolvedAndCached(t *testing.T) {
	s := NewStack()
	calls := 0
	s.Set("derived", Thunk(func() any {
		calls++
		return "harp-string-name"
	}))

	v1, err := s.Get("derived", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, _ := s.Get("derived", true)
	if v1 != "harp-string-name" || v2 != "harp-string-name" {
		t.Fatalf("unexpected resolved values: %v, %v", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("expected thunk to be cached after first resolution, got %v calls", calls)
	}
}

func TestSetInvalidatesCache(t *testing.T) {
	s := NewStack()
	calls := 0
	s.Set("derived", Thunk(func() any {
		calls++
		return calls
	}))
	first, _ := s.Get("derived", true)
	s.Set("unrelated", "x")
	second, _ := s.Get("derived", true)
	if first == second {
		t.Fatalf("expected cache to be invalidated by Set, got same value %v twice", first)
	}
}

func TestUnresolvedGetReturnsRawThunk(t *testing.T) {
	s := NewStack()
	s.Set("derived", Thunk(func() any { return 42 }))
	v, _ := s.Get("derived", false)
	if _, ok := v.(Thunk); !ok {
		t.Fatalf("expected raw Thunk with resolve=false, got %T", v)
	}
}
