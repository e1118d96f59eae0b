package container

import "testing"

func TestOrderedSetInsertDedupSorted(t *testing.T) {
	s := NewOrderedSet(2)
	for _, v := range []uint32{5, 1, 3, 1, 5, 2} {
		s.Insert(v)
	}
	items := s.Items()
	want := []uint32{1, 2, 3, 5}
	if len(items) != len(want) {
		t.Fatalf("Items() = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("Items() = %v, want %v", items, want)
		}
	}
	if s.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", s.Len(), len(want))
	}
}

func TestOrderedSetContains(t *testing.T) {
	s := NewOrderedSet(4)
	s.Insert(10)
	s.Insert(20)
	if !s.Contains(10) || !s.Contains(20) {
		t.Error("Contains must report true for inserted elements")
	}
	if s.Contains(15) {
		t.Error("Contains must report false for an absent element")
	}
}

func TestOrderedSetKeyStable(t *testing.T) {
	a := NewOrderedSet(2)
	a.Insert(3)
	a.Insert(1)
	b := NewOrderedSet(2)
	b.Insert(1)
	b.Insert(3)
	if a.Key() != b.Key() {
		t.Error("two sets built from the same elements in different insertion order must share a Key")
	}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](2)
	if !q.Empty() {
		t.Error("new queue must be empty")
	}
	q.Push(1)
	q.Push(2)
	q.Push(3)
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on a drained queue must report ok=false")
	}
}

func TestQueueCompaction(t *testing.T) {
	q := NewQueue[int](4)
	for i := 0; i < 200; i++ {
		q.Push(i)
		if _, ok := q.Pop(); !ok {
			t.Fatalf("Pop() failed at i=%d", i)
		}
	}
	if !q.Empty() {
		t.Error("queue must be empty after equal push/pop counts")
	}
}

func TestStateSetIndexGetOrCreate(t *testing.T) {
	idx := NewStateSetIndex()
	calls := 0
	next := func() uint32 {
		calls++
		return uint32(calls - 1)
	}
	id1, created1 := idx.GetOrCreate("a", next)
	if !created1 || id1 != 0 {
		t.Fatalf("first GetOrCreate(%q) = (%d, %v), want (0, true)", "a", id1, created1)
	}
	id2, created2 := idx.GetOrCreate("a", next)
	if created2 || id2 != id1 {
		t.Fatalf("second GetOrCreate(%q) = (%d, %v), want (%d, false)", "a", id2, created2, id1)
	}
	id3, created3 := idx.GetOrCreate("b", next)
	if !created3 || id3 == id1 {
		t.Fatalf("GetOrCreate(%q) = (%d, %v), want a fresh id", "b", id3, created3)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}
