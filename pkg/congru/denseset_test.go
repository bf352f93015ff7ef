package congru

import "testing"

func TestDenseSetInsertContainsRemove(t *testing.T) {
	s := NewDenseSet(100)
	if s.Contains(1) {
		t.Fatal("fresh set should not contain 1")
	}
	s.Insert(1)
	s.Insert(64)
	s.Insert(100)
	for _, ob := range []Ob{1, 64, 100} {
		if !s.Contains(ob) {
			t.Errorf("expected set to contain %d", ob)
		}
	}
	if s.CountItems() != 3 {
		t.Errorf("CountItems() = %d, want 3", s.CountItems())
	}
	s.Remove(64)
	if s.Contains(64) {
		t.Error("expected 64 to be removed")
	}
	if s.CountItems() != 2 {
		t.Errorf("CountItems() = %d, want 2", s.CountItems())
	}
}

func TestDenseSetOutOfRangeIsNoop(t *testing.T) {
	s := NewDenseSet(10)
	s.Insert(0)
	s.Insert(11)
	if s.CountItems() != 0 {
		t.Errorf("out-of-range inserts should be ignored, got count %d", s.CountItems())
	}
	if s.Contains(0) || s.Contains(11) {
		t.Error("out-of-range obs should never be contained")
	}
}

func TestDenseSetMergeAndEqual(t *testing.T) {
	a := NewDenseSet(70)
	b := NewDenseSet(70)
	a.Insert(1)
	a.Insert(65)
	b.Insert(2)
	b.Insert(65)

	a.Merge(b)
	for _, ob := range []Ob{1, 2, 65} {
		if !a.Contains(ob) {
			t.Errorf("merged set should contain %d", ob)
		}
	}

	c := a.Clone()
	if !c.Equal(a) {
		t.Error("clone should equal original")
	}
	c.Insert(3)
	if c.Equal(a) {
		t.Error("mutated clone should no longer equal original")
	}
}

func TestDenseSetEnsureReportsNewlySetBits(t *testing.T) {
	a := NewDenseSet(70)
	b := NewDenseSet(70)
	diff := NewDenseSet(70)
	a.Insert(1)
	b.Insert(1)
	b.Insert(65)

	a.Ensure(b, diff)
	if diff.Contains(1) {
		t.Error("diff should not report a bit already set in a")
	}
	if !diff.Contains(65) {
		t.Error("diff should report the newly set bit")
	}
	if !a.Contains(65) {
		t.Error("a should now contain 65 after Ensure")
	}
}

func TestDenseSetDisjoint(t *testing.T) {
	a := NewDenseSet(10)
	b := NewDenseSet(10)
	a.Insert(1)
	b.Insert(2)
	if !a.Disjoint(b) {
		t.Error("expected disjoint sets")
	}
	b.Insert(1)
	if a.Disjoint(b) {
		t.Error("expected overlapping sets")
	}
}

func TestDenseSetIterAscending(t *testing.T) {
	s := NewDenseSet(200)
	want := []Ob{1, 63, 64, 65, 128, 199}
	for _, ob := range want {
		s.Insert(ob)
	}
	var got []Ob
	s.Iter(func(ob Ob) bool {
		got = append(got, ob)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("got %d obs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iter()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDenseSetIterEarlyStop(t *testing.T) {
	s := NewDenseSet(10)
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)
	var seen int
	s.Iter(func(ob Ob) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("expected iteration to stop after first callback, saw %d", seen)
	}
}

func TestDenseSetIterIntersection(t *testing.T) {
	a := NewDenseSet(70)
	b := NewDenseSet(70)
	a.Insert(1)
	a.Insert(65)
	b.Insert(65)
	b.Insert(2)

	var got []Ob
	a.IterIntersection(b, func(ob Ob) bool {
		got = append(got, ob)
		return true
	})
	if len(got) != 1 || got[0] != 65 {
		t.Errorf("IterIntersection() = %v, want [65]", got)
	}
}

func TestDenseSetValidateRejectsOutOfRangeBit(t *testing.T) {
	s := NewDenseSet(5)
	if err := s.Validate(); err != nil {
		t.Fatalf("fresh set should validate, got %v", err)
	}
	// Force a bit beyond item_dim into the last word directly.
	s.words[len(s.words)-1] |= 1 << 63
	if err := s.Validate(); err == nil {
		t.Error("expected Validate to reject an out-of-range bit")
	}
}
