package congru

import (
	"sync"
	"testing"
)

func TestCarrierTryInsertAllocatesDistinctReps(t *testing.T) {
	c := NewCarrier(10)
	seen := make(map[Ob]bool)
	for i := 0; i < 10; i++ {
		ob := c.TryInsert()
		if ob == 0 {
			t.Fatalf("TryInsert() returned 0 before capacity exhausted (i=%d)", i)
		}
		if seen[ob] {
			t.Fatalf("TryInsert() returned duplicate ob %d", ob)
		}
		seen[ob] = true
		if !c.IsRep(ob) {
			t.Errorf("freshly inserted ob %d should be its own rep", ob)
		}
	}
	if c.TryInsert() != 0 {
		t.Error("TryInsert() should return 0 once the carrier is full")
	}
	if c.ItemCount() != 10 || c.RepCount() != 10 {
		t.Errorf("ItemCount()=%d RepCount()=%d, want 10,10", c.ItemCount(), c.RepCount())
	}
}

func TestCarrierMergeOrdersDepAboveRep(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	c.Merge(hi, lo)
	if c.Find(hi) != lo {
		t.Errorf("Find(%d) = %d, want %d", hi, c.Find(hi), lo)
	}
	if c.RepCount() != 1 {
		t.Errorf("RepCount() = %d, want 1 after merge", c.RepCount())
	}
}

func TestCarrierMergeInvokesCallbackOnce(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()
	var calls int
	var mergedDep Ob
	c.SetMergeCallback(func(dep Ob) {
		calls++
		mergedDep = dep
	})
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	c.Merge(hi, lo)
	c.Merge(hi, lo) // idempotent: already identified, must not re-fire
	if calls != 1 {
		t.Errorf("merge callback fired %d times, want 1", calls)
	}
	if mergedDep != hi {
		t.Errorf("merge callback saw dep=%d, want %d", mergedDep, hi)
	}
}

func TestCarrierEnsureEqualMergesHigherIntoLower(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	rep := c.EnsureEqual(a, b)
	if rep != lo {
		t.Errorf("EnsureEqual() = %d, want %d", rep, lo)
	}
	if c.Find(hi) != lo {
		t.Errorf("Find(%d) = %d, want %d", hi, c.Find(hi), lo)
	}
}

func TestCarrierSetAndMergeSetOrMerge(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()

	var dest Ob
	c.SetOrMerge(&dest, a)
	if dest != a {
		t.Errorf("SetOrMerge on zero destin should write source, got %d want %d", dest, a)
	}
	c.SetOrMerge(&dest, b)
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if c.Find(dest) != lo || c.Find(hi) != lo {
		t.Error("SetOrMerge on a populated destin should merge rather than overwrite")
	}

	c2 := NewCarrier(10)
	x := c2.TryInsert()
	y := c2.TryInsert()
	destin := x
	merged := c2.SetAndMerge(&destin, y)
	if !merged {
		t.Error("SetAndMerge should report a merge when both operands are nonzero and differ")
	}
	var zero Ob
	if c2.SetAndMerge(&zero, y) {
		t.Error("SetAndMerge should be a no-op when destin is zero")
	}
}

func TestCarrierFindPanicsOnAbsentOb(t *testing.T) {
	c := NewCarrier(10)
	defer func() {
		if recover() == nil {
			t.Error("Find on an absent ob should panic")
		}
	}()
	c.Find(1)
}

func TestCarrierUnsafeRemoveRejectsRepWithDeps(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	c.Merge(hi, lo)
	if err := c.UnsafeRemove(lo); err == nil {
		t.Error("expected UnsafeRemove to reject a rep that still has a dep")
	}
	if err := c.UnsafeRemove(hi); err != nil {
		t.Errorf("UnsafeRemove of a dep should succeed, got %v", err)
	}
	if err := c.UnsafeRemove(lo); err != nil {
		t.Errorf("UnsafeRemove of the now-childless rep should succeed, got %v", err)
	}
}

func TestCarrierValidateDetectsCorruption(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	_ = a
	if err := c.Validate(); err != nil {
		t.Fatalf("fresh carrier should validate, got %v", err)
	}
	c.itemCount.Add(1)
	if err := c.Validate(); err == nil {
		t.Error("Validate should report a corrupted item_count")
	}
}

func TestCarrierConcurrentMergesConverge(t *testing.T) {
	c := NewCarrier(200)
	obs := make([]Ob, 0, 200)
	for i := 0; i < 200; i++ {
		obs = append(obs, c.TryInsert())
	}
	var wg sync.WaitGroup
	for i := 1; i < len(obs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.EnsureEqual(obs[0], obs[i])
		}(i)
	}
	wg.Wait()
	rep := c.Find(obs[0])
	for _, ob := range obs {
		if c.Find(ob) != rep {
			t.Errorf("ob %d has rep %d, want everything merged to %d", ob, c.Find(ob), rep)
		}
	}
	if c.RepCount() != 1 {
		t.Errorf("RepCount() = %d, want 1 after merging every ob together", c.RepCount())
	}
}
