package congru

import "testing"

func TestDenseSetStoreInternDedupsEqualSets(t *testing.T) {
	store := NewDenseSetStore()
	a := NewDenseSet(100)
	a.Insert(1)
	a.Insert(50)
	b := NewDenseSet(100)
	b.Insert(1)
	b.Insert(50)

	ia, err := store.Intern(a)
	if err != nil {
		t.Fatalf("Intern(a) = %v", err)
	}
	ib, err := store.Intern(b)
	if err != nil {
		t.Fatalf("Intern(b) = %v", err)
	}
	if ia != ib {
		t.Error("two equal sets should intern to the same pointer")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after interning two equal sets", store.Len())
	}
}

func TestDenseSetStoreDistinctSetsGetDistinctEntries(t *testing.T) {
	store := NewDenseSetStore()
	a := NewDenseSet(100)
	a.Insert(1)
	b := NewDenseSet(100)
	b.Insert(2)

	store.Intern(a)
	store.Intern(b)
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2 for two distinct sets", store.Len())
	}
}

func TestDenseSetStoreDigestStable(t *testing.T) {
	a := NewDenseSet(100)
	a.Insert(3)
	a.Insert(70)
	if Digest(a) != Digest(a.Clone()) {
		t.Error("Digest should be stable across equal clones")
	}
}
