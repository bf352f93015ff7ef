package congru

import "testing"

func TestStructureClearPreservesNegationsResetsTables(t *testing.T) {
	st := NewStructure(10)
	st.Signature().DeclareUnaryRelation("P")
	st.Signature().DeclareNegation("LESS", "NLESS")
	a := st.Carrier().TryInsert()
	st.Signature().UnaryRelation("P").Insert(a)

	st.Clear()
	if st.Signature().UnaryRelation("P") != nil {
		t.Error("Clear should drop declared tables")
	}
	if st.Signature().Negate("LESS") != "NLESS" {
		t.Error("Clear should preserve declared negation pairs")
	}
	if st.Carrier().ItemCount() != 0 {
		t.Error("Clear should reset the carrier")
	}
}

func TestStructureResizeMigratesState(t *testing.T) {
	st := NewStructure(10)
	rel := st.Signature().DeclareBinaryRelation("LESS")
	a := st.Carrier().TryInsert()
	b := st.Carrier().TryInsert()
	rel.Insert(a, b)

	if err := st.Resize(20); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if st.Carrier().ItemDim() != 20 {
		t.Errorf("ItemDim() = %d, want 20", st.Carrier().ItemDim())
	}
	if !st.Signature().BinaryRelation("LESS").Find(a, b) {
		t.Error("Resize should preserve existing tuples under the same ob identities")
	}
}

func TestStructureResizeRejectsShrinkAndPendingMerges(t *testing.T) {
	st := NewStructure(10)
	if err := st.Resize(5); err == nil {
		t.Error("Resize should reject shrinking item_dim")
	}

	a := st.Carrier().TryInsert()
	b := st.Carrier().TryInsert()
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	st.Carrier().Merge(hi, lo)
	if err := st.Resize(20); err == nil {
		t.Error("Resize should reject a structure with a pending merge (item_count != rep_count)")
	}
}

func TestStructureValidateConsistentDetectsNegationViolation(t *testing.T) {
	st := NewStructure(10)
	st.Signature().DeclareNegation("LESS", "NLESS")
	less := st.Signature().DeclareBinaryRelation("LESS")
	nless := st.Signature().DeclareBinaryRelation("NLESS")
	a := st.Carrier().TryInsert()
	b := st.Carrier().TryInsert()

	less.Insert(a, b)
	if err := st.ValidateConsistent(); err != nil {
		t.Fatalf("ValidateConsistent() = %v before violation", err)
	}

	nless.Insert(a, b)
	if err := st.ValidateConsistent(); err == nil {
		t.Error("ValidateConsistent should reject a relation and its declared negation both holding")
	}
}

func TestStructureValidateRunsTableValidation(t *testing.T) {
	st := NewStructure(10)
	st.Signature().DeclareUnaryRelation("P")
	if err := st.Validate(); err != nil {
		t.Errorf("Validate() on a fresh structure = %v", err)
	}
}
