package congru

import "fmt"

// Structure wraps a Signature with high-level lifecycle operations:
// clear, resize, and two tiers of validation.
type Structure struct {
	sig *Signature

	// Debug is a caller-set flag. No method in this package reads it:
	// validation runs only when Validate or ValidateConsistent is called,
	// and ProgrammerErrors are raised the same way whatever its value.
	Debug bool
}

// NewStructure creates an empty Structure over a freshly allocated
// Carrier sized for obs 1..itemDim.
func NewStructure(itemDim Ob) *Structure {
	return &Structure{sig: NewDefaultSignature(NewCarrier(itemDim))}
}

// Signature returns the structure's signature.
func (st *Structure) Signature() *Signature { return st.sig }

// Carrier returns the structure's shared carrier.
func (st *Structure) Carrier() *Carrier { return st.sig.Carrier() }

// Clear drops every declared table and discards the carrier, replacing
// them with a fresh empty signature over a carrier of the same item_dim;
// the negation pairs are kept.
func (st *Structure) Clear() {
	dim := st.Carrier().ItemDim()
	negations := st.sig.negations
	st.sig = NewSignature(NewCarrier(dim))
	st.sig.negations = negations
}

// Resize allocates a larger carrier and migrates obs 1..n into it,
// preserving identity, then re-declares every table (now over the new
// carrier) and replays every tuple/pair/value through RawInsert.
//
// Resize requires exclusive access: callers must ensure no concurrent
// inserts or merges are in flight, and that the structure is already
// congruence-closed (item_count == rep_count, i.e. no pending deps) —
// resize is a checkpoint operation, run after the merge cascade has
// drained, not mid-cascade.
func (st *Structure) Resize(itemDim Ob) error {
	old := st.Carrier()
	if itemDim < old.ItemDim() {
		return &ProgrammerError{Op: "Structure.Resize", Msg: "cannot shrink item_dim"}
	}
	if old.ItemCount() != old.RepCount() {
		return &ProgrammerError{Op: "Structure.Resize", Msg: "structure has pending merges; drain the cascade first"}
	}
	fresh := NewCarrier(itemDim)
	var ob Ob
	for ob = 1; ob <= old.ItemDim(); ob++ {
		if old.Present(ob) {
			if err := fresh.RawInsertAt(ob); err != nil {
				return fmt.Errorf("congru: resize: %w", err)
			}
		}
	}
	newSig := NewSignature(fresh)
	newSig.negations = st.sig.negations

	for name, t := range st.sig.unaryRelations {
		nt := newSig.DeclareUnaryRelation(name)
		t.Iter(func(x Ob) bool { nt.RawInsert(x); return true })
	}
	for name, t := range st.sig.binaryRelations {
		var nt *BinaryRelation
		if t.symmetric {
			nt = newSig.DeclareSymmetricBinaryRelation(name)
		} else {
			nt = newSig.DeclareBinaryRelation(name)
		}
		var x Ob
		for x = 1; x <= old.ItemDim(); x++ {
			t.IterRow(x, func(y Ob) bool { nt.RawInsert(x, y); return true })
		}
	}
	for name, t := range st.sig.nullaryFunctions {
		nt := newSig.DeclareNullaryFunction(name)
		if v := t.Find(); v != 0 {
			nt.RawInsert(v)
		}
	}
	for name, t := range st.sig.injectiveFunctions {
		nt := newSig.DeclareInjectiveFunction(name)
		t.Iter(func(x Ob) bool { nt.RawInsert(x, t.Find(x)); return true })
	}
	for name, t := range st.sig.binaryFunctions {
		nt := newSig.DeclareBinaryFunction(name)
		var x Ob
		for x = 1; x <= old.ItemDim(); x++ {
			t.IterRow(x, func(y Ob) bool { nt.RawInsert(x, y, t.Find(x, y)); return true })
		}
	}
	for name, t := range st.sig.symmetricFunctions {
		nt := newSig.DeclareSymmetricFunction(name)
		var x Ob
		for x = 1; x <= old.ItemDim(); x++ {
			t.IterLine(x, func(y Ob) bool {
				if x <= y {
					nt.RawInsert(x, y, t.Find(x, y))
				}
				return true
			})
		}
	}

	st.sig = newSig
	return nil
}

// ValidateConsistent runs a fast sanity pass: item_count >= rep_count,
// and no pair held by both a binary relation and its declared negation.
// It does not compare any table's map with its bit lines, and does not
// run the full quantified invariant set.
func (st *Structure) ValidateConsistent() error {
	c := st.Carrier()
	if c.ItemCount() < c.RepCount() {
		return &ProgrammerError{Op: "Structure.ValidateConsistent", Msg: "item_count < rep_count"}
	}
	for name, rel := range st.sig.binaryRelations {
		neg := st.sig.Negate(name)
		if neg == "" {
			continue
		}
		other := st.sig.BinaryRelation(neg)
		if other == nil {
			continue
		}
		var x Ob
		var err error
		for x = 1; x <= c.ItemDim() && err == nil; x++ {
			if !c.Present(x) {
				continue
			}
			rel.IterRow(x, func(y Ob) bool {
				if other.Find(x, y) {
					err = &InconsistencyError{Relation: name, Negation: neg, X: x, Y: y}
					return false
				}
				return true
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate runs every invariant in spec §8 under exclusive access:
// carrier consistency, every table's own Validate, and disjointness of
// every declared negation pair.
func (st *Structure) Validate() error {
	if err := st.Carrier().Validate(); err != nil {
		return err
	}
	for name, t := range st.sig.AllTables() {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("table %q: %w", name, err)
		}
	}
	return st.ValidateConsistent()
}
