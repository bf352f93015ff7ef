package congru

// BinaryRelation holds two cache-aligned bit matrices: Lx (row-major by
// lhs) and Rx (column-major by rhs), holding the same pairs. Symmetric
// predicates (declared via NewSymmetricBinaryRelation) share one
// matrix for both roles.
type BinaryRelation struct {
	carrier   *Carrier
	symmetric bool
	lx        []*ConcurrentDenseSet // lx[x] = {y : (x,y) in R}
	rx        []*ConcurrentDenseSet // rx[y] = {x : (x,y) in R}
}

// NewBinaryRelation creates an empty binary relation over carrier.
func NewBinaryRelation(carrier *Carrier) *BinaryRelation {
	return newBinaryRelation(carrier, false)
}

// NewSymmetricBinaryRelation creates an empty binary relation whose Lx
// and Rx coincide, for declaring genuinely symmetric predicates.
func NewSymmetricBinaryRelation(carrier *Carrier) *BinaryRelation {
	return newBinaryRelation(carrier, true)
}

func newBinaryRelation(carrier *Carrier, symmetric bool) *BinaryRelation {
	dim := carrier.ItemDim()
	r := &BinaryRelation{carrier: carrier, symmetric: symmetric}
	r.lx = make([]*ConcurrentDenseSet, dim+1)
	for i := range r.lx {
		r.lx[i] = NewConcurrentDenseSet(dim)
	}
	if symmetric {
		r.rx = r.lx
	} else {
		r.rx = make([]*ConcurrentDenseSet, dim+1)
		for i := range r.rx {
			r.rx[i] = NewConcurrentDenseSet(dim)
		}
	}
	return r
}

func (r *BinaryRelation) Kind() TableKind { return KindBinaryRelation }

// Find reports whether (x,y), normalized to reps, holds.
func (r *BinaryRelation) Find(x, y Ob) bool {
	x, y = r.carrier.Find(x), r.carrier.Find(y)
	return r.lx[x].Contains(y)
}

// Insert records (x,y); idempotent. Sets both the row and column bit.
func (r *BinaryRelation) Insert(x, y Ob) {
	x, y = r.carrier.Find(x), r.carrier.Find(y)
	r.lx[x].Insert(y)
	if !r.symmetric {
		r.rx[y].Insert(x)
	} else if x != y {
		r.lx[y].Insert(x)
	}
}

// RawInsert is the bulk-load variant for snapshot I/O.
func (r *BinaryRelation) RawInsert(x, y Ob) {
	r.lx[x].Insert(y)
	if !r.symmetric {
		r.rx[y].Insert(x)
	} else if x != y {
		r.lx[y].Insert(x)
	}
}

// IterRow calls f for every y such that (x,y) holds.
func (r *BinaryRelation) IterRow(x Ob, f func(Ob) bool) { r.lx[x].Iter(f) }

// IterColumn calls f for every x such that (x,y) holds.
func (r *BinaryRelation) IterColumn(y Ob, f func(Ob) bool) { r.rx[y].Iter(f) }

func (r *BinaryRelation) CountItems() int {
	n := 0
	for _, row := range r.lx {
		n += row.CountItems()
	}
	return n
}

func (r *BinaryRelation) Clear() {
	*r = *newBinaryRelation(r.carrier, r.symmetric)
}

// UnsafeMerge forms the row-union Lx[rep] |= Lx[dep], mirrors every bit
// newly set in row rep into Rx, then clears Lx[dep] and the column bit
// Rx[*][dep]; symmetric steps handle the dep-as-rhs side.
func (r *BinaryRelation) UnsafeMerge(dep Ob) {
	rep := r.carrier.Find(dep)
	if dep == rep {
		return
	}

	newly := NewDenseSet(r.carrier.ItemDim())

	// Row union with diff detection (dense-set Ensure works on the
	// sequential type; snapshot, OR, then re-seat).
	repSnap := r.lx[rep].Snapshot()
	depSnap := r.lx[dep].Snapshot()
	repSnap.Ensure(depSnap, newly)
	newly.Iter(func(y Ob) bool {
		r.lx[rep].Insert(y)
		if !r.symmetric {
			r.rx[y].Insert(rep)
		} else if rep != y {
			r.lx[y].Insert(rep)
		}
		return true
	})

	// Clear row dep and any column references to dep.
	depSnap.Iter(func(y Ob) bool {
		r.lx[dep].Remove(y)
		if !r.symmetric {
			r.rx[y].Remove(dep)
		} else {
			r.lx[y].Remove(dep)
		}
		return true
	})

	if !r.symmetric {
		// dep-as-rhs side: everyone with (x,dep) gets (x,rep) instead.
		colSnap := r.rx[dep].Snapshot()
		colSnap.Iter(func(x Ob) bool {
			r.lx[x].Remove(dep)
			r.lx[x].Insert(rep)
			r.rx[rep].Insert(x)
			return true
		})
		r.rx[dep] = NewConcurrentDenseSet(r.carrier.ItemDim())
	}
	r.lx[dep] = NewConcurrentDenseSet(r.carrier.ItemDim())
}

func (r *BinaryRelation) UpdateValues() {}

// Validate checks that Lx and Rx agree on every row/column bit and,
// for symmetric relations, that they coincide; and that every
// referenced ob is a carrier rep.
func (r *BinaryRelation) Validate() error {
	dim := r.carrier.ItemDim()
	var x Ob
	for x = 1; x <= dim; x++ {
		if !r.carrier.Present(x) {
			if r.lx[x].CountItems() != 0 {
				return &ProgrammerError{Op: "BinaryRelation.Validate", Msg: "row on absent ob"}
			}
			continue
		}
		var err error
		r.lx[x].Iter(func(y Ob) bool {
			if !r.carrier.IsRep(x) || !r.carrier.IsRep(y) {
				err = &ProgrammerError{Op: "BinaryRelation.Validate", Msg: "pair references a non-rep"}
				return false
			}
			if !r.symmetric && !r.rx[y].Contains(x) {
				err = &ProgrammerError{Op: "BinaryRelation.Validate", Msg: "Lx/Rx disagreement"}
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}
