package congru

// UnaryRelation holds a DenseSet of obs over a shared carrier.
type UnaryRelation struct {
	carrier *Carrier
	set     *ConcurrentDenseSet
}

// NewUnaryRelation creates an empty unary relation over carrier.
func NewUnaryRelation(carrier *Carrier) *UnaryRelation {
	return &UnaryRelation{carrier: carrier, set: NewConcurrentDenseSet(carrier.ItemDim())}
}

func (r *UnaryRelation) Kind() TableKind { return KindUnaryRelation }

// Find reports whether x (or its rep) is contained.
func (r *UnaryRelation) Find(x Ob) bool {
	return r.set.Contains(r.carrier.Find(x))
}

// Insert records x as contained; idempotent.
func (r *UnaryRelation) Insert(x Ob) {
	r.set.Insert(r.carrier.Find(x))
}

// RawInsert is the bulk-load variant used by snapshot I/O: callers
// guarantee absence of merges for the duration of the load.
func (r *UnaryRelation) RawInsert(x Ob) { r.set.Insert(x) }

// Iter calls f for every contained ob, in ascending order.
func (r *UnaryRelation) Iter(f func(Ob) bool) { r.set.Iter(f) }

func (r *UnaryRelation) CountItems() int { return r.set.CountItems() }

func (r *UnaryRelation) Clear() {
	r.set = NewConcurrentDenseSet(r.carrier.ItemDim())
}

// UnsafeMerge folds dep's membership into rep: if dep was contained,
// rep becomes contained too.
func (r *UnaryRelation) UnsafeMerge(dep Ob) {
	if !r.set.Contains(dep) {
		return
	}
	rep := r.carrier.Find(dep)
	r.set.Insert(rep)
	r.set.Remove(dep)
}

// UpdateValues is a no-op for unary relations: membership has no
// stored value to rewrite, only the contained obs themselves, which
// UnsafeMerge already keeps rep-only.
func (r *UnaryRelation) UpdateValues() {}

// Validate checks that every contained ob is a carrier rep.
func (r *UnaryRelation) Validate() error {
	var err error
	r.set.Iter(func(ob Ob) bool {
		if !r.carrier.Present(ob) || !r.carrier.IsRep(ob) {
			err = &ProgrammerError{Op: "UnaryRelation.Validate", Msg: "contained ob is not a rep"}
			return false
		}
		return true
	})
	return err
}
