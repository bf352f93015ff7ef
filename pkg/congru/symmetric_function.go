package congru

import "sync"

// SymmetricFunction is a BinaryFunction whose keys are canonicalized to
// (min(i,j), max(i,j)) on both insert and find; Lx and Rx are unioned
// into one pair of lines under the lhs<=rhs convention.
type SymmetricFunction struct {
	carrier *Carrier
	mu      sync.RWMutex
	values  map[pairKey]Ob
	lines   []*ConcurrentDenseSet // lines[i] = {j : (min(i,j),max(i,j)) defined}
}

// NewSymmetricFunction creates an empty symmetric function over carrier.
func NewSymmetricFunction(carrier *Carrier) *SymmetricFunction {
	dim := carrier.ItemDim()
	f := &SymmetricFunction{carrier: carrier, values: make(map[pairKey]Ob)}
	f.lines = make([]*ConcurrentDenseSet, dim+1)
	for i := range f.lines {
		f.lines[i] = NewConcurrentDenseSet(dim)
	}
	return f
}

func (f *SymmetricFunction) Kind() TableKind { return KindSymmetricFunction }

func canon(i, j Ob) pairKey {
	if i <= j {
		return pairKey{i, j}
	}
	return pairKey{j, i}
}

func (f *SymmetricFunction) key(i, j Ob) pairKey {
	return canon(f.carrier.Find(i), f.carrier.Find(j))
}

// Find returns the value at the unordered pair {i,j}, or 0 if undefined.
func (f *SymmetricFunction) Find(i, j Ob) Ob {
	k := f.key(i, j)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[k]
}

// Insert records {i,j}->val, merging with any existing value.
func (f *SymmetricFunction) Insert(i, j, val Ob) {
	k := f.key(i, j)
	val = f.carrier.Find(val)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertLocked(k, val)
}

func (f *SymmetricFunction) insertLocked(k pairKey, val Ob) {
	if existing, ok := f.values[k]; ok {
		if existing != val {
			f.carrier.EnsureEqual(existing, val)
		}
		return
	}
	f.values[k] = val
	f.lines[k.lhs].Insert(k.rhs)
	if k.lhs != k.rhs {
		f.lines[k.rhs].Insert(k.lhs)
	}
}

// RawInsert is the bulk-load variant for snapshot I/O; the caller must
// already canonicalize (i,j) with i<=j.
func (f *SymmetricFunction) RawInsert(i, j, val Ob) {
	k := pairKey{i, j}
	f.values[k] = val
	f.lines[i].Insert(j)
	if i != j {
		f.lines[j].Insert(i)
	}
}

// IterLine calls fn for every j paired with i (in either role).
func (f *SymmetricFunction) IterLine(i Ob, fn func(Ob) bool) { f.lines[i].Iter(fn) }

func (f *SymmetricFunction) CountItems() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.values)
}

func (f *SymmetricFunction) Clear() {
	dim := f.carrier.ItemDim()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[pairKey]Ob)
	f.lines = make([]*ConcurrentDenseSet, dim+1)
	for i := range f.lines {
		f.lines[i] = NewConcurrentDenseSet(dim)
	}
}

// UnsafeMerge relocates the (dep,dep)->val triple to (rep,rep) as a
// special case, then runs the general two-pass cascade treating dep as
// either half of the pair.
func (f *SymmetricFunction) UnsafeMerge(dep Ob) {
	rep := f.carrier.Find(dep)
	if dep == rep {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if val, ok := f.values[pairKey{dep, dep}]; ok {
		delete(f.values, pairKey{dep, dep})
		f.lines[dep].Remove(dep)
		f.insertLocked(canon(rep, rep), val)
	}

	var others []Ob
	f.lines[dep].Iter(func(j Ob) bool { others = append(others, j); return true })
	for _, j := range others {
		if j == dep {
			continue
		}
		oldKey := canon(dep, j)
		val, ok := f.values[oldKey]
		if !ok {
			continue
		}
		delete(f.values, oldKey)
		f.lines[dep].Remove(j)
		f.lines[j].Remove(dep)
		rep = f.carrier.Find(rep)
		f.insertLocked(canon(rep, j), val)
	}
	f.lines[dep] = NewConcurrentDenseSet(f.carrier.ItemDim())
}

// UpdateValues substitutes reps for every stored key and value.
func (f *SymmetricFunction) UpdateValues() {
	f.mu.Lock()
	defer f.mu.Unlock()
	old := f.values
	dim := f.carrier.ItemDim()
	f.values = make(map[pairKey]Ob, len(old))
	f.lines = make([]*ConcurrentDenseSet, dim+1)
	for i := range f.lines {
		f.lines[i] = NewConcurrentDenseSet(dim)
	}
	for k, v := range old {
		nk := canon(f.carrier.Find(k.lhs), f.carrier.Find(k.rhs))
		nv := f.carrier.Find(v)
		if existing, ok := f.values[nk]; ok && existing != nv {
			f.carrier.EnsureEqual(existing, nv)
			continue
		}
		f.values[nk] = nv
		f.lines[nk.lhs].Insert(nk.rhs)
		if nk.lhs != nk.rhs {
			f.lines[nk.rhs].Insert(nk.lhs)
		}
	}
}

// Validate checks lhs<=rhs canonical form, line/map agreement, and
// that every key and value is a carrier rep.
func (f *SymmetricFunction) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for k, v := range f.values {
		if k.lhs > k.rhs {
			return &ProgrammerError{Op: "SymmetricFunction.Validate", Msg: "key not canonical"}
		}
		if !f.carrier.IsRep(k.lhs) || !f.carrier.IsRep(k.rhs) || !f.carrier.IsRep(v) {
			return &ProgrammerError{Op: "SymmetricFunction.Validate", Msg: "key or value is not a rep"}
		}
		if !f.lines[k.lhs].Contains(k.rhs) || !f.lines[k.rhs].Contains(k.lhs) {
			return &ProgrammerError{Op: "SymmetricFunction.Validate", Msg: "map/line disagreement"}
		}
	}
	return nil
}
