package congru

import "sync/atomic"

// NullaryFunction holds a single ob value (a distinguished constant of
// the theory, such as the combinator I).
type NullaryFunction struct {
	carrier *Carrier
	value   atomic.Uint32
}

// NewNullaryFunction creates an undefined nullary function over carrier.
func NewNullaryFunction(carrier *Carrier) *NullaryFunction {
	return &NullaryFunction{carrier: carrier}
}

func (f *NullaryFunction) Kind() TableKind { return KindNullaryFunction }

// Find returns the value, or 0 if undefined.
func (f *NullaryFunction) Find() Ob { return Ob(f.value.Load()) }

// Insert records val as the function's value, merging with any
// existing value via the carrier.
func (f *NullaryFunction) Insert(val Ob) {
	for {
		cur := Ob(f.value.Load())
		if cur == 0 {
			if f.value.CompareAndSwap(0, uint32(val)) {
				return
			}
			continue
		}
		if cur != val {
			f.carrier.EnsureEqual(cur, val)
		}
		return
	}
}

// RawInsert is the bulk-load variant for snapshot I/O.
func (f *NullaryFunction) RawInsert(val Ob) { f.value.Store(uint32(val)) }

func (f *NullaryFunction) CountItems() int {
	if f.Find() == 0 {
		return 0
	}
	return 1
}

func (f *NullaryFunction) Clear() { f.value.Store(0) }

// UnsafeMerge rewrites a stored dep value to its rep.
func (f *NullaryFunction) UnsafeMerge(dep Ob) {
	if Ob(f.value.Load()) == dep {
		f.value.Store(uint32(f.carrier.Find(dep)))
	}
}

// UpdateValues rewrites the stored value to its current rep.
func (f *NullaryFunction) UpdateValues() {
	v := Ob(f.value.Load())
	if v != 0 {
		f.value.Store(uint32(f.carrier.Find(v)))
	}
}

// Validate checks that a defined value is a carrier rep.
func (f *NullaryFunction) Validate() error {
	v := f.Find()
	if v == 0 {
		return nil
	}
	if !f.carrier.Present(v) || !f.carrier.IsRep(v) {
		return &ProgrammerError{Op: "NullaryFunction.Validate", Msg: "value is not a rep"}
	}
	return nil
}
