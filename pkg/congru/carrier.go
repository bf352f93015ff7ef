package congru

import (
	"sync"
	"sync/atomic"
)

// MergeCallback is invoked exactly once per successful merge,
// synchronously from Carrier.Merge, with the dep that was just
// redirected to its rep.
type MergeCallback func(dep Ob)

// InsertCallback is invoked exactly once per successful TryInsert, with
// the freshly allocated ob.
type InsertCallback func(ob Ob)

// Carrier owns ob allocation and the disjoint-set-like identification
// of obs under merges. Multiple goroutines may simultaneously call
// Find, Merge, and TryInsert; UnsafeRemove and Validate require
// exclusive access (the caller must hold the Signature's merge lock in
// write mode).
type Carrier struct {
	itemDim Ob

	support *ConcurrentDenseSet

	// reps[ob] is 1-indexed by ob; index 0 is unused. A present ob has
	// reps[ob] != 0; reps[ob] == ob iff ob is a rep.
	reps []atomic.Uint32

	itemCount atomic.Int64
	repCount  atomic.Int64

	mergeCallback  MergeCallback
	insertCallback InsertCallback

	// insertCursor is a hint for where TryInsert should start scanning;
	// it never needs to be exact, only monotonically useful.
	insertCursor atomic.Uint32

	mu sync.RWMutex // guards callback (re)registration only
}

// NewCarrier allocates an empty Carrier for obs 1..itemDim.
func NewCarrier(itemDim Ob) *Carrier {
	return &Carrier{
		itemDim: itemDim,
		support: NewConcurrentDenseSet(itemDim),
		reps:    make([]atomic.Uint32, itemDim+1),
	}
}

// ItemDim returns the carrier's configured maximum ob.
func (c *Carrier) ItemDim() Ob { return c.itemDim }

// ItemCount returns |present|.
func (c *Carrier) ItemCount() int { return int(c.itemCount.Load()) }

// RepCount returns |{ob : reps[ob]==ob}|.
func (c *Carrier) RepCount() int { return int(c.repCount.Load()) }

// Support returns the underlying present-ob set. Callers must not
// mutate it directly.
func (c *Carrier) Support() *ConcurrentDenseSet { return c.support }

// SetMergeCallback registers the function invoked on every successful
// merge. It must be called before any merges happen (wiring time).
func (c *Carrier) SetMergeCallback(cb MergeCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeCallback = cb
}

// SetInsertCallback registers the function invoked on every successful
// insert.
func (c *Carrier) SetInsertCallback(cb InsertCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertCallback = cb
}

// TryInsert allocates a fresh present ob with reps[ob]=ob, scanning
// upward from just past the most recently allocated ob (wrapping to 1)
// with a compare-and-swap of reps[ob] from 0 to ob. Returns 0 when the
// carrier is full.
func (c *Carrier) TryInsert() Ob {
	start := Ob(c.insertCursor.Load()) + 1
	if start < 1 {
		start = 1
	}
	for pass := 0; pass < 2; pass++ {
		lo, hi := start, c.itemDim
		if pass == 1 {
			lo, hi = 1, start-1
		}
		for ob := lo; ob <= hi; ob++ {
			if c.reps[ob].CompareAndSwap(0, uint32(ob)) {
				c.support.Insert(ob)
				c.itemCount.Add(1)
				c.repCount.Add(1)
				c.insertCursor.Store(uint32(ob))
				c.mu.RLock()
				cb := c.insertCallback
				c.mu.RUnlock()
				if cb != nil {
					cb(ob)
				}
				return ob
			}
		}
	}
	return 0
}

// RawInsertAt marks ob present with reps[ob]=ob directly, bypassing
// the free-slot scan. Used by snapshot load, which must reproduce the
// exact (possibly sparse) ob numbering recorded in the manifest rather
// than whatever TryInsert would assign next. Callers must guarantee
// exclusive access and that ob was not already present.
func (c *Carrier) RawInsertAt(ob Ob) error {
	if ob == 0 || ob > c.itemDim {
		return &ProgrammerError{Op: "Carrier.RawInsertAt", Msg: "ob out of range"}
	}
	if !c.reps[ob].CompareAndSwap(0, uint32(ob)) {
		return &ProgrammerError{Op: "Carrier.RawInsertAt", Msg: "ob already present"}
	}
	c.support.Insert(ob)
	c.itemCount.Add(1)
	c.repCount.Add(1)
	if ob > Ob(c.insertCursor.Load()) {
		c.insertCursor.Store(uint32(ob))
	}
	return nil
}

// UnsafeInsert is an alias for TryInsert for callers (snapshot load,
// single-threaded test setup) that don't need the "try" framing but
// still want capacity-exhaustion signaled by a 0 return.
func (c *Carrier) UnsafeInsert() Ob { return c.TryInsert() }

// Present reports whether ob is currently present (allocated and not
// yet removed).
func (c *Carrier) Present(ob Ob) bool {
	if ob == 0 || ob > c.itemDim {
		return false
	}
	return c.reps[ob].Load() != 0
}

// Find chases reps to a fixed point, applying path halving (a
// best-effort shortcut: write back a shorter link only when it
// strictly decreases, via CAS so concurrent halving never races the
// result). Calling Find on an absent ob is a programmer error.
func (c *Carrier) Find(ob Ob) Ob {
	if !c.Present(ob) {
		panic(&ProgrammerError{Op: "Carrier.Find", Msg: "find on absent ob"})
	}
	for {
		parent := Ob(c.reps[ob].Load())
		if parent == ob {
			return ob
		}
		grandparent := Ob(c.reps[parent].Load())
		if grandparent == parent {
			return parent
		}
		// Path halving: best effort, failure is harmless.
		c.reps[ob].CompareAndSwap(uint32(parent), uint32(grandparent))
		ob = grandparent
	}
}

// Merge identifies dep with rep, requiring dep > rep. If dep and rep
// are already identified this is a no-op. Swaps its arguments when
// dep < rep after chasing reps, per the spec's ordering requirement
// (dep > rep for every merge pair).
func (c *Carrier) Merge(dep, rep Ob) {
	if !c.Present(dep) || !c.Present(rep) {
		panic(&ProgrammerError{Op: "Carrier.Merge", Msg: "merge of absent ob"})
	}
	for {
		d := Ob(c.reps[dep].Load())
		if d == dep {
			break
		}
		dep = d
		if dep == rep {
			return
		}
		if dep < rep {
			dep, rep = rep, dep
		}
	}
	if dep == rep {
		return
	}
	if dep < rep {
		dep, rep = rep, dep
	}
	for {
		if !c.reps[dep].CompareAndSwap(uint32(dep), uint32(rep)) {
			// Someone else advanced dep's rep (or it's no longer a rep);
			// rediscover where it points and retry from Find semantics.
			cur := Ob(c.reps[dep].Load())
			if cur == rep {
				return
			}
			if cur == dep {
				continue // spurious CAS failure; retry
			}
			// dep now points elsewhere: recurse via EnsureEqual semantics.
			c.EnsureEqual(cur, rep)
			return
		}
		c.repCount.Add(-1)
		c.mu.RLock()
		cb := c.mergeCallback
		c.mu.RUnlock()
		if cb != nil {
			cb(dep)
		}
		return
	}
}

// EnsureEqual merges max(x,y) into min(x,y) unless they are already
// equal, returning the surviving rep's ob as seen at call time (it may
// be superseded by a later merge).
func (c *Carrier) EnsureEqual(x, y Ob) Ob {
	if x == y {
		return x
	}
	hi, lo := x, y
	if lo > hi {
		hi, lo = lo, hi
	}
	c.Merge(hi, lo)
	return lo
}

// SetAndMerge merges source into *destin if both are nonzero and
// differ, leaving *destin unchanged if it is already zero (callers
// that want "write if empty" should use SetOrMerge instead). It
// returns true if a merge was performed.
func (c *Carrier) SetAndMerge(destin *Ob, source Ob) bool {
	if *destin == 0 || source == 0 || *destin == source {
		return false
	}
	c.EnsureEqual(*destin, source)
	return true
}

// SetOrMerge writes source into *destin if *destin is zero; otherwise
// it merges the two if they differ.
func (c *Carrier) SetOrMerge(destin *Ob, source Ob) {
	if *destin == 0 {
		*destin = source
		return
	}
	if source != 0 && *destin != source {
		c.EnsureEqual(*destin, source)
	}
}

// UnsafeRemove removes ob, which must either be a rep with no
// remaining deps, or itself a dep. Requires exclusive access.
func (c *Carrier) UnsafeRemove(ob Ob) error {
	if !c.Present(ob) {
		return &ProgrammerError{Op: "Carrier.UnsafeRemove", Msg: "remove of absent ob"}
	}
	rep := Ob(c.reps[ob].Load())
	if rep == ob {
		// ob is a rep: forbidden if any other present ob still points to it.
		for other := ob + 1; other <= c.itemDim; other++ {
			if c.reps[other].Load() != 0 && Ob(c.reps[other].Load()) == ob {
				return &ProgrammerError{Op: "Carrier.UnsafeRemove", Msg: "rep still has deps"}
			}
		}
		c.repCount.Add(-1)
	}
	c.reps[ob].Store(0)
	c.support.Remove(ob)
	c.itemCount.Add(-1)
	return nil
}

// Validate checks every quantified Carrier invariant. Requires
// exclusive access.
func (c *Carrier) Validate() error {
	items, reps := 0, 0
	var ob Ob
	for ob = 1; ob <= c.itemDim; ob++ {
		r := Ob(c.reps[ob].Load())
		if r == 0 {
			continue
		}
		if r > ob {
			return &ProgrammerError{Op: "Carrier.Validate", Msg: "reps[ob] > ob"}
		}
		items++
		if r == ob {
			reps++
		} else if c.reps[r].Load() == 0 {
			return &ProgrammerError{Op: "Carrier.Validate", Msg: "dep points to absent rep"}
		}
		if !c.support.Contains(ob) {
			return &ProgrammerError{Op: "Carrier.Validate", Msg: "present ob missing from support"}
		}
	}
	if items != c.ItemCount() {
		return &ProgrammerError{Op: "Carrier.Validate", Msg: "item_count mismatch"}
	}
	if reps != c.RepCount() {
		return &ProgrammerError{Op: "Carrier.Validate", Msg: "rep_count mismatch"}
	}
	return nil
}

// IsRep reports whether ob is currently its own representative. Panics
// if ob is absent, matching Find's contract.
func (c *Carrier) IsRep(ob Ob) bool { return c.Find(ob) == ob }
