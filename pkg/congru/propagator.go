package congru

import "strings"

// Verdict is the propagator's per-expression conclusion.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictValid
	VerdictInvalid
)

// Interval is an approximation interval in the lattice of
// approximations: four DenseSets bounding an unknown ob from below and
// above, plus their negated counterparts (spec GLOSSARY).
type Interval struct {
	Below, Above, NBelow, NAbove *DenseSet
}

// operandKey identifies one operand position of one expression for
// LazyMap memoization, keyed by the expression text itself (stable
// across propagation rounds for a fixed term DAG).
type operandKey struct {
	expr string
}

// Propagator computes Intervals over a term DAG by applying the same
// token grammar as Simplifier in one recursive pass per expression,
// using a LazyMap keyed by expression text to memoize each computed
// Interval. It does not iterate the computation to a fixed point.
type Propagator struct {
	sig   *Signature
	dim   Ob
	cache *LazyMap[operandKey, Interval]

	// Order holds a caller-supplied ordering hook. No Propagator method
	// reads it.
	Order func([]string) []string
}

// NewPropagator creates a Propagator over sig for obs 1..dim.
func NewPropagator(sig *Signature, dim Ob) *Propagator {
	p := &Propagator{sig: sig, dim: dim}
	p.cache = NewLazyMap(p.computeInterval, func(k operandKey) string { return k.expr }, NewWorkerPool(4))
	return p
}

func (p *Propagator) fullInterval() Interval {
	return Interval{
		Below:  NewDenseSet(p.dim),
		Above:  NewDenseSet(p.dim),
		NBelow: NewDenseSet(p.dim),
		NAbove: NewDenseSet(p.dim),
	}
}

// Approximate returns the memoized Interval for expr, computing it on
// first access.
func (p *Propagator) Approximate(expr string) Interval {
	return p.cache.Get(operandKey{expr: expr})
}

// Invalidate drops the memoized Interval for expr, forcing
// recomputation (called after a merge changes the underlying tables).
func (p *Propagator) Invalidate(expr string) {
	p.cache.Invalidate(operandKey{expr: expr})
}

func (p *Propagator) computeInterval(key operandKey) Interval {
	tokens := strings.Fields(key.expr)
	iv, _ := p.approximateTokens(tokens)
	return iv
}

// approximateTokens computes the Interval for the prefix expression at
// the head of tokens and returns the remaining tokens, mirroring
// Simplifier.reduce's recursive-descent shape but producing a bound
// instead of a single ob.
func (p *Propagator) approximateTokens(tokens []string) (Interval, []string) {
	full := p.fullInterval()
	if len(tokens) == 0 {
		return full, nil
	}
	tok, rest := tokens[0], tokens[1:]

	if tok == "HOLE" {
		return full, rest
	}
	if tok == "VAR" {
		if len(rest) == 0 {
			return full, rest
		}
		return full, rest[1:]
	}

	if t := p.sig.NullaryFunction(tok); t != nil {
		iv := full
		if v := t.Find(); v != 0 {
			iv.Below.Insert(v)
			iv.Above.Insert(v)
		}
		return iv, rest
	}
	if t := p.sig.InjectiveFunction(tok); t != nil {
		argIv, rest2 := p.approximateTokens(rest)
		iv := full
		argIv.Below.Iter(func(arg Ob) bool {
			if v := t.Find(arg); v != 0 {
				iv.Below.Insert(v)
				iv.Above.Insert(v)
			}
			return true
		})
		return iv, rest2
	}
	if t := p.sig.BinaryFunction(tok); t != nil {
		lIv, rest2 := p.approximateTokens(rest)
		rIv, rest3 := p.approximateTokens(rest2)
		iv := full
		lIv.Below.Iter(func(l Ob) bool {
			rIv.Below.Iter(func(r Ob) bool {
				if v := t.Find(l, r); v != 0 {
					iv.Below.Insert(v)
					iv.Above.Insert(v)
				}
				return true
			})
			return true
		})
		return iv, rest3
	}
	if t := p.sig.SymmetricFunction(tok); t != nil {
		lIv, rest2 := p.approximateTokens(rest)
		rIv, rest3 := p.approximateTokens(rest2)
		iv := full
		lIv.Below.Iter(func(l Ob) bool {
			rIv.Below.Iter(func(r Ob) bool {
				if v := t.Find(l, r); v != 0 {
					iv.Below.Insert(v)
					iv.Above.Insert(v)
				}
				return true
			})
			return true
		})
		return iv, rest3
	}
	if t := p.sig.UnaryRelation(tok); t != nil {
		argIv, rest2 := p.approximateTokens(rest)
		iv := full
		argIv.Below.Iter(func(arg Ob) bool {
			if t.Find(arg) {
				iv.Below.Insert(arg)
			} else {
				iv.NBelow.Insert(arg)
			}
			return true
		})
		return iv, rest2
	}
	if t := p.sig.BinaryRelation(tok); t != nil {
		lIv, rest2 := p.approximateTokens(rest)
		rIv, rest3 := p.approximateTokens(rest2)
		iv := full
		lIv.Below.Iter(func(l Ob) bool {
			rIv.Below.Iter(func(r Ob) bool {
				if t.Find(l, r) {
					iv.Below.Insert(l)
				} else {
					iv.NBelow.Insert(l)
				}
				return true
			})
			return true
		})
		return iv, rest3
	}

	_, rest2 := p.approximateTokens(rest)
	return full, rest2
}

// Decide reports the propagator's verdict for a relation expression
// given its already-computed Interval: valid if Below is nonempty and
// disjoint from NBelow is guaranteed by construction, invalid if
// NBelow witnesses a refutation with no supporting Below evidence,
// unknown otherwise.
func Decide(iv Interval) Verdict {
	if iv.Below.CountItems() > 0 {
		return VerdictValid
	}
	if iv.NBelow.CountItems() > 0 {
		return VerdictInvalid
	}
	return VerdictUnknown
}
