package congru

import "math"

// Router computes, for each present ob, the probability that the
// shortest syntactic expression over a weighted Language evaluates to
// it — a Dijkstra-like fixed point over the structure's nullary,
// injective, binary, and symmetric function tables.
type Router struct {
	sig  *Signature
	lang *Language

	prob map[Ob]float64

	// counts accumulates per-symbol observed usage for RefitLanguage.
	counts map[string]float64
}

// NewRouter creates a Router over sig using lang's symbol weights.
func NewRouter(sig *Signature, lang *Language) *Router {
	return &Router{sig: sig, lang: lang, prob: make(map[Ob]float64), counts: make(map[string]float64)}
}

// Prob returns the router's current probability estimate for ob.
func (r *Router) Prob(ob Ob) float64 { return r.prob[ob] }

// Converge iterates value-order updates over every segment (nullary,
// unary/injective, binary/symmetric) until the relative change in the
// total probability mass falls below reltol, or maxIters is reached.
// Returns the number of iterations run.
func (r *Router) Converge(reltol float64, maxIters int) int {
	iter := 0
	for ; iter < maxIters; iter++ {
		prev := r.totalMass()
		r.sweep()
		cur := r.totalMass()
		if prev > 0 {
			rel := math.Abs(cur-prev) / prev
			if rel < reltol {
				return iter + 1
			}
		} else if cur == 0 {
			return iter + 1
		}
	}
	return iter
}

func (r *Router) totalMass() float64 {
	total := 0.0
	for _, p := range r.prob {
		total += p
	}
	return total
}

// sweep runs one value-ordered pass updating r.prob for every ob
// reachable via a nullary, injective, binary, or symmetric function
// segment, tallying per-symbol usage in r.counts as it goes.
func (r *Router) sweep() {
	dim := r.sig.Carrier().ItemDim()

	for name, t := range r.sig.nullaryFunctions {
		if v := t.Find(); v != 0 {
			w := r.lang.Weights[name]
			r.bumpIfBetter(v, w)
			r.counts[name] += w
		}
	}
	for name, t := range r.sig.injectiveFunctions {
		w := r.lang.Weights[name]
		t.Iter(func(arg Ob) bool {
			v := t.Find(arg)
			cand := w * r.prob[arg]
			r.bumpIfBetter(v, cand)
			r.counts[name] += cand
			return true
		})
	}
	for name, t := range r.sig.binaryFunctions {
		w := r.lang.Weights[name]
		var x Ob
		for x = 1; x <= dim; x++ {
			t.IterRow(x, func(y Ob) bool {
				v := t.Find(x, y)
				cand := w * r.prob[x] * r.prob[y]
				r.bumpIfBetter(v, cand)
				r.counts[name] += cand
				return true
			})
		}
	}
	for name, t := range r.sig.symmetricFunctions {
		w := r.lang.Weights[name]
		var x Ob
		for x = 1; x <= dim; x++ {
			t.IterLine(x, func(y Ob) bool {
				if x <= y {
					v := t.Find(x, y)
					cand := w * r.prob[x] * r.prob[y]
					r.bumpIfBetter(v, cand)
					r.counts[name] += cand
				}
				return true
			})
		}
	}
}

func (r *Router) bumpIfBetter(ob Ob, candidate float64) {
	if ob == 0 {
		return
	}
	if candidate > r.prob[ob] {
		r.prob[ob] = candidate
	}
}

// RefitLanguage replaces the router's language with weights derived
// from observed usage counts accumulated across Converge's sweeps,
// normalized so the weights sum to 1.
func (r *Router) RefitLanguage() *Language {
	r.lang = &Language{Weights: Normalize(r.counts)}
	return r.lang
}
