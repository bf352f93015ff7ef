package congru

import "math/rand"

// SymbolWeight names the per-symbol coefficients the Sampler uses to
// weigh how often a function's arguments contribute to the
// probability mass of its result, keyed by declared table name.
type SymbolWeight struct {
	Name   string
	Weight float64
}

// Sampler maintains prob[ob], an estimate of the probability that a
// random term drawn from the weighted language evaluates to ob, and
// supports growing the carrier by sampling plausible new terms.
type Sampler struct {
	sig *Signature
	rng *rand.Rand

	// weights maps a declared function/relation name to the probability
	// mass assigned to using that symbol when descending the grammar.
	weights map[string]float64

	prob map[Ob]float64
}

// NewSampler creates a Sampler over sig using rng for randomness and
// weights as the per-symbol grammar distribution (need not sum to 1;
// TryInsertRandom normalizes over only the symbols currently
// applicable).
func NewSampler(sig *Signature, rng *rand.Rand, weights map[string]float64) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Sampler{sig: sig, rng: rng, weights: weights, prob: make(map[Ob]float64)}
}

// Prob returns the current probability estimate for ob (0 if unset).
func (s *Sampler) Prob(ob Ob) float64 { return s.prob[ob] }

// UpdateOne recomputes prob[ob] by aggregating contributions from
// every table that can produce ob as a value: nullary functions
// contribute their symbol weight directly; injective, binary, and
// symmetric functions contribute weight(symbol) * product of argument
// probabilities, summed over every recorded argument tuple that maps
// to ob.
func (s *Sampler) UpdateOne(ob Ob) {
	total := 0.0
	for name, t := range s.sig.nullaryFunctions {
		if t.Find() == ob {
			total += s.weights[name]
		}
	}
	for name, t := range s.sig.injectiveFunctions {
		t.Iter(func(arg Ob) bool {
			if t.Find(arg) == ob {
				total += s.weights[name] * s.prob[arg]
			}
			return true
		})
	}
	for name, t := range s.sig.binaryFunctions {
		var x Ob
		for x = 1; x <= s.sig.Carrier().ItemDim(); x++ {
			t.IterRow(x, func(y Ob) bool {
				if t.Find(x, y) == ob {
					total += s.weights[name] * s.prob[x] * s.prob[y]
				}
				return true
			})
		}
	}
	for name, t := range s.sig.symmetricFunctions {
		var x Ob
		for x = 1; x <= s.sig.Carrier().ItemDim(); x++ {
			t.IterLine(x, func(y Ob) bool {
				if x <= y && t.Find(x, y) == ob {
					total += s.weights[name] * s.prob[x] * s.prob[y]
				}
				return true
			})
		}
	}
	s.prob[ob] = total
}

// TryInsertRandom descends the weighted grammar: with probability
// proportional to each symbol's weight, either returns an existing
// rep ob for a nullary function's value, or recursively samples
// arguments and reuses fun.Find(args) when already defined, allocating
// a fresh ob and inserting otherwise. Returns (ob, insertedNew).
func (s *Sampler) TryInsertRandom() (Ob, bool) {
	names := make([]string, 0, len(s.weights))
	cum := make([]float64, 0, len(s.weights))
	sum := 0.0
	for name, w := range s.weights {
		if w <= 0 {
			continue
		}
		sum += w
		names = append(names, name)
		cum = append(cum, sum)
	}
	if sum == 0 {
		ob := s.sig.Carrier().TryInsert()
		return ob, ob != 0
	}
	pick := s.rng.Float64() * sum
	idx := len(names) - 1
	for i, c := range cum {
		if pick <= c {
			idx = i
			break
		}
	}
	name := names[idx]

	if t := s.sig.NullaryFunction(name); t != nil {
		if v := t.Find(); v != 0 {
			return v, false
		}
		ob := s.sig.Carrier().TryInsert()
		if ob == 0 {
			return 0, false
		}
		t.Insert(ob)
		return ob, true
	}
	if t := s.sig.InjectiveFunction(name); t != nil {
		arg := s.randomOb()
		if arg == 0 {
			return 0, false
		}
		if v := t.Find(arg); v != 0 {
			return v, false
		}
		ob := s.sig.Carrier().TryInsert()
		if ob == 0 {
			return 0, false
		}
		t.Insert(arg, ob)
		return ob, true
	}
	if t := s.sig.BinaryFunction(name); t != nil {
		lhs, rhs := s.randomOb(), s.randomOb()
		if lhs == 0 || rhs == 0 {
			return 0, false
		}
		if v := t.Find(lhs, rhs); v != 0 {
			return v, false
		}
		ob := s.sig.Carrier().TryInsert()
		if ob == 0 {
			return 0, false
		}
		t.Insert(lhs, rhs, ob)
		return ob, true
	}
	if t := s.sig.SymmetricFunction(name); t != nil {
		lhs, rhs := s.randomOb(), s.randomOb()
		if lhs == 0 || rhs == 0 {
			return 0, false
		}
		if v := t.Find(lhs, rhs); v != 0 {
			return v, false
		}
		ob := s.sig.Carrier().TryInsert()
		if ob == 0 {
			return 0, false
		}
		t.Insert(lhs, rhs, ob)
		return ob, true
	}
	ob := s.sig.Carrier().TryInsert()
	return ob, ob != 0
}

// randomOb picks a uniformly random present ob, or 0 if the carrier is
// empty.
func (s *Sampler) randomOb() Ob {
	c := s.sig.Carrier()
	if c.ItemCount() == 0 {
		return 0
	}
	skip := s.rng.Intn(c.ItemCount())
	var found Ob
	i := 0
	c.Support().Iter(func(ob Ob) bool {
		if i == skip {
			found = ob
			return false
		}
		i++
		return true
	})
	return found
}
