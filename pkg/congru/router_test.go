package congru

import "testing"

func TestRouterConvergeAssignsNullaryProbability(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(20))
	i := sig.DeclareNullaryFunction("I")
	v := sig.Carrier().TryInsert()
	i.Insert(v)

	lang := &Language{Weights: map[string]float64{"I": 1.0}}
	r := NewRouter(sig, lang)
	r.Converge(1e-9, 10)

	if r.Prob(v) != 1.0 {
		t.Errorf("Prob(v) = %f, want 1.0", r.Prob(v))
	}
}

func TestRouterConvergePropagatesThroughInjectiveFunction(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(20))
	i := sig.DeclareNullaryFunction("I")
	succ := sig.DeclareInjectiveFunction("SUCC")
	a := sig.Carrier().TryInsert()
	b := sig.Carrier().TryInsert()
	i.Insert(a)
	succ.Insert(a, b)

	lang := &Language{Weights: map[string]float64{"I": 0.5, "SUCC": 0.5}}
	r := NewRouter(sig, lang)
	r.Converge(1e-9, 10)

	if r.Prob(b) != 0.25 {
		t.Errorf("Prob(b) = %f, want 0.25 (0.5 * 0.5)", r.Prob(b))
	}
}

func TestRouterRefitLanguageNormalizesCounts(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(20))
	i := sig.DeclareNullaryFunction("I")
	sig.DeclareNullaryFunction("K")
	a := sig.Carrier().TryInsert()
	i.Insert(a)

	lang := &Language{Weights: map[string]float64{"I": 1.0, "K": 0.0}}
	r := NewRouter(sig, lang)
	r.Converge(1e-9, 3)

	refit := r.RefitLanguage()
	var sum float64
	for _, w := range refit.Weights {
		sum += w
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Errorf("refit weights sum to %f, want 1", sum)
	}
}

func TestRouterConvergeStopsWithinMaxIters(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(20))
	lang := &Language{Weights: map[string]float64{}}
	r := NewRouter(sig, lang)
	iters := r.Converge(1e-9, 5)
	if iters > 5 {
		t.Errorf("Converge ran %d iterations, want at most 5", iters)
	}
}
