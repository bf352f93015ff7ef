package congru

import "fmt"

// Language is a named term-weight distribution: symbol name to
// probability. Used by the Router to weigh candidate routes and by the
// Sampler as its grammar (§4.7/§4.8 both draw on the same weighted
// language, so callers can share one Language between them).
type Language struct {
	Weights map[string]float64
}

// ParseLanguage builds a Language from a name-to-weight map and
// normalizes it to a probability distribution, asserting the input
// total is within tol of 1 before normalizing (guards against a
// malformed or truncated weight table silently producing nonsense
// probabilities).
func ParseLanguage(entries map[string]float64, tol float64) (*Language, error) {
	total := 0.0
	for _, w := range entries {
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("congru: language: total weight %v is non-positive", total)
	}
	if d := total - 1.0; d > tol || d < -tol {
		return nil, fmt.Errorf("congru: language: total weight %v not within %v of 1", total, tol)
	}
	out := make(map[string]float64, len(entries))
	for name, w := range entries {
		out[name] = w / total
	}
	return &Language{Weights: out}, nil
}

// Normalize rescales weights so they sum to 1, without the tolerance
// assertion ParseLanguage applies (used by Router.RefitLanguage, which
// legitimately starts from an arbitrary nonzero observed-count vector).
func Normalize(weights map[string]float64) map[string]float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := make(map[string]float64, len(weights))
	if total <= 0 {
		return out
	}
	for name, w := range weights {
		out[name] = w / total
	}
	return out
}
