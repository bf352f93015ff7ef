package congru

import "strings"

// Route-sentinel constants for decisively-true and decisively-false
// partial simplification results (spec §4.9, §GLOSSARY).
const (
	SemiTrue  = "I"
	SemiFalse = "BOT"
)

// RouteFn returns the shortest syntactic route to ob (typically backed
// by a Router), or "" if ob has no known route.
type RouteFn func(ob Ob) string

// Simplifier reduces space-delimited prefix expressions against a
// Signature, using the tables as the truth oracle for ground terms.
type Simplifier struct {
	sig    *Signature
	route  RouteFn
	Errors []ParseError
}

// NewSimplifier creates a Simplifier over sig; route supplies the
// shortest-route string for a resolved ob (pass nil to fall back to a
// decimal rendering of the ob itself).
func NewSimplifier(sig *Signature, route RouteFn) *Simplifier {
	if route == nil {
		route = func(ob Ob) string { return obToken(ob) }
	}
	return &Simplifier{sig: sig, route: route}
}

func obToken(ob Ob) string {
	if ob == 0 {
		return "0"
	}
	var buf []byte
	v := uint32(ob)
	for v > 0 {
		buf = append([]byte{byte('0' + v%10)}, buf...)
		v /= 10
	}
	return string(buf)
}

// Simplify reduces expr, a space-delimited prefix expression, to its
// simplest known route. It resets s.Errors at the start of every call;
// callers that want cumulative error history across calls should
// inspect and copy s.Errors themselves between calls.
func (s *Simplifier) Simplify(expr string) string {
	s.Errors = nil
	tokens := strings.Fields(expr)
	route, _, rest := s.reduce(tokens)
	if len(rest) != 0 {
		// Unconsumed trailing tokens indicate a malformed expression; the
		// caller asked for one term, so report what we got.
		return route + " " + strings.Join(rest, " ")
	}
	return route
}

// reduce consumes the prefix expression at the head of tokens,
// returning its route, its resolved ob (0 if unresolved), and the
// remaining unconsumed tokens.
func (s *Simplifier) reduce(tokens []string) (route string, ob Ob, rest []string) {
	if len(tokens) == 0 {
		s.Errors = append(s.Errors, ParseError{Token: "", Msg: "unexpected end of expression"})
		return "", 0, nil
	}
	tok, rest := tokens[0], tokens[1:]

	switch tok {
	case "HOLE":
		return "HOLE", 0, rest
	case "VAR":
		if len(rest) == 0 {
			s.Errors = append(s.Errors, ParseError{Token: "VAR", Msg: "missing name"})
			return "VAR", 0, rest
		}
		name := rest[0]
		return "VAR " + name, 0, rest[1:]
	case "EQUAL":
		return s.reduceEqual(rest)
	}

	if t := s.sig.NullaryFunction(tok); t != nil {
		if v := t.Find(); v != 0 {
			return s.route(v), v, rest
		}
		return tok, 0, rest
	}
	if t := s.sig.InjectiveFunction(tok); t != nil {
		argRoute, arg, rest2 := s.reduce(rest)
		if arg != 0 {
			if v := t.Find(arg); v != 0 {
				return s.route(v), v, rest2
			}
		}
		return tok + " " + argRoute, 0, rest2
	}
	if t := s.sig.BinaryFunction(tok); t != nil {
		lRoute, l, rest2 := s.reduce(rest)
		rRoute, r, rest3 := s.reduce(rest2)
		if l != 0 && r != 0 {
			if v := t.Find(l, r); v != 0 {
				return s.route(v), v, rest3
			}
		}
		return tok + " " + lRoute + " " + rRoute, 0, rest3
	}
	if t := s.sig.SymmetricFunction(tok); t != nil {
		lRoute, l, rest2 := s.reduce(rest)
		rRoute, r, rest3 := s.reduce(rest2)
		if l != 0 && r != 0 {
			if v := t.Find(l, r); v != 0 {
				return s.route(v), v, rest3
			}
		}
		return tok + " " + lRoute + " " + rRoute, 0, rest3
	}
	if t := s.sig.UnaryRelation(tok); t != nil {
		argRoute, arg, rest2 := s.reduce(rest)
		if arg != 0 {
			if t.Find(arg) {
				return SemiTrue, 0, rest2
			}
			if neg := s.sig.Negate(tok); neg != "" {
				if nt := s.sig.UnaryRelation(neg); nt != nil && nt.Find(arg) {
					return SemiFalse, 0, rest2
				}
			}
		}
		return tok + " " + argRoute, 0, rest2
	}
	if t := s.sig.BinaryRelation(tok); t != nil {
		lRoute, l, rest2 := s.reduce(rest)
		rRoute, r, rest3 := s.reduce(rest2)
		if l != 0 && r != 0 {
			if t.Find(l, r) {
				return SemiTrue, 0, rest3
			}
			if neg := s.sig.Negate(tok); neg != "" {
				if nt := s.sig.BinaryRelation(neg); nt != nil && nt.Find(l, r) {
					return SemiFalse, 0, rest3
				}
			}
		}
		return tok + " " + lRoute + " " + rRoute, 0, rest3
	}

	s.Errors = append(s.Errors, ParseError{Token: tok, Msg: "unknown token"})
	return tok, 0, rest
}

// reduceEqual implements the EQUAL token: ob-identity first, then
// LESS's declared negation (NLESS) in either direction for semi_false,
// otherwise route identity for semi_true.
func (s *Simplifier) reduceEqual(tokens []string) (string, Ob, []string) {
	lRoute, l, rest := s.reduce(tokens)
	rRoute, r, rest2 := s.reduce(rest)

	if l != 0 && r != 0 {
		if l == r {
			return SemiTrue, 0, rest2
		}
		if neg := s.sig.Negate("LESS"); neg != "" {
			nless := s.sig.BinaryRelation(neg)
			if nless != nil && (nless.Find(l, r) || nless.Find(r, l)) {
				return SemiFalse, 0, rest2
			}
		}
	}
	if lRoute == rRoute {
		return SemiTrue, 0, rest2
	}
	return "EQUAL " + lRoute + " " + rRoute, 0, rest2
}
