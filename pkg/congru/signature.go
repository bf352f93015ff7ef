package congru

import "fmt"

// defaultNegations hard-codes the well-known relation negation pairs
// (spec §9 Open Questions); Signature.DeclareNegation can extend this
// per signature.
var defaultNegations = map[string]string{
	"LESS":     "NLESS",
	"NLESS":    "LESS",
	"EQUAL":    "NEQUAL",
	"NEQUAL":   "EQUAL",
	"RETURNS":  "NRETURNS",
	"NRETURNS": "RETURNS",
}

// Signature is a named registry of tables sharing one Carrier, keyed by
// (kind, name). Tables are owned by the Signature and destroyed with
// it.
type Signature struct {
	carrier *Carrier

	unaryRelations     map[string]*UnaryRelation
	binaryRelations    map[string]*BinaryRelation
	nullaryFunctions   map[string]*NullaryFunction
	injectiveFunctions map[string]*InjectiveFunction
	binaryFunctions    map[string]*BinaryFunction
	symmetricFunctions map[string]*SymmetricFunction

	negations map[string]string
}

// NewSignature creates an empty signature over carrier with no
// negation pairs declared.
func NewSignature(carrier *Carrier) *Signature {
	return &Signature{
		carrier:            carrier,
		unaryRelations:     make(map[string]*UnaryRelation),
		binaryRelations:    make(map[string]*BinaryRelation),
		nullaryFunctions:   make(map[string]*NullaryFunction),
		injectiveFunctions: make(map[string]*InjectiveFunction),
		binaryFunctions:    make(map[string]*BinaryFunction),
		symmetricFunctions: make(map[string]*SymmetricFunction),
		negations:          make(map[string]string),
	}
}

// NewDefaultSignature creates an empty signature pre-seeded with the
// hard-coded default negation pairs (LESS/NLESS, EQUAL/NEQUAL,
// RETURNS/NRETURNS).
func NewDefaultSignature(carrier *Carrier) *Signature {
	s := NewSignature(carrier)
	for k, v := range defaultNegations {
		s.negations[k] = v
	}
	return s
}

// Carrier returns the signature's shared carrier.
func (s *Signature) Carrier() *Carrier { return s.carrier }

// DeclareNegation registers name and negation as a mutually negating
// pair of binary relation names.
func (s *Signature) DeclareNegation(name, negation string) {
	s.negations[name] = negation
	s.negations[negation] = name
}

// Negate returns the declared negation of name, or "" if none is
// registered.
func (s *Signature) Negate(name string) string { return s.negations[name] }

// DeclareUnaryRelation registers a new, empty unary relation.
func (s *Signature) DeclareUnaryRelation(name string) *UnaryRelation {
	t := NewUnaryRelation(s.carrier)
	s.unaryRelations[name] = t
	return t
}

// DeclareBinaryRelation registers a new, empty binary relation.
func (s *Signature) DeclareBinaryRelation(name string) *BinaryRelation {
	t := NewBinaryRelation(s.carrier)
	s.binaryRelations[name] = t
	return t
}

// DeclareSymmetricBinaryRelation registers a new, empty binary relation
// whose Lx and Rx coincide.
func (s *Signature) DeclareSymmetricBinaryRelation(name string) *BinaryRelation {
	t := NewSymmetricBinaryRelation(s.carrier)
	s.binaryRelations[name] = t
	return t
}

// DeclareNullaryFunction registers a new, undefined nullary function.
func (s *Signature) DeclareNullaryFunction(name string) *NullaryFunction {
	t := NewNullaryFunction(s.carrier)
	s.nullaryFunctions[name] = t
	return t
}

// DeclareInjectiveFunction registers a new, empty injective function.
func (s *Signature) DeclareInjectiveFunction(name string) *InjectiveFunction {
	t := NewInjectiveFunction(s.carrier)
	s.injectiveFunctions[name] = t
	return t
}

// DeclareBinaryFunction registers a new, empty binary function.
func (s *Signature) DeclareBinaryFunction(name string) *BinaryFunction {
	t := NewBinaryFunction(s.carrier)
	s.binaryFunctions[name] = t
	return t
}

// DeclareSymmetricFunction registers a new, empty symmetric function.
func (s *Signature) DeclareSymmetricFunction(name string) *SymmetricFunction {
	t := NewSymmetricFunction(s.carrier)
	s.symmetricFunctions[name] = t
	return t
}

// UnaryRelation looks up a declared unary relation by name, or nil.
func (s *Signature) UnaryRelation(name string) *UnaryRelation { return s.unaryRelations[name] }

// BinaryRelation looks up a declared binary relation by name, or nil.
func (s *Signature) BinaryRelation(name string) *BinaryRelation { return s.binaryRelations[name] }

// NullaryFunction looks up a declared nullary function by name, or nil.
func (s *Signature) NullaryFunction(name string) *NullaryFunction { return s.nullaryFunctions[name] }

// InjectiveFunction looks up a declared injective function by name, or nil.
func (s *Signature) InjectiveFunction(name string) *InjectiveFunction {
	return s.injectiveFunctions[name]
}

// BinaryFunction looks up a declared binary function by name, or nil.
func (s *Signature) BinaryFunction(name string) *BinaryFunction { return s.binaryFunctions[name] }

// SymmetricFunction looks up a declared symmetric function by name, or nil.
func (s *Signature) SymmetricFunction(name string) *SymmetricFunction {
	return s.symmetricFunctions[name]
}

// MustUnaryRelation is UnaryRelation but panics with a ProgrammerError
// if name is not declared.
func (s *Signature) MustUnaryRelation(name string) *UnaryRelation {
	t := s.UnaryRelation(name)
	if t == nil {
		panic(&ProgrammerError{Op: "Signature.MustUnaryRelation", Msg: fmt.Sprintf("undeclared: %s", name)})
	}
	return t
}

// MustBinaryFunction is BinaryFunction but panics with a
// ProgrammerError if name is not declared.
func (s *Signature) MustBinaryFunction(name string) *BinaryFunction {
	t := s.BinaryFunction(name)
	if t == nil {
		panic(&ProgrammerError{Op: "Signature.MustBinaryFunction", Msg: fmt.Sprintf("undeclared: %s", name)})
	}
	return t
}

// AllTables returns every declared table, for kind-uniform iteration
// (merge cascade dispatch, validate, log_stats).
func (s *Signature) AllTables() map[string]Table {
	all := make(map[string]Table)
	for name, t := range s.unaryRelations {
		all[name] = t
	}
	for name, t := range s.binaryRelations {
		all[name] = t
	}
	for name, t := range s.nullaryFunctions {
		all[name] = t
	}
	for name, t := range s.injectiveFunctions {
		all[name] = t
	}
	for name, t := range s.binaryFunctions {
		all[name] = t
	}
	for name, t := range s.symmetricFunctions {
		all[name] = t
	}
	return all
}

// TablesByKind returns every declared table of the given kind, name to
// table.
func (s *Signature) TablesByKind(kind TableKind) map[string]Table {
	out := make(map[string]Table)
	for name, t := range s.AllTables() {
		if t.Kind() == kind {
			out[name] = t
		}
	}
	return out
}
