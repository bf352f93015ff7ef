package congru

// TableKind identifies which of the six table shapes a Table
// implements.
type TableKind int

const (
	KindUnaryRelation TableKind = iota
	KindBinaryRelation
	KindNullaryFunction
	KindInjectiveFunction
	KindBinaryFunction
	KindSymmetricFunction
)

func (k TableKind) String() string {
	switch k {
	case KindUnaryRelation:
		return "unary_relation"
	case KindBinaryRelation:
		return "binary_relation"
	case KindNullaryFunction:
		return "nullary_function"
	case KindInjectiveFunction:
		return "injective_function"
	case KindBinaryFunction:
		return "binary_function"
	case KindSymmetricFunction:
		return "symmetric_function"
	default:
		return "unknown_kind"
	}
}

// Table is the common interface every relation/function table
// satisfies, used by the Signature for kind-uniform iteration and by
// the merge scheduler to drive the cascade without knowing concrete
// table types.
type Table interface {
	// Kind identifies the table's shape.
	Kind() TableKind

	// Validate checks every table invariant. Requires exclusive access.
	Validate() error

	// UnsafeMerge rewrites the table so no reference to dep remains,
	// cascading further merges into the carrier via SetAndMerge/
	// SetOrMerge/EnsureEqual as needed. Called by the merge scheduler
	// while holding the signature's merge lock in write mode.
	UnsafeMerge(dep Ob)

	// UpdateValues replaces every stored value by its current
	// representative. Called once per merge-phase batch, after every
	// queued UnsafeMerge has run.
	UpdateValues()

	// Clear empties the table.
	Clear()

	// CountItems reports the number of stored tuples/pairs (relations
	// count tuples, functions count defined pairs; nullary functions
	// report 0 or 1).
	CountItems() int
}
