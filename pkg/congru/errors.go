package congru

import "fmt"

// Ob is a dense, one-based integer identifier of an element in the
// algebraic structure. The value 0 means "none".
type Ob uint32

// MaxItemDim is the largest item_dim a Carrier can be built with. The
// module fixes a 32-bit Ob ("macro build" in the original terminology)
// at compile time; there is no 16-bit variant.
const MaxItemDim = Ob(1<<32 - 2)

// ProgrammerError reports a violated internal invariant: bad arity, an
// unsupported ob, an out-of-order merge, or similar programmer error.
// Carrier.Find and Carrier.Merge panic with one on an absent ob, and the
// Validate methods return one, instead of silently corrupting state.
type ProgrammerError struct {
	Op  string
	Msg string
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("congru: programmer error in %s: %s", e.Op, e.Msg)
}

// Fatal reports whether a ProgrammerError should abort the process when
// encountered outside of a test binary. It always returns true: these
// errors indicate corrupted invariants, not recoverable conditions.
func (e *ProgrammerError) Fatal() bool { return true }

// CapacityExceeded is returned when a Carrier insert is attempted while
// item_count == item_dim. Callers may Structure.Resize and retry.
type CapacityExceeded struct {
	ItemDim Ob
}

func (e *CapacityExceeded) Error() string {
	return fmt.Sprintf("congru: capacity exceeded (item_dim=%d)", e.ItemDim)
}

// InconsistencyError reports that a merge forced an element of a
// declared-disjoint relation pair (e.g. LESS and NLESS) to agree.
type InconsistencyError struct {
	Relation string
	Negation string
	X, Y     Ob
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("congru: inconsistency detected: %s(%d,%d) and its negation %s both hold",
		e.Relation, e.X, e.Y, e.Negation)
}

// ParseError is recorded in a per-call error log when the Simplifier
// encounters an unknown token or premature end of stream. It never
// aborts; the offending token is passed through as opaque.
type ParseError struct {
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("congru: parse error at %q: %s", e.Token, e.Msg)
}

// DigestMismatch reports that a snapshot section's recomputed SHA-1
// digest disagrees with the digest recorded in the manifest.
type DigestMismatch struct {
	Section string
	Want    string
	Got     string
}

func (e *DigestMismatch) Error() string {
	return fmt.Sprintf("congru: digest mismatch in section %q: want %s got %s", e.Section, e.Want, e.Got)
}
