// Package congru implements a concurrent congruence-closure engine: a
// finite, in-memory algebraic structure grown by forward-chaining
// inference.
//
// The structure maintains canonical representatives for equivalence
// classes of small dense integer identifiers ("obs"), keeps a family of
// typed relation and partial-function tables congruence-closed under
// merges, and exposes snapshot persistence. Concurrency is mixed: many
// readers and writers may mutate tables in parallel, while a merge of
// two obs runs in isolation with respect to every table.
//
// The core types are Carrier (ob allocation and union-find), the six
// table kinds (UnaryRelation, BinaryRelation, NullaryFunction,
// InjectiveFunction, BinaryFunction, SymmetricFunction), Signature
// (named registry of tables sharing one carrier), Structure (signature
// plus snapshot I/O and validation), and Scheduler (serializes merges
// with respect to inserts and drives the merge cascade to a fixed
// point).
package congru
