package congru

// SparseMap is the in-memory (key, val) sequence of a function table's
// defined pairs, keys held strictly increasing — the representation
// used on disk before delta-encoding (spec §6).
type SparseMap struct {
	Keys []int64
	Vals []int64
}

// DeltaMap is the on-disk delta-encoded form of a SparseMap:
// KeyDiffMinusOne[i] = Keys[i] - Keys[i-1] - 1, taking Keys[-1] = 0
// (so KeyDiffMinusOne[0] = Keys[0] - 1), ValDiff[i] = Vals[i] - Vals[i-1]
// (ValDiff[0] = Vals[0]).
type DeltaMap struct {
	KeyDiffMinusOne []int64
	ValDiff         []int64
}

// Compress delta-encodes m. m.Keys must already be strictly increasing;
// Compress does not sort or validate that.
func Compress(m SparseMap) DeltaMap {
	n := len(m.Keys)
	out := DeltaMap{KeyDiffMinusOne: make([]int64, n), ValDiff: make([]int64, n)}
	var prevKey, prevVal int64
	for i := 0; i < n; i++ {
		out.KeyDiffMinusOne[i] = m.Keys[i] - prevKey - 1
		if i == 0 {
			out.ValDiff[i] = m.Vals[i]
		} else {
			out.ValDiff[i] = m.Vals[i] - prevVal
		}
		prevKey, prevVal = m.Keys[i], m.Vals[i]
	}
	return out
}

// Decompress restores a SparseMap from its delta-encoded form by
// prefix sum.
func Decompress(d DeltaMap) SparseMap {
	n := len(d.KeyDiffMinusOne)
	out := SparseMap{Keys: make([]int64, n), Vals: make([]int64, n)}
	var key, val int64
	for i := 0; i < n; i++ {
		key = key + d.KeyDiffMinusOne[i] + 1
		if i == 0 {
			val = d.ValDiff[i]
		} else {
			val = val + d.ValDiff[i]
		}
		out.Keys[i] = key
		out.Vals[i] = val
	}
	return out
}
