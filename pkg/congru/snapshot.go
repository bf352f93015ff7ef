package congru

import (
	"bytes"
	"compress/gzip"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// snapshotManifest is the top-level manifest of a dumped structure
// (spec §6): item_dim, item_count, and a digest of the sorted list of
// (section_name, section_digest).
type snapshotManifest struct {
	ItemDim   Ob                `json:"item_dim"`
	ItemCount int               `json:"item_count"`
	Sections  map[string]string `json:"sections"` // name -> hex sha1
	Digest    string            `json:"digest"`
}

type snapshotSection struct {
	Kind    string      `json:"kind"`
	Support []byte      `json:"support,omitempty"` // carrier section only
	Pairs   *DeltaMap   `json:"pairs,omitempty"`    // relations: keys pack (lhs,rhs) via packPair
	FnMap   *DeltaMap   `json:"fn_map,omitempty"`   // functions and unary relations: keys pack args; for functions, vals are the function value
	Value   Ob          `json:"value,omitempty"`    // nullary function
}

func packPair(x, y Ob) int64 { return int64(x)<<32 | int64(y) }
func unpackPair(p int64) (Ob, Ob) { return Ob(p >> 32), Ob(uint32(p)) }

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return fmt.Sprintf("%x", sum)
}

// Dump serializes the structure to path as a gzip-compressed JSON
// blob containing a manifest and one section per table, per spec §6.
// The structure must be quiescent (no pending merges, no concurrent
// mutation) for the duration of the call.
func (st *Structure) Dump(path string) error {
	manifest, sections, err := st.encode()
	if err != nil {
		return err
	}
	payload := struct {
		Manifest snapshotManifest            `json:"manifest"`
		Sections map[string]snapshotSection  `json:"section_bodies"`
	}{Manifest: manifest, Sections: sections}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("congru: snapshot encode: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("congru: snapshot dump: %w", err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(buf); err != nil {
		return fmt.Errorf("congru: snapshot dump: %w", err)
	}
	return gw.Close()
}

// Load replaces the structure's contents with the snapshot at path,
// verifying every section digest and the top-level digest before
// committing any state.
func (st *Structure) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("congru: snapshot load: %w", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("congru: snapshot load: %w", err)
	}
	defer gr.Close()
	buf, err := io.ReadAll(gr)
	if err != nil {
		return fmt.Errorf("congru: snapshot load: %w", err)
	}

	var payload struct {
		Manifest snapshotManifest           `json:"manifest"`
		Sections map[string]snapshotSection `json:"section_bodies"`
	}
	if err := json.Unmarshal(buf, &payload); err != nil {
		return fmt.Errorf("congru: snapshot load: %w", err)
	}

	names := make([]string, 0, len(payload.Sections))
	for name := range payload.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	var digestList bytes.Buffer
	for _, name := range names {
		body, err := json.Marshal(payload.Sections[name])
		if err != nil {
			return fmt.Errorf("congru: snapshot load: %w", err)
		}
		got := sha1Hex(body)
		want := payload.Manifest.Sections[name]
		if got != want {
			return &DigestMismatch{Section: name, Want: want, Got: got}
		}
		fmt.Fprintf(&digestList, "%s:%s\n", name, got)
	}
	if sha1Hex(digestList.Bytes()) != payload.Manifest.Digest {
		return &DigestMismatch{Section: "<manifest>", Want: payload.Manifest.Digest, Got: sha1Hex(digestList.Bytes())}
	}

	fresh := NewCarrier(payload.Manifest.ItemDim)
	negations := st.sig.negations
	newSig := NewSignature(fresh)
	newSig.negations = negations

	carrierSection, ok := payload.Sections["carrier"]
	if !ok {
		return fmt.Errorf("congru: snapshot load: missing carrier section")
	}
	for _, o := range unpackSupportBytes(carrierSection.Support) {
		if err := fresh.RawInsertAt(o); err != nil {
			return fmt.Errorf("congru: snapshot load: %w", err)
		}
	}

	for name, sec := range payload.Sections {
		if name == "carrier" {
			continue
		}
		if err := loadTableSection(newSig, name, sec); err != nil {
			return err
		}
	}

	st.sig = newSig
	return nil
}

func loadTableSection(sig *Signature, name string, sec snapshotSection) error {
	switch sec.Kind {
	case KindUnaryRelation.String():
		t := sig.DeclareUnaryRelation(name)
		m := Decompress(*sec.FnMap)
		for _, k := range m.Keys {
			t.RawInsert(Ob(k))
		}
	case KindBinaryRelation.String():
		t := sig.DeclareBinaryRelation(name)
		m := Decompress(*sec.Pairs)
		for _, k := range m.Keys {
			x, y := unpackPair(k)
			t.RawInsert(x, y)
		}
	case KindNullaryFunction.String():
		t := sig.DeclareNullaryFunction(name)
		if sec.Value != 0 {
			t.RawInsert(sec.Value)
		}
	case KindInjectiveFunction.String():
		t := sig.DeclareInjectiveFunction(name)
		m := Decompress(*sec.FnMap)
		for i, k := range m.Keys {
			t.RawInsert(Ob(k), Ob(m.Vals[i]))
		}
	case KindBinaryFunction.String():
		t := sig.DeclareBinaryFunction(name)
		m := Decompress(*sec.FnMap)
		for i, k := range m.Keys {
			x, y := unpackPair(k)
			t.RawInsert(x, y, Ob(m.Vals[i]))
		}
	case KindSymmetricFunction.String():
		t := sig.DeclareSymmetricFunction(name)
		m := Decompress(*sec.FnMap)
		for i, k := range m.Keys {
			x, y := unpackPair(k)
			t.RawInsert(x, y, Ob(m.Vals[i]))
		}
	default:
		return fmt.Errorf("congru: snapshot load: unknown section kind %q", sec.Kind)
	}
	return nil
}

func (st *Structure) encode() (snapshotManifest, map[string]snapshotSection, error) {
	c := st.Carrier()
	sections := make(map[string]snapshotSection)

	supportBytes := packBitsAsBytes(c.Support().Snapshot())
	sections["carrier"] = snapshotSection{Kind: "carrier", Support: supportBytes}

	for name, t := range st.sig.unaryRelations {
		var keys, vals []int64
		t.Iter(func(o Ob) bool { keys = append(keys, int64(o)); vals = append(vals, 0); return true })
		d := Compress(SparseMap{Keys: keys, Vals: vals})
		sections[name] = snapshotSection{Kind: KindUnaryRelation.String(), FnMap: &d}
	}
	for name, t := range st.sig.binaryRelations {
		var keys, vals []int64
		var x Ob
		for x = 1; x <= c.ItemDim(); x++ {
			t.IterRow(x, func(y Ob) bool {
				keys = append(keys, packPair(x, y))
				vals = append(vals, 0)
				return true
			})
		}
		sortPairKeys(keys, vals)
		d := Compress(SparseMap{Keys: keys, Vals: vals})
		sections[name] = snapshotSection{Kind: KindBinaryRelation.String(), Pairs: &d}
	}
	for name, t := range st.sig.nullaryFunctions {
		sections[name] = snapshotSection{Kind: KindNullaryFunction.String(), Value: t.Find()}
	}
	for name, t := range st.sig.injectiveFunctions {
		var keys, vals []int64
		t.Iter(func(x Ob) bool {
			keys = append(keys, int64(x))
			vals = append(vals, int64(t.Find(x)))
			return true
		})
		d := Compress(SparseMap{Keys: keys, Vals: vals})
		sections[name] = snapshotSection{Kind: KindInjectiveFunction.String(), FnMap: &d}
	}
	for name, t := range st.sig.binaryFunctions {
		var keys, vals []int64
		var x Ob
		for x = 1; x <= c.ItemDim(); x++ {
			t.IterRow(x, func(y Ob) bool {
				keys = append(keys, packPair(x, y))
				vals = append(vals, int64(t.Find(x, y)))
				return true
			})
		}
		sortPairKeys(keys, vals)
		d := Compress(SparseMap{Keys: keys, Vals: vals})
		sections[name] = snapshotSection{Kind: KindBinaryFunction.String(), FnMap: &d}
	}
	for name, t := range st.sig.symmetricFunctions {
		var keys, vals []int64
		var x Ob
		for x = 1; x <= c.ItemDim(); x++ {
			t.IterLine(x, func(y Ob) bool {
				if x <= y {
					keys = append(keys, packPair(x, y))
					vals = append(vals, int64(t.Find(x, y)))
				}
				return true
			})
		}
		sortPairKeys(keys, vals)
		d := Compress(SparseMap{Keys: keys, Vals: vals})
		sections[name] = snapshotSection{Kind: KindSymmetricFunction.String(), FnMap: &d}
	}

	manifest := snapshotManifest{ItemDim: c.ItemDim(), ItemCount: c.ItemCount(), Sections: make(map[string]string)}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	var digestList bytes.Buffer
	for _, name := range names {
		body, err := json.Marshal(sections[name])
		if err != nil {
			return snapshotManifest{}, nil, err
		}
		digest := sha1Hex(body)
		manifest.Sections[name] = digest
		fmt.Fprintf(&digestList, "%s:%s\n", name, digest)
	}
	manifest.Digest = sha1Hex(digestList.Bytes())
	return manifest, sections, nil
}

func sortPairKeys(keys []int64, vals []int64) {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	sortedKeys := make([]int64, len(keys))
	sortedVals := make([]int64, len(vals))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedVals[i] = vals[j]
	}
	copy(keys, sortedKeys)
	copy(vals, sortedVals)
}

// packBitsAsBytes packs a DenseSet's support into a byte slice sized
// ceil((item_dim+1)/8), bit i of the array representing ob i (bit 0 is
// always unused, since ob 0 means "none"), matching spec §6's "packed
// bit-support array sized ceil((item_dim+1)/bits_per_word) words" at
// byte granularity.
func packBitsAsBytes(s *DenseSet) []byte {
	n := (int(s.ItemDim()) + 1 + 7) / 8
	out := make([]byte, n)
	s.Iter(func(ob Ob) bool {
		i := int(ob)
		out[i/8] |= 1 << uint(i%8)
		return true
	})
	return out
}

// unpackSupportBytes is the inverse of packBitsAsBytes.
func unpackSupportBytes(raw []byte) []Ob {
	var obs []Ob
	for i, b := range raw {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) != 0 {
				obs = append(obs, Ob(i*8+bit))
			}
		}
	}
	return obs
}
