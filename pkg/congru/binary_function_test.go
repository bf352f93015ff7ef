package congru

import "testing"

func TestBinaryFunctionInsertFind(t *testing.T) {
	c := NewCarrier(10)
	l := c.TryInsert()
	r := c.TryInsert()
	v := c.TryInsert()
	f := NewBinaryFunction(c)

	if f.Find(l, r) != 0 {
		t.Fatal("fresh binary function should be undefined")
	}
	f.Insert(l, r, v)
	if f.Find(l, r) != v {
		t.Errorf("Find(l,r) = %d, want %d", f.Find(l, r), v)
	}
	if f.CountItems() != 1 {
		t.Errorf("CountItems() = %d, want 1", f.CountItems())
	}
}

func TestBinaryFunctionValueCollisionMerges(t *testing.T) {
	c := NewCarrier(10)
	l := c.TryInsert()
	r := c.TryInsert()
	v1 := c.TryInsert()
	v2 := c.TryInsert()
	f := NewBinaryFunction(c)
	f.Insert(l, r, v1)
	f.Insert(l, r, v2)
	if c.Find(v1) != c.Find(v2) {
		t.Error("two values for the same args should merge")
	}
}

func TestBinaryFunctionIterRowColumnPreimage(t *testing.T) {
	c := NewCarrier(10)
	l := c.TryInsert()
	r := c.TryInsert()
	v := c.TryInsert()
	f := NewBinaryFunction(c)
	f.Insert(l, r, v)

	var rows []Ob
	f.IterRow(l, func(y Ob) bool { rows = append(rows, y); return true })
	if len(rows) != 1 || rows[0] != r {
		t.Errorf("IterRow(l) = %v, want [%d]", rows, r)
	}

	var cols []Ob
	f.IterColumn(r, func(x Ob) bool { cols = append(cols, x); return true })
	if len(cols) != 1 || cols[0] != l {
		t.Errorf("IterColumn(r) = %v, want [%d]", cols, l)
	}

	var pre []Ob
	f.IterPreimage(v, func(x, y Ob) bool { pre = append(pre, x, y); return true })
	if len(pre) != 2 || pre[0] != l || pre[1] != r {
		t.Errorf("IterPreimage(v) = %v, want [%d %d]", pre, l, r)
	}
}

func TestBinaryFunctionUnsafeMergeCascadesBothPositions(t *testing.T) {
	c := NewCarrier(10)
	a := c.TryInsert()
	b := c.TryInsert()
	other := c.TryInsert()
	v1 := c.TryInsert()
	v2 := c.TryInsert()
	f := NewBinaryFunction(c)
	f.Insert(a, other, v1)
	f.Insert(other, b, v2)

	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	c.Merge(hi, lo)
	f.UnsafeMerge(hi)

	if err := f.Validate(); err != nil {
		t.Errorf("Validate() after merge = %v", err)
	}
	if hi == a {
		if f.Find(lo, other) != c.Find(v1) {
			t.Error("lhs-as-dep entry should relocate to rep")
		}
	} else {
		if f.Find(other, lo) != c.Find(v2) {
			t.Error("rhs-as-dep entry should relocate to rep")
		}
	}
}

func TestBinaryFunctionClear(t *testing.T) {
	c := NewCarrier(10)
	l := c.TryInsert()
	r := c.TryInsert()
	v := c.TryInsert()
	f := NewBinaryFunction(c)
	f.Insert(l, r, v)
	f.Clear()
	if f.CountItems() != 0 || f.Find(l, r) != 0 {
		t.Error("Clear should empty the function")
	}
}
