package congru

import "testing"

func TestSignatureDeclareAndLookup(t *testing.T) {
	sig := NewSignature(NewCarrier(10))
	if sig.UnaryRelation("P") != nil {
		t.Fatal("undeclared relation should look up as nil")
	}
	sig.DeclareUnaryRelation("P")
	if sig.UnaryRelation("P") == nil {
		t.Error("declared relation should be found by name")
	}
	sig.DeclareBinaryFunction("APP")
	if sig.BinaryFunction("APP") == nil {
		t.Error("declared binary function should be found by name")
	}
}

func TestSignatureMustPanicsOnUndeclared(t *testing.T) {
	sig := NewSignature(NewCarrier(10))
	defer func() {
		if recover() == nil {
			t.Error("MustUnaryRelation should panic on an undeclared name")
		}
	}()
	sig.MustUnaryRelation("NOPE")
}

func TestSignatureMustReturnsDeclared(t *testing.T) {
	sig := NewSignature(NewCarrier(10))
	sig.DeclareBinaryFunction("APP")
	if sig.MustBinaryFunction("APP") == nil {
		t.Error("MustBinaryFunction should return the declared table")
	}
}

func TestSignatureNegationPairs(t *testing.T) {
	sig := NewDefaultSignature(NewCarrier(10))
	if sig.Negate("LESS") != "NLESS" {
		t.Errorf("Negate(LESS) = %q, want NLESS", sig.Negate("LESS"))
	}
	if sig.Negate("NLESS") != "LESS" {
		t.Errorf("Negate(NLESS) = %q, want LESS", sig.Negate("NLESS"))
	}
	if sig.Negate("UNKNOWN") != "" {
		t.Error("Negate of an undeclared name should be empty")
	}

	sig.DeclareNegation("FOO", "BAR")
	if sig.Negate("FOO") != "BAR" || sig.Negate("BAR") != "FOO" {
		t.Error("DeclareNegation should register a mutual pair")
	}
}

func TestSignatureAllTablesAndTablesByKind(t *testing.T) {
	sig := NewSignature(NewCarrier(10))
	sig.DeclareUnaryRelation("P")
	sig.DeclareBinaryRelation("Q")
	sig.DeclareNullaryFunction("I")

	all := sig.AllTables()
	if len(all) != 3 {
		t.Fatalf("AllTables() has %d entries, want 3", len(all))
	}

	unary := sig.TablesByKind(KindUnaryRelation)
	if len(unary) != 1 || unary["P"] == nil {
		t.Errorf("TablesByKind(unary) = %v, want just P", unary)
	}
}
