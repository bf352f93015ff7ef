package congru

import (
	"strings"
	"testing"
)

func TestProgrammerErrorIsFatal(t *testing.T) {
	err := &ProgrammerError{Op: "Carrier.Find", Msg: "absent ob"}
	if !err.Fatal() {
		t.Error("ProgrammerError.Fatal() should always be true")
	}
	if !strings.Contains(err.Error(), "Carrier.Find") || !strings.Contains(err.Error(), "absent ob") {
		t.Errorf("Error() = %q, want it to mention Op and Msg", err.Error())
	}
}

func TestCapacityExceededError(t *testing.T) {
	err := &CapacityExceeded{ItemDim: 1024}
	if !strings.Contains(err.Error(), "1024") {
		t.Errorf("Error() = %q, want it to mention the item_dim", err.Error())
	}
}

func TestInconsistencyErrorMentionsBothRelations(t *testing.T) {
	err := &InconsistencyError{Relation: "LESS", Negation: "NLESS", X: 3, Y: 7}
	msg := err.Error()
	for _, want := range []string{"LESS", "NLESS"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to mention %q", msg, want)
		}
	}
}

func TestParseErrorMentionsToken(t *testing.T) {
	err := ParseError{Token: "BOGUS", Msg: "unknown token"}
	if !strings.Contains(err.Error(), "BOGUS") {
		t.Errorf("Error() = %q, want it to mention the offending token", err.Error())
	}
}

func TestDigestMismatchError(t *testing.T) {
	err := &DigestMismatch{Section: "LESS", Want: "aaaa", Got: "bbbb"}
	msg := err.Error()
	for _, want := range []string{"LESS", "aaaa", "bbbb"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to mention %q", msg, want)
		}
	}
}
