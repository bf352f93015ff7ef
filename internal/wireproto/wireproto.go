// Package wireproto implements a minimal length-framed JSON
// request/response protocol standing in for the wire server named in
// congru's external-interfaces contract: one TCP connection, one
// 4-byte big-endian length prefix per frame, a oneof-shaped Request
// dispatching on Kind, and a Response carrying a result plus
// accumulated error strings.
package wireproto

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame to guard against a malformed
// length prefix exhausting memory.
const MaxFrameSize = 64 << 20

// Request is the subset of spec §6's oneof this shell implements:
// simplify and validate.
type Request struct {
	Kind   string `json:"kind"` // "simplify" | "validate"
	Expr   string `json:"expr,omitempty"`
	Strict bool   `json:"strict,omitempty"`
}

// Response carries the result of a Request plus any accumulated error
// strings, mirroring spec §6's "response carrying the result and any
// accumulated error strings".
type Response struct {
	Route  string   `json:"route,omitempty"`
	Valid  bool     `json:"valid,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// WriteFrame writes v as length-prefixed JSON to w.
func WriteFrame(w io.Writer, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wireproto: encode: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("wireproto: write length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wireproto: write body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed JSON frame from r into v.
func ReadFrame(r io.Reader, v interface{}) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return fmt.Errorf("wireproto: frame size %d exceeds max %d", n, MaxFrameSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("wireproto: read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("wireproto: decode: %w", err)
	}
	return nil
}
