package layout

import (
	"encoding/binary"

	"github.com/mr-tron/base58"

	perr "paygate/internal/platform/errors"
)

// Encoder builds account blobs in the ledger program layout
// the first error sticks and is returned by Bytes
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an empty encoder
func NewEncoder() *Encoder { return &Encoder{buf: make([]byte, 0, 256)} }

// Raw appends b as is
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

// U8 appends one byte
func (e *Encoder) U8(v uint8) { e.buf = append(e.buf, v) }

// Bool appends 1 or 0
func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
		return
	}
	e.U8(0)
}

// U16 appends a little endian uint16
func (e *Encoder) U16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

// U32 appends a little endian uint32
func (e *Encoder) U32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

// U64 appends a little endian uint64
func (e *Encoder) U64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// I64 appends a little endian int64
func (e *Encoder) I64(v int64) { e.U64(uint64(v)) }

// Pubkey appends the 32 raw bytes of a base58 address
func (e *Encoder) Pubkey(addr string) {
	b, err := base58.Decode(addr)
	if err == nil && len(b) != PubkeyLen {
		err = perr.InvalidArgf("pubkey must be %d bytes, got %d", PubkeyLen, len(b))
	}
	if err != nil {
		e.fail(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid pubkey"))
		e.buf = append(e.buf, make([]byte, PubkeyLen)...)
		return
	}
	e.buf = append(e.buf, b...)
}

// String appends a u32 length prefix and the raw bytes
func (e *Encoder) String(s string) {
	if len(s) > MaxStringLen {
		e.fail(tooLong(len(s), MaxStringLen))
	}
	e.U32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Bytes returns the encoded buffer or the first error
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}
