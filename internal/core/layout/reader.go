package layout

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
)

const (
	// DiscriminatorLen is the fixed header every account blob starts with
	DiscriminatorLen = 8
	// PubkeyLen is the width of an account address
	PubkeyLen = 32
	// MaxStringLen caps the declared length of any length-prefixed string
	MaxStringLen = 1000
)

// Reader walks a little endian buffer
// every read checks offset+width against len(buf) before touching memory
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf; the slice is never written to
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Offset is the number of bytes consumed so far
func (r *Reader) Offset() int { return r.off }

// Remaining is the number of bytes left
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) || r.off+n < r.off {
		return nil, underrun(r.off, n, len(r.buf))
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Skip advances n bytes
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// U8 reads one byte
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads one byte; any non zero value is true
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// U16 reads a little endian uint16
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little endian uint32
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little endian uint64
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I64 reads a little endian two's complement int64
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// Pubkey reads a 32 byte address and renders it as base58
func (r *Reader) Pubkey() (string, error) {
	b, err := r.take(PubkeyLen)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// String reads a u32 length prefix followed by that many bytes
// the declared length is checked against MaxStringLen before the payload is read
// the returned text has control characters stripped
func (r *Reader) String() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", tooLong(int(n), MaxStringLen)
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return Sanitize(string(b)), nil
}
