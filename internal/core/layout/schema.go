// Package layout decodes fixed layout account blobs written by the ledger program
//
// Every blob starts with an 8 byte discriminator followed by the fields a Schema
// declares, in order. Decoding never reads past the buffer and never panics on
// hostile input; a failure isolates one record and callers move on to the next.
package layout

import (
	"crypto/sha256"

	perr "paygate/internal/platform/errors"
)

// Field is one named slot in a schema bound to a destination
type Field struct {
	Name  string
	read  func(*Reader) error
	write func(*Encoder)
}

// Schema is the ordered field list of one account type
type Schema struct {
	Name   string
	Fields []Field
}

// Record is implemented by account types; Schema binds fields to the receiver
type Record interface {
	Schema() Schema
}

// Discriminator derives the 8 byte header the ledger program writes for an account name
func Discriminator(name string) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// Decode fills rec from buf
// the discriminator is skipped without being interpreted
func Decode(buf []byte, rec Record) error {
	r := NewReader(buf)
	if err := r.Skip(DiscriminatorLen); err != nil {
		return perr.WithField(err, "discriminator")
	}
	s := rec.Schema()
	for _, f := range s.Fields {
		if err := f.read(r); err != nil {
			return perr.WithOp(perr.WithField(err, f.Name), "decode "+s.Name)
		}
	}
	return nil
}

// Encode writes rec with its schema discriminator
func Encode(rec Record) ([]byte, error) {
	s := rec.Schema()
	e := NewEncoder()
	d := Discriminator(s.Name)
	e.Raw(d[:])
	for _, f := range s.Fields {
		f.write(e)
	}
	return e.Bytes()
}

// field constructors bind a schema slot to a Go destination

// U8Field binds a single byte
func U8Field(name string, dst *uint8) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.U8(); return },
		write: func(e *Encoder) { e.U8(*dst) },
	}
}

// BoolField binds a one byte flag
func BoolField(name string, dst *bool) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.Bool(); return },
		write: func(e *Encoder) { e.Bool(*dst) },
	}
}

// U16Field binds a little endian uint16
func U16Field(name string, dst *uint16) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.U16(); return },
		write: func(e *Encoder) { e.U16(*dst) },
	}
}

// U64Field binds a little endian uint64
func U64Field(name string, dst *uint64) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.U64(); return },
		write: func(e *Encoder) { e.U64(*dst) },
	}
}

// I64Field binds a little endian int64
func I64Field(name string, dst *int64) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.I64(); return },
		write: func(e *Encoder) { e.I64(*dst) },
	}
}

// PubkeyField binds a 32 byte address rendered as base58
func PubkeyField(name string, dst *string) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.Pubkey(); return },
		write: func(e *Encoder) { e.Pubkey(*dst) },
	}
}

// StringField binds a u32 length prefixed string
func StringField(name string, dst *string) Field {
	return Field{Name: name,
		read:  func(r *Reader) (err error) { *dst, err = r.String(); return },
		write: func(e *Encoder) { e.String(*dst) },
	}
}

// U64ArrayField binds a fixed length array of uint64
func U64ArrayField(name string, dst []uint64) Field {
	return Field{Name: name,
		read: func(r *Reader) error {
			for i := range dst {
				v, err := r.U64()
				if err != nil {
					return err
				}
				dst[i] = v
			}
			return nil
		},
		write: func(e *Encoder) {
			for _, v := range dst {
				e.U64(v)
			}
		},
	}
}
