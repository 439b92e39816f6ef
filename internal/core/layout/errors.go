package layout

import (
	perr "paygate/internal/platform/errors"
)

// Stable reasons surfaced by decode failures
const (
	ReasonBufferUnderrun = "BufferUnderrun"
	ReasonFieldTooLong   = "FieldTooLong"
)

func underrun(offset, width, size int) error {
	err := perr.Kind(perr.ErrorCodeInvalidArgument, ReasonBufferUnderrun, "buffer underrun")
	err = perr.WithDetail(err, "offset", int64(offset))
	err = perr.WithDetail(err, "width", int64(width))
	return perr.WithDetail(err, "len", int64(size))
}

func tooLong(declared, limit int) error {
	err := perr.Kind(perr.ErrorCodeInvalidArgument, ReasonFieldTooLong, "field too long")
	err = perr.WithDetail(err, "declared", int64(declared))
	return perr.WithDetail(err, "max", int64(limit))
}

// IsUnderrun reports whether err came from reading past the end of a buffer
func IsUnderrun(err error) bool { return perr.IsReason(err, ReasonBufferUnderrun) }

// IsTooLong reports whether err came from a string longer than MaxStringLen
func IsTooLong(err error) bool { return perr.IsReason(err, ReasonFieldTooLong) }
