package bc

import "errors"

// ErrorCode classifies a failure returned from this package.
type ErrorCode uint32

const (
	// Success is the zero value; no package function returns it as an error.
	Success ErrorCode = 0

	// ErrBadDimensions means the image width or height is not positive.
	ErrBadDimensions ErrorCode = 1

	// ErrBadBuffer means a source or destination buffer does not fit the requested
	// operation (short pixel buffer, short block buffer, short stride, or a container
	// payload whose length differs from the header's).
	ErrBadBuffer ErrorCode = 2

	// ErrBadVariant means a Variant value outside BC1..BC7 was supplied.
	ErrBadVariant ErrorCode = 3

	// ErrBadContainer means container data failed magic/header/length validation.
	ErrBadContainer ErrorCode = 4

	// ErrUnsupportedVariant means the requested operation does not support this Variant
	// (for example, calling CompressRGBA16 with a non-BC6H variant).
	ErrUnsupportedVariant ErrorCode = 5
)

// ErrorString names a code the way a diagnostic log would.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return ""
	case ErrBadDimensions:
		return "BAD_DIMENSIONS"
	case ErrBadBuffer:
		return "BAD_BUFFER"
	case ErrBadVariant:
		return "BAD_VARIANT"
	case ErrBadContainer:
		return "BAD_CONTAINER"
	case ErrUnsupportedVariant:
		return "UNSUPPORTED_VARIANT"
	default:
		return ""
	}
}

// Error is a typed error carrying a stable ErrorCode alongside a human message.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "bc: " + s
	}
	return "bc: error"
}

// ErrorCodeOf returns the package error code for err, or Success for nil.
//
// For errors not produced by this package it returns ErrBadBuffer as a conservative
// fallback, mirroring how callers should treat an unrecognized failure as unsafe.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadBuffer
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
