package pngcrypt

import (
	"errors"
	"fmt"
)

var (
	ErrArgument            = errors.New("missing argument")
	ErrInvalidFormat       = errors.New("invalid file format: not a PNG")
	ErrTruncated           = errors.New("truncated input")
	ErrDecode              = errors.New("decode error")
	ErrMalformedCiphertext = errors.New("malformed ciphertext: shorter than the IV")
	ErrChunkNotFound       = errors.New("chunk not found")
	ErrCorruptChunk        = errors.New("corrupt chunk: checksum mismatch")
)

// IOError tags a failed file or stream operation with where it happened.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
