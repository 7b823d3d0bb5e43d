package pngcrypt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ValidateSignature reads the 8-byte header from r and checks it against
// the PNG signature. It must be called before any chunk is read.
func ValidateSignature(r io.Reader) ([8]byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return header, fmt.Errorf("%w: file shorter than signature", ErrInvalidFormat)
		}
		return header, ioErr("read signature", "", err)
	}
	if !bytes.Equal(header[:], Signature[:]) {
		return header, fmt.Errorf("%w: got signature %x", ErrInvalidFormat, header)
	}
	return header, nil
}

// Reader produces chunks one at a time from a PNG stream.
type Reader struct {
	r io.Reader

	// VerifyChecksums makes Next fail with ErrCorruptChunk when a chunk's
	// stored checksum does not match its type and data.
	VerifyChecksums bool

	index int
}

// NewReader validates the signature on r and returns a Reader positioned at
// the first chunk, along with the header bytes.
func NewReader(r io.Reader) (*Reader, [8]byte, error) {
	header, err := ValidateSignature(r)
	if err != nil {
		return nil, header, err
	}
	return &Reader{r: r}, header, nil
}

// Next returns the next chunk. It returns io.EOF once the stream ends at a
// chunk boundary (or inside a length field); every other failure is returned
// as is.
func (cr *Reader) Next() (*Chunk, error) {
	c, err := DecodeChunk(cr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("chunk %d: %w", cr.index, err)
	}
	if cr.VerifyChecksums && !c.Valid() {
		return nil, fmt.Errorf("chunk %d (%s): %w", cr.index, c.Type, ErrCorruptChunk)
	}
	log.Debug().
		Int("index", cr.index).
		Str("type", c.Type).
		Uint32("length", c.Length).
		Uint32("crc", c.Checksum).
		Msg("Read chunk")
	cr.index++
	return c, nil
}
