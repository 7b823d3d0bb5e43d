package pngcrypt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	// SecretChunkType marks the chunk carrying the encrypted secret.
	SecretChunkType = "crPt"
	// SaltChunkType carries the KDF id and salt when a salted KDF is used.
	SaltChunkType = "saLt"
	// ECCChunkType marks a secret chunk whose payload is Reed-Solomon framed.
	ECCChunkType = "reSo"
	// ImageDataChunkType is the first chunk the secret is inserted before.
	ImageDataChunkType = "IDAT"

	// PNG caps chunk lengths at 2^31-1.
	maxChunkLength = 1<<31 - 1
)

// Chunk is a single PNG chunk. Length and Checksum mirror the wire fields
// and are written out as stored, so decoded chunks copy through unchanged.
// Build new chunks with NewChunk; a literal Chunk{Type, Data} serializes
// with a zero length and checksum.
type Chunk struct {
	Length   uint32
	Type     string
	Data     []byte
	Checksum uint32
}

// Checksum returns the CRC-32 (IEEE) of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

func chunkChecksum(chunkType string, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write([]byte(chunkType))
	h.Write(data)
	return h.Sum32()
}

// NewChunk builds a chunk with its length and checksum computed from data.
func NewChunk(chunkType string, data []byte) (*Chunk, error) {
	if err := validateType([]byte(chunkType)); err != nil {
		return nil, err
	}
	if len(data) > maxChunkLength {
		return nil, fmt.Errorf("%w: chunk data of %d bytes exceeds PNG limit", ErrDecode, len(data))
	}
	return &Chunk{
		Length:   uint32(len(data)),
		Type:     chunkType,
		Data:     data,
		Checksum: chunkChecksum(chunkType, data),
	}, nil
}

// Valid reports whether the stored checksum matches Type and Data.
func (c *Chunk) Valid() bool {
	return c.Checksum == chunkChecksum(c.Type, c.Data)
}

// Critical reports whether the chunk type is critical (uppercase first letter).
func (c *Chunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0]&0x20 == 0
}

// Bytes serializes the chunk as length | type | data | checksum, using the
// stored Length and Checksum as-is.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, 0, 12+len(c.Data))
	buf = binary.BigEndian.AppendUint32(buf, c.Length)
	buf = append(buf, c.Type...)
	buf = append(buf, c.Data...)
	buf = binary.BigEndian.AppendUint32(buf, c.Checksum)
	return buf
}

// WriteTo writes the serialized chunk to w.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// wireSize is the number of bytes the chunk occupies on the wire.
func (c *Chunk) wireSize() int64 {
	return 12 + int64(len(c.Data))
}

// DecodeChunk reads one chunk from r. A stream that ends anywhere inside
// the chunk yields an error wrapping ErrTruncated; if it ends inside the
// length field the error also wraps io.EOF so scanners can stop cleanly.
func DecodeChunk(r io.Reader) (*Chunk, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:4]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: chunk length: %w", ErrTruncated, io.EOF)
		}
		return nil, ioErr("read chunk length", "", err)
	}
	length := binary.BigEndian.Uint32(head[:4])

	if err := readField(r, head[4:8], "chunk type"); err != nil {
		return nil, err
	}
	if err := validateType(head[4:8]); err != nil {
		return nil, err
	}
	chunkType := string(head[4:8])

	if length > maxChunkLength {
		return nil, fmt.Errorf("%w: %s chunk length %d exceeds PNG limit", ErrDecode, chunkType, length)
	}

	// Read incrementally so a bogus length on a short stream does not
	// allocate the full claimed size up front.
	var data bytes.Buffer
	n, err := io.CopyN(&data, r, int64(length))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s chunk data: got %d of %d bytes", ErrTruncated, chunkType, n, length)
		}
		return nil, ioErr("read chunk data", "", err)
	}

	var crc [4]byte
	if err := readField(r, crc[:], "chunk checksum"); err != nil {
		return nil, err
	}

	return &Chunk{
		Length:   length,
		Type:     chunkType,
		Data:     data.Bytes(),
		Checksum: binary.BigEndian.Uint32(crc[:]),
	}, nil
}

func readField(r io.Reader, buf []byte, field string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s", ErrTruncated, field)
		}
		return ioErr("read "+field, "", err)
	}
	return nil
}

func validateType(t []byte) error {
	if len(t) != 4 {
		return fmt.Errorf("%w: chunk type %q must be 4 bytes", ErrDecode, t)
	}
	for _, b := range t {
		if b >= 0x80 {
			return fmt.Errorf("%w: chunk type %q is not ASCII", ErrDecode, t)
		}
	}
	return nil
}
