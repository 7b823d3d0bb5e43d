package pngcrypt

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// ChunkInfo describes one chunk as stored in the file.
type ChunkInfo struct {
	Index      int
	Type       string
	Length     uint32
	Checksum   uint32
	ChecksumOK bool
	Critical   bool
}

// Info summarizes a container: its chunks and whether it carries a secret.
type Info struct {
	Chunks []ChunkInfo

	HasSecret    bool
	SecretLength uint32
	// KDF is read from the first saLt chunk before the secret, if any.
	KDF KDF
	// ECC is set when a reSo chunk precedes the secret.
	ECC bool
	// SecretBeforeIDAT is false when the secret sits anywhere other than
	// ahead of the first IDAT chunk.
	SecretBeforeIDAT bool
}

// GetInfo inspects the PNG at imagePath without decrypting anything.
func GetInfo(imagePath string) (*Info, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, ioErr("open", imagePath, err)
	}
	defer f.Close()
	return Inspect(bufio.NewReader(f))
}

// Inspect walks every chunk in r and records its framing. Checksums are
// recomputed and reported, never enforced.
func Inspect(r io.Reader) (*Info, error) {
	cr, _, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	info := &Info{KDF: KDFHash}
	seenIDAT := false
	for i := 0; ; i++ {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		info.Chunks = append(info.Chunks, ChunkInfo{
			Index:      i,
			Type:       c.Type,
			Length:     c.Length,
			Checksum:   c.Checksum,
			ChecksumOK: c.Valid(),
			Critical:   c.Critical(),
		})

		switch c.Type {
		case ImageDataChunkType:
			seenIDAT = true
		case SaltChunkType:
			if !info.HasSecret {
				if kdf, _, err := parseSaltChunk(c); err == nil {
					info.KDF = kdf
				}
			}
		case ECCChunkType:
			if !info.HasSecret && parseECCChunk(c) == nil {
				info.ECC = true
			}
		case SecretChunkType:
			if !info.HasSecret {
				info.HasSecret = true
				info.SecretLength = c.Length
				info.SecretBeforeIDAT = !seenIDAT
			}
		}
	}
	return info, nil
}
