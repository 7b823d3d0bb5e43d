package pngcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// CipherSuite names the block cipher and stream mode used for the secret.
type CipherSuite struct {
	Algorithm string
	Mode      string
	KeySize   int
	IVSize    int
}

// DefaultCipher is AES-256 in CFB mode with a 16-byte IV.
var DefaultCipher = CipherSuite{
	Algorithm: "aes-256",
	Mode:      "cfb",
	KeySize:   32,
	IVSize:    aes.BlockSize,
}

// Encrypt base64-encodes plaintext, runs it through AES-256-CFB under key
// with a fresh random IV and returns iv ++ ciphertext.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	return encryptWithReader(key, plaintext, rand.Reader)
}

func encryptWithReader(key, plaintext []byte, random io.Reader) ([]byte, error) {
	if len(key) != DefaultCipher.KeySize {
		return nil, fmt.Errorf("encryption error: key must be %d bytes, got %d", DefaultCipher.KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(plaintext)))
	base64.StdEncoding.Encode(encoded, plaintext)

	out := make([]byte, DefaultCipher.IVSize+len(encoded))
	iv := out[:DefaultCipher.IVSize]
	if _, err := io.ReadFull(random, iv); err != nil {
		return nil, fmt.Errorf("encryption error: generate IV: %w", err)
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(out[DefaultCipher.IVSize:], encoded)
	return out, nil
}

// Decrypt reverses Encrypt. A wrong key almost always surfaces as ErrDecode
// from the base64 step; it is not an authenticated check.
func Decrypt(key, data []byte) ([]byte, error) {
	if len(key) != DefaultCipher.KeySize {
		return nil, fmt.Errorf("decryption error: key must be %d bytes, got %d", DefaultCipher.KeySize, len(key))
	}
	if len(data) < DefaultCipher.IVSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrMalformedCiphertext, len(data))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := data[:DefaultCipher.IVSize]
	encoded := make([]byte, len(data)-DefaultCipher.IVSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(encoded, data[DefaultCipher.IVSize:])

	plaintext := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(plaintext, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: recovered payload is not base64 (wrong password?): %v", ErrDecode, err)
	}
	return plaintext[:n], nil
}
