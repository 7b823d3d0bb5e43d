package pngcrypt

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// KDF selects how a password becomes the 32-byte cipher key.
type KDF byte

const (
	// KDFHash is a single unsalted SHA-512/256 pass. It needs no salt chunk
	// and is what files without a saLt chunk use.
	KDFHash KDF = iota
	KDFPBKDF2
	KDFScrypt
	KDFArgon2id
)

const (
	saltSize = 32

	pbkdf2Iterations = 100000

	scryptN = 32768
	scryptR = 8
	scryptP = 1

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var kdfNames = map[KDF]string{
	KDFHash:     "sha512-256",
	KDFPBKDF2:   "pbkdf2",
	KDFScrypt:   "scrypt",
	KDFArgon2id: "argon2id",
}

func (k KDF) String() string {
	if name, ok := kdfNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kdf(%d)", byte(k))
}

// Salted reports whether the KDF needs a salt stored alongside the secret.
func (k KDF) Salted() bool {
	return k != KDFHash
}

// ParseKDF maps a flag value to a KDF.
func ParseKDF(name string) (KDF, error) {
	for k, n := range kdfNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kdf %q (want sha512-256, pbkdf2, scrypt or argon2id)", ErrArgument, name)
}

// NormalizePassword strips trailing whitespace, including a line terminator.
func NormalizePassword(password string) string {
	return strings.TrimRightFunc(password, unicode.IsSpace)
}

// DeriveKey hashes the normalized password with SHA-512/256.
func DeriveKey(password string) []byte {
	sum := sha512.Sum512_256([]byte(NormalizePassword(password)))
	return sum[:]
}

// DeriveKeyWith derives a key with the given KDF. salt is ignored by KDFHash.
func DeriveKeyWith(kdf KDF, password string, salt []byte) ([]byte, error) {
	pw := []byte(NormalizePassword(password))
	switch kdf {
	case KDFHash:
		return DeriveKey(password), nil
	case KDFPBKDF2:
		return pbkdf2.Key(pw, salt, pbkdf2Iterations, DefaultCipher.KeySize, sha256.New), nil
	case KDFScrypt:
		key, err := scrypt.Key(pw, salt, scryptN, scryptR, scryptP, DefaultCipher.KeySize)
		if err != nil {
			return nil, fmt.Errorf("scrypt: %w", err)
		}
		return key, nil
	case KDFArgon2id:
		return argon2.IDKey(pw, salt, argonTime, argonMemory, argonThreads, uint32(DefaultCipher.KeySize)), nil
	default:
		return nil, fmt.Errorf("%w: unknown kdf id %d", ErrDecode, byte(kdf))
	}
}

// newSaltChunk generates a salt for kdf and frames it as kdf id ++ salt.
func newSaltChunk(kdf KDF, random io.Reader) (*Chunk, []byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(random, salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	data := append([]byte{byte(kdf)}, salt...)
	c, err := NewChunk(SaltChunkType, data)
	if err != nil {
		return nil, nil, err
	}
	return c, salt, nil
}

// parseSaltChunk splits a saLt chunk into its KDF and salt.
func parseSaltChunk(c *Chunk) (KDF, []byte, error) {
	if len(c.Data) < 2 {
		return 0, nil, fmt.Errorf("%w: salt chunk too short (%d bytes)", ErrDecode, len(c.Data))
	}
	kdf := KDF(c.Data[0])
	if _, ok := kdfNames[kdf]; !ok || !kdf.Salted() {
		return 0, nil, fmt.Errorf("%w: salt chunk names unsupported kdf id %d", ErrDecode, c.Data[0])
	}
	return kdf, c.Data[1:], nil
}
