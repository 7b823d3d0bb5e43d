package pngcrypt

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Input supplies the secret and password when the pipeline needs them.
type Input interface {
	Secret() ([]byte, error)
	Password() (string, error)
}

// StaticInput is an Input backed by fixed values.
type StaticInput struct {
	Message    []byte
	Passphrase string
}

func (s StaticInput) Secret() ([]byte, error)   { return s.Message, nil }
func (s StaticInput) Password() (string, error) { return s.Passphrase, nil }

// Options tune a single pass over a container.
type Options struct {
	// KDF used when embedding. Extraction takes it from the saLt chunk.
	KDF KDF
	// ECC wraps the secret chunk payload in Reed-Solomon shards when
	// embedding. Extraction detects it from the file.
	ECC bool
	// VerifyChecksums rejects source chunks whose checksum does not match.
	VerifyChecksums bool
	// Progress receives a byte progress bar when non-nil.
	Progress io.Writer
	// Size is the source size used to scale the progress bar; -1 if unknown.
	Size int64

	random io.Reader
}

func (o Options) rand() io.Reader {
	if o.random != nil {
		return o.random
	}
	return rand.Reader
}

func (o Options) newBar(description string) *progressbar.ProgressBar {
	if o.Progress == nil {
		return nil
	}
	size := o.Size
	if size <= 0 {
		size = -1
	}
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(o.Progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(o.Progress, "\n")
		}),
	)
}

func advance(bar *progressbar.ProgressBar, n int64) {
	if bar != nil {
		bar.Add64(n)
	}
}

// Embed copies the PNG read from r to w, inserting the encrypted secret
// chunk immediately before the first IDAT chunk. All other chunks are
// copied verbatim and in order.
func Embed(w io.Writer, r io.Reader, in Input, opts Options) error {
	cr, header, err := NewReader(r)
	if err != nil {
		return err
	}
	cr.VerifyChecksums = opts.VerifyChecksums

	bar := opts.newBar("encrypting")
	if _, err := w.Write(header[:]); err != nil {
		return ioErr("write", "signature", err)
	}
	advance(bar, int64(len(header)))

	var idat *Chunk
	for idat == nil {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: no %s chunk to insert before", ErrChunkNotFound, ImageDataChunkType)
		}
		if err != nil {
			return err
		}
		if c.Type == ImageDataChunkType {
			idat = c
			break
		}
		if c.Type == SecretChunkType {
			log.Warn().Msg("Source already carries a secret chunk; it will shadow the new one on decrypt")
		}
		if err := writeChunk(w, c); err != nil {
			return err
		}
		advance(bar, c.wireSize())
	}

	chunks, err := sealSecret(in, opts)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := writeChunk(w, c); err != nil {
			return err
		}
		log.Debug().Str("type", c.Type).Uint32("length", c.Length).Msg("Inserted chunk")
	}

	for c := idat; ; {
		if err := writeChunk(w, c); err != nil {
			return err
		}
		advance(bar, c.wireSize())

		c, err = cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return nil
}

// sealSecret reads the secret and password from in and returns the chunks
// to insert: an optional salt chunk followed by the secret chunk.
func sealSecret(in Input, opts Options) ([]*Chunk, error) {
	secret, err := in.Secret()
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	password, err := in.Password()
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	var chunks []*Chunk
	var salt []byte
	if opts.KDF.Salted() {
		var saltChunk *Chunk
		saltChunk, salt, err = newSaltChunk(opts.KDF, opts.rand())
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, saltChunk)
	}

	key, err := DeriveKeyWith(opts.KDF, password, salt)
	if err != nil {
		return nil, err
	}
	payload, err := encryptWithReader(key, secret, opts.rand())
	if err != nil {
		return nil, err
	}
	if opts.ECC {
		payload, err = addReedSolomon(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to apply Reed-Solomon encoding: %w", err)
		}
		eccChunk, err := newECCChunk()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, eccChunk)
	}

	secretChunk, err := NewChunk(SecretChunkType, payload)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("kdf", opts.KDF.String()).
		Bool("ecc", opts.ECC).
		Int("secret", len(secret)).
		Int("payload", len(payload)).
		Msg("Sealed secret")
	return append(chunks, secretChunk), nil
}

// Extract scans the PNG read from r for the first secret chunk and returns
// the decrypted secret. A saLt chunk seen before it selects the KDF and a
// reSo chunk turns on Reed-Solomon decoding.
func Extract(r io.Reader, in Input, opts Options) ([]byte, error) {
	cr, _, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	cr.VerifyChecksums = opts.VerifyChecksums

	kdf := KDFHash
	ecc := false
	var salt []byte
	var found *Chunk
	for found == nil {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no %s chunk in file", ErrChunkNotFound, SecretChunkType)
		}
		if err != nil {
			return nil, err
		}
		switch c.Type {
		case SaltChunkType:
			kdf, salt, err = parseSaltChunk(c)
			if err != nil {
				return nil, err
			}
		case ECCChunkType:
			if err := parseECCChunk(c); err != nil {
				return nil, err
			}
			ecc = true
		case SecretChunkType:
			found = c
		}
	}

	password, err := in.Password()
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	key, err := DeriveKeyWith(kdf, password, salt)
	if err != nil {
		return nil, err
	}

	payload := found.Data
	if ecc {
		payload, err = removeReedSolomon(payload)
		if err != nil {
			return nil, err
		}
	}
	log.Debug().Str("kdf", kdf.String()).Bool("ecc", ecc).Int("payload", len(payload)).Msg("Found secret chunk")

	secret, err := Decrypt(key, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return secret, nil
}

func writeChunk(w io.Writer, c *Chunk) error {
	if _, err := c.WriteTo(w); err != nil {
		return ioErr("write", c.Type+" chunk", err)
	}
	return nil
}

// EncryptArgs configures EncryptFile.
type EncryptArgs struct {
	ImagePath *string
	Output    *string
	Input     Input
	KDF       *string
	ECC       *bool
	Strict    *bool
	Progress  *bool
}

// DecryptArgs configures DecryptFile.
type DecryptArgs struct {
	ImagePath *string
	Output    *string
	Input     Input
	Strict    *bool
}

// DefaultOutputPath names the encrypt output encrypted-<name> next to src.
func DefaultOutputPath(src string) string {
	return filepath.Join(filepath.Dir(src), "encrypted-"+filepath.Base(src))
}

// EncryptFile embeds the secret from args.Input into the PNG at
// args.ImagePath and returns the path written.
func EncryptFile(args *EncryptArgs) (string, error) {
	imagePath := deref(args.ImagePath)
	if imagePath == "" {
		return "", fmt.Errorf("%w: source PNG path is required", ErrArgument)
	}
	if args.Input == nil {
		return "", fmt.Errorf("%w: no input source for secret and password", ErrArgument)
	}
	output := deref(args.Output)
	if output == "" {
		output = DefaultOutputPath(imagePath)
	}
	if sameFile(imagePath, output) {
		return "", fmt.Errorf("%w: output %s would overwrite the source", ErrArgument, output)
	}

	kdf := KDFHash
	if name := deref(args.KDF); name != "" {
		var err error
		if kdf, err = ParseKDF(name); err != nil {
			return "", err
		}
	}

	src, err := os.Open(imagePath)
	if err != nil {
		return "", ioErr("open", imagePath, err)
	}
	defer src.Close()

	opts := Options{
		KDF:             kdf,
		ECC:             derefBool(args.ECC),
		VerifyChecksums: derefBool(args.Strict),
		Size:            -1,
	}
	if derefBool(args.Progress) {
		opts.Progress = os.Stderr
		if info, err := src.Stat(); err == nil {
			opts.Size = info.Size()
		}
	}

	log.Debug().Str("input", imagePath).Str("output", output).Str("kdf", kdf.String()).Msg("Encrypting")
	err = withOutputFile(output, func(w io.Writer) error {
		return Embed(w, bufio.NewReader(src), args.Input, opts)
	})
	if err != nil {
		return "", err
	}
	return output, nil
}

// DecryptFile extracts the secret from the PNG at args.ImagePath and writes
// it to args.Output. The output file is only created once decryption succeeds.
func DecryptFile(args *DecryptArgs) error {
	imagePath := deref(args.ImagePath)
	output := deref(args.Output)
	if imagePath == "" {
		return fmt.Errorf("%w: encrypted PNG path is required", ErrArgument)
	}
	if output == "" {
		return fmt.Errorf("%w: output path is required", ErrArgument)
	}
	if args.Input == nil {
		return fmt.Errorf("%w: no input source for password", ErrArgument)
	}

	src, err := os.Open(imagePath)
	if err != nil {
		return ioErr("open", imagePath, err)
	}
	defer src.Close()

	secret, err := Extract(bufio.NewReader(src), args.Input, Options{VerifyChecksums: derefBool(args.Strict)})
	if err != nil {
		return err
	}

	return withOutputFile(output, func(w io.Writer) error {
		if _, err := w.Write(secret); err != nil {
			return ioErr("write", output, err)
		}
		return nil
	})
}

// withOutputFile creates path, hands fn a buffered writer and flushes and
// closes it. On any failure the partial file is removed.
func withOutputFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ioErr("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioErr("close", path, cerr)
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
				log.Warn().Err(rerr).Str("path", path).Msg("Failed to remove incomplete output")
			}
		}
	}()

	bw := bufio.NewWriter(f)
	if err = fn(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
