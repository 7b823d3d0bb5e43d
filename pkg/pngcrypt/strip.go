package pngcrypt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// StripArgs configures StripFile.
type StripArgs struct {
	ImagePath *string
	Output    *string
	Strict    *bool
}

// Strip copies the PNG from r to w without any secret, salt or
// error-correction marker chunks and returns how many chunks were dropped.
func Strip(w io.Writer, r io.Reader, opts Options) (int, error) {
	cr, header, err := NewReader(r)
	if err != nil {
		return 0, err
	}
	cr.VerifyChecksums = opts.VerifyChecksums

	if _, err := w.Write(header[:]); err != nil {
		return 0, ioErr("write", "signature", err)
	}

	removed := 0
	for {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return removed, nil
		}
		if err != nil {
			return removed, err
		}
		switch c.Type {
		case SecretChunkType, SaltChunkType, ECCChunkType:
			log.Debug().Str("type", c.Type).Uint32("length", c.Length).Msg("Dropped chunk")
			removed++
			continue
		}
		if err := writeChunk(w, c); err != nil {
			return removed, err
		}
	}
}

// StripFile writes a copy of args.ImagePath with every chunk Strip drops
// removed to args.Output.
func StripFile(args *StripArgs) (int, error) {
	imagePath := deref(args.ImagePath)
	output := deref(args.Output)
	if imagePath == "" || output == "" {
		return 0, fmt.Errorf("%w: strip needs an input and an output path", ErrArgument)
	}
	if sameFile(imagePath, output) {
		return 0, fmt.Errorf("%w: output %s would overwrite the source", ErrArgument, output)
	}

	src, err := os.Open(imagePath)
	if err != nil {
		return 0, ioErr("open", imagePath, err)
	}
	defer src.Close()

	var removed int
	err = withOutputFile(output, func(w io.Writer) error {
		var err error
		removed, err = Strip(w, bufio.NewReader(src), Options{VerifyChecksums: derefBool(args.Strict)})
		return err
	})
	return removed, err
}
