package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"golang.org/x/term"
)

// promptInput asks for the secret and password on the terminal unless they
// were already supplied through flags.
type promptInput struct {
	in  *bufio.Reader
	out io.Writer
	fd  int

	secret     *string
	secretFile string
	password   *string
}

func newPromptInput(in io.Reader, out io.Writer, fd int) *promptInput {
	return &promptInput{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *promptInput) Secret() ([]byte, error) {
	switch {
	case p.secretFile == "-":
		return io.ReadAll(p.in)
	case p.secretFile != "":
		return os.ReadFile(p.secretFile)
	case p.secret != nil:
		return []byte(*p.secret), nil
	}

	fmt.Fprint(p.out, "Data to encrypt: ")
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// validate rejects flag combinations that leave no way to read the password.
func (p *promptInput) validate() error {
	if p.secretFile == "-" && p.password == nil {
		return fmt.Errorf("%w: --passphrase is required when the secret is read from stdin", pngcrypt.ErrArgument)
	}
	return nil
}

func (p *promptInput) Password() (string, error) {
	if p.password != nil {
		return *p.password, nil
	}
	if err := p.validate(); err != nil {
		return "", err
	}

	fmt.Fprint(p.out, "Password: ")
	if term.IsTerminal(p.fd) {
		pw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return p.readLine()
}

// readLine returns one line without its terminator. A final line without a
// terminator is accepted; an empty stream is an error.
func (p *promptInput) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", fmt.Errorf("read line: %w", err)
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
