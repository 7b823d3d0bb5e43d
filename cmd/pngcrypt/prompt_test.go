package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
)

func TestPromptReadsSecretAndPassword(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSecret string
		wantPass   string
	}{
		{name: "Unix", input: "hello world\nhunter2\n", wantSecret: "hello world", wantPass: "hunter2"},
		{name: "Windows", input: "hello world\r\nhunter2\r\n", wantSecret: "hello world", wantPass: "hunter2"},
		{name: "NoFinalNewline", input: "hello\nhunter2", wantSecret: "hello", wantPass: "hunter2"},
		{name: "TrailingSpaceKept", input: "hello  \npw\n", wantSecret: "hello  ", wantPass: "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			// fd -1 is never a terminal, so the password is read as a line
			p := newPromptInput(strings.NewReader(tt.input), &out, -1)

			secret, err := p.Secret()
			if err != nil {
				t.Fatalf("Secret failed: %v", err)
			}
			if string(secret) != tt.wantSecret {
				t.Errorf("secret = %q; want %q", secret, tt.wantSecret)
			}
			pw, err := p.Password()
			if err != nil {
				t.Fatalf("Password failed: %v", err)
			}
			if pw != tt.wantPass {
				t.Errorf("password = %q; want %q", pw, tt.wantPass)
			}
			if !strings.Contains(out.String(), "Data to encrypt: ") || !strings.Contains(out.String(), "Password: ") {
				t.Errorf("prompts missing from output: %q", out.String())
			}
		})
	}
}

func TestPromptEmptyStream(t *testing.T) {
	p := newPromptInput(strings.NewReader(""), &bytes.Buffer{}, -1)
	if _, err := p.Secret(); err == nil {
		t.Error("expected error reading a secret from an empty stream")
	}
	if _, err := p.Password(); err == nil {
		t.Error("expected error reading a password from an empty stream")
	}
}

func TestPromptFlagsSkipPrompts(t *testing.T) {
	secret, password := "from flag", "pw"
	var out bytes.Buffer
	p := newPromptInput(strings.NewReader(""), &out, -1)
	p.secret = &secret
	p.password = &password

	got, err := p.Secret()
	if err != nil || string(got) != secret {
		t.Errorf("Secret() = %q, %v; want %q", got, err, secret)
	}
	pw, err := p.Password()
	if err != nil || pw != password {
		t.Errorf("Password() = %q, %v; want %q", pw, err, password)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected prompt output: %q", out.String())
	}
}

func TestPromptSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.bin")
	data := []byte("line one\nline two\n\x00\xff")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	flag := "ignored"
	p := newPromptInput(strings.NewReader(""), &bytes.Buffer{}, -1)
	p.secret = &flag
	p.secretFile = path
	got, err := p.Secret()
	if err != nil {
		t.Fatalf("Secret failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file secret = %q; want %q", got, data)
	}

	p = newPromptInput(bytes.NewReader(data), &bytes.Buffer{}, -1)
	p.secretFile = "-"
	got, err = p.Secret()
	if err != nil {
		t.Fatalf("Secret from stdin failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("stdin secret = %q; want %q", got, data)
	}
}

func TestPositionalArgs(t *testing.T) {
	check := positionalArgs("encrypted-png", "output-path")

	if err := check(nil, []string{"a.png", "out.txt"}); err != nil {
		t.Errorf("valid args rejected: %v", err)
	}
	for _, args := range [][]string{nil, {"a.png"}, {"a", "b", "c"}} {
		if err := check(nil, args); !errors.Is(err, pngcrypt.ErrArgument) {
			t.Errorf("args %v: expected ErrArgument, got %v", args, err)
		}
	}
}

func TestPromptStdinSecretNeedsPassphrase(t *testing.T) {
	p := newPromptInput(strings.NewReader("secret from a pipe\n"), &bytes.Buffer{}, -1)
	p.secretFile = "-"

	if err := p.validate(); !errors.Is(err, pngcrypt.ErrArgument) {
		t.Errorf("validate: expected ErrArgument, got %v", err)
	}
	if _, err := p.Secret(); err != nil {
		t.Fatalf("Secret failed: %v", err)
	}
	if _, err := p.Password(); !errors.Is(err, pngcrypt.ErrArgument) {
		t.Errorf("Password after draining stdin: expected ErrArgument, got %v", err)
	}

	password := "pw"
	p.password = &password
	if err := p.validate(); err != nil {
		t.Errorf("validate with passphrase: %v", err)
	}
	if pw, err := p.Password(); err != nil || pw != password {
		t.Errorf("Password() = %q, %v; want %q", pw, err, password)
	}
}
