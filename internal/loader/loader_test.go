package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.env", []byte("# comment\nexport PORT=8080\nNAME=\"my app\"\nEMPTY=\n"))

	got, err := New(zaptest.NewLogger(t)).Load([]string{path}, "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["PORT"] != "8080" || got["NAME"] != "my app" {
		t.Fatalf("unexpected pairs: %v", got)
	}
	if v, ok := got["EMPTY"]; !ok || v != "" {
		t.Fatalf("expected EMPTY to be present and blank, got %q (present=%v)", v, ok)
	}
}

func TestLoadFirstFileWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.env", []byte("A=first\n"))
	second := writeFile(t, dir, "second.env", []byte("A=second\nB=second\n"))

	got, err := New(nil).Load([]string{first, second}, "utf-8", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["A"] != "first" || got["B"] != "second" {
		t.Fatalf("unexpected precedence: %v", got)
	}
}

func TestLoadYAMLFlattens(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "env.yaml", []byte(`
PORT: 8080
DEBUG: true
RATIO: 1.5
UNSET: null
HOSTS: [a, b]
DB:
  HOST: localhost
  PORT: 5432
`))

	got, err := New(nil).Load([]string{path}, "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"PORT":    "8080",
		"DEBUG":   "true",
		"RATIO":   "1.5",
		"HOSTS":   "a,b",
		"DB_HOST": "localhost",
		"DB_PORT": "5432",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %v", len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("expected %s=%q, got %q", k, v, got[k])
		}
	}
}

func TestLoadDecodesLatin1(t *testing.T) {
	dir := t.TempDir()
	// "CITY=Zürich" with ü encoded as a single ISO-8859-1 byte.
	path := writeFile(t, dir, "latin.env", []byte{'C', 'I', 'T', 'Y', '=', 'Z', 0xFC, 'r', 'i', 'c', 'h', '\n'})

	got, err := New(nil).Load([]string{path}, "latin1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["CITY"] != "Zürich" {
		t.Fatalf("expected decoded value, got %q", got["CITY"])
	}
}

func TestLoadUnknownEncoding(t *testing.T) {
	_, err := New(nil).Load([]string{"irrelevant.env"}, "klingon-8", true)
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	t.Run("explicit path is reported but others still load", func(t *testing.T) {
		dir := t.TempDir()
		ok := writeFile(t, dir, "ok.env", []byte("A=1\n"))

		got, err := New(nil).Load([]string{filepath.Join(dir, "missing.env"), ok}, "", true)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected not-exist error, got %v", err)
		}
		if got["A"] != "1" {
			t.Fatalf("expected readable file to be loaded, got %v", got)
		}
	})

	t.Run("default path may be absent", func(t *testing.T) {
		t.Chdir(t.TempDir())

		got, err := New(nil).Load(nil, "", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no pairs, got %v", got)
		}
	})

	t.Run("default path is read when present", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, DefaultPath, []byte("FROM_DEFAULT=yes\n"))
		t.Chdir(dir)

		got, err := New(nil).Load(nil, "", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["FROM_DEFAULT"] != "yes" {
			t.Fatalf("expected default file to be read, got %v", got)
		}
	})
}

func TestLoadQuietSuppressesInfoOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.env", []byte("A=1\n"))

	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	if _, err := l.Load([]string{path}, "", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("loaded environment file").Len() != 0 {
		t.Fatalf("expected quiet mode to suppress info output")
	}

	if _, err := l.Load([]string{path}, "", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("loaded environment file").Len() != 1 {
		t.Fatalf("expected one info entry when not quiet")
	}
}
