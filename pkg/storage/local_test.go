package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalPutGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a/b/song.wav", []byte("RIFF"), "audio/wav"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "a/b/song.wav")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "RIFF" {
		t.Fatalf("got %q, want RIFF", got)
	}

	if err := s.Put(ctx, "a/b/song.wav", []byte("again"), ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "a/b/song.wav")
	if string(got) != "again" {
		t.Fatalf("overwrite got %q", got)
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), "a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the song", len(entries))
	}
}

func TestLocalGetNotExist(t *testing.T) {
	s := newTestLocal(t)
	if _, err := s.Get(context.Background(), "missing.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestLocalExists(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "x.wav")
	if err != nil || ok {
		t.Fatalf("Exists missing = %v, %v", ok, err)
	}
	if err := s.Put(ctx, "x.wav", []byte("x"), ""); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "x.wav"); !ok {
		t.Fatal("Exists = false after Put")
	}
	if ok, _ := s.Exists(ctx, "sub/x.wav"); ok {
		t.Fatal("Exists = true for another name")
	}
}

func TestLocalRejectsEscape(t *testing.T) {
	parent := t.TempDir()
	s, err := NewLocal(filepath.Join(parent, "out"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Put(ctx, "../x.wav", []byte("RIFF"), "audio/wav"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Put(../x.wav) err = %v, want ErrInvalidName", err)
	}
	if _, err := os.Stat(filepath.Join(parent, "x.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written outside root: %v", err)
	}
	if _, err := s.Exists(ctx, "../x.wav"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Exists(../x.wav) err = %v, want ErrInvalidName", err)
	}
}

func TestLocalLocation(t *testing.T) {
	s := newTestLocal(t)
	want := filepath.Join(s.Root(), "sub", "a.wav")
	if got := s.Location("sub/a.wav"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestNewLocalCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested")
	if _, err := NewLocal(dir); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}
