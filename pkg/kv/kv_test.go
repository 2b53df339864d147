package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newBadgerStore(t *testing.T) *Badger {
	t.Helper()
	s, err := NewBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"badger": newBadgerStore(t),
	}
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := Key{"render", "abc"}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing err = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, key, []byte("one"), 0); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(ctx, key, []byte("two"), 0); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != "two" {
				t.Errorf("Get = %q, want two", got)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete err = %v", err)
			}
			if err := s.Delete(ctx, Key{"no", "such"}); err != nil {
				t.Errorf("Delete missing: %v", err)
			}
		})
	}
}

func TestListAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []Key{
				{"render", "b"},
				{"render", "a"},
				{"renders", "x"},
				{"meta", "version"},
			} {
				if err := s.Set(ctx, k, []byte(k.String()), 0); err != nil {
					t.Fatal(err)
				}
			}

			var keys []string
			for e, err := range s.List(ctx, Key{"render"}) {
				if err != nil {
					t.Fatal(err)
				}
				if string(e.Value) != e.Key.String() {
					t.Errorf("value of %v = %q", e.Key, e.Value)
				}
				keys = append(keys, e.Key.String())
			}
			if diff := cmp.Diff([]string{"render:a", "render:b"}, keys); diff != "" {
				t.Errorf("List (-want +got):\n%s", diff)
			}

			n, err := s.DeletePrefix(ctx, Key{"render"})
			if err != nil {
				t.Fatal(err)
			}
			if n != 2 {
				t.Errorf("DeletePrefix = %d, want 2", n)
			}
			var left int
			for _, err := range s.List(ctx, nil) {
				if err != nil {
					t.Fatal(err)
				}
				left++
			}
			if left != 2 {
				t.Errorf("remaining = %d, want 2", left)
			}
		})
	}
}

func TestInvalidKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, Key{"a:b"}, nil, 0); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Set err = %v, want ErrInvalidKey", err)
			}
			if _, err := s.Get(ctx, nil); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Get err = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, Key{"k"}, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, Key{"k"}); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, Key{"k"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry err = %v, want ErrNotFound", err)
	}
}

func TestMemoryCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	m.Set(ctx, Key{"k"}, v, 0)
	v[0] = 'x'
	got, _ := m.Get(ctx, Key{"k"})
	if string(got) != "abc" {
		t.Errorf("stored value changed to %q", got)
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadger(BadgerOptions{}); err == nil {
		t.Error("NewBadger without Dir should fail")
	}
}
