// Package kv provides the key-value store behind the render cache. Keys are
// hierarchical paths such as {"render", "<hash>"}, stored with a ':' separator.
//
// Badger backs the on-disk cache. Memory is used in tests and when caching is
// disabled for a single run.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned for keys that are empty or whose segments
	// contain the separator.
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Separator joins key segments in the encoded form.
const Separator byte = ':'

// Key is a hierarchical path represented as a slice of string segments.
type Key []string

// String returns the encoded key.
func (k Key) String() string {
	return strings.Join(k, string(Separator))
}

func (k Key) validate() error {
	if len(k) == 0 {
		return ErrInvalidKey
	}
	for _, seg := range k {
		if strings.IndexByte(seg, Separator) >= 0 {
			return fmt.Errorf("%w: segment %q contains %q", ErrInvalidKey, seg, Separator)
		}
	}
	return nil
}

// encode returns the storage form of k.
func (k Key) encode() []byte {
	return []byte(k.String())
}

// prefix returns the storage prefix matching keys below k. "a:b" does not
// match "a:bc".
func (k Key) prefix() []byte {
	if len(k) == 0 {
		return nil
	}
	return append(k.encode(), Separator)
}

func decodeKey(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present
	// or expired.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value. A positive
	// ttl makes the entry expire after that long.
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries below prefix in lexicographic key
	// order. An empty prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// DeletePrefix removes every entry below prefix and returns how many
	// were removed.
	DeletePrefix(ctx context.Context, prefix Key) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
