// Package storage writes rendered songs to their output location: a local
// directory or an S3-compatible bucket.
//
// Objects are written whole. A failed Put never leaves a partial object
// behind under the requested name.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrInvalidURI is returned by Open for output locations it cannot parse.
	ErrInvalidURI = errors.New("storage: invalid uri")

	// ErrInvalidName is returned for object names that are empty, absolute or
	// leave the store root.
	ErrInvalidName = errors.New("storage: invalid name")
)

// CheckName validates a store-relative object name: slash separated, with no
// empty, "." or ".." elements.
func CheckName(name string) error {
	if name == "." || strings.Contains(name, `\`) || !fs.ValidPath(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Store is the output sink for rendered files.
//
// Names are forward-slash separated and relative to the store root. Put, Get
// and Exists reject names that fail CheckName.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under name, replacing any existing object.
	Put(ctx context.Context, name string, data []byte, contentType string) error

	// Get returns the content of name. A missing object returns an error
	// wrapping os.ErrNotExist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Location returns a printable location for name, a file path or an
	// s3:// URI.
	Location(name string) string
}

// S3Config holds the connection settings for s3:// locations.
type S3Config struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`
}

// Open returns the store for uri: "s3://bucket/prefix" selects S3, anything
// else is a local directory created on demand.
func Open(ctx context.Context, uri string, cfg S3Config) (Store, error) {
	if !strings.HasPrefix(uri, "s3://") {
		if uri == "" {
			return nil, fmt.Errorf("%w: empty location", ErrInvalidURI)
		}
		return NewLocal(uri)
	}
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return NewS3(NewS3Client(cfg), bucket, prefix), nil
}

// ParseS3URI splits "s3://bucket/prefix" into bucket and prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not s3://bucket[/prefix]", ErrInvalidURI, uri)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// Split separates the last element of a file location from its parent, so
// the parent can be opened with Open.
func Split(location string) (dir, name string) {
	if strings.HasPrefix(location, "s3://") {
		dir, name = path.Split(location)
		return strings.TrimSuffix(dir, "/"), name
	}
	dir, name = path.Split(strings.ReplaceAll(location, "\\", "/"))
	if dir == "" {
		dir = "."
	}
	return dir, name
}
