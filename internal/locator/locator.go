// Package locator parses object-storage URIs of the form scheme://bucket/key.
package locator

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// DefaultScheme is the scheme used by Terra workspace buckets.
const DefaultScheme = "gs"

// ErrInvalid is returned when a string is not a well-formed locator.
var ErrInvalid = errors.New("locator: invalid")

// Locator identifies a single object in a bucket.
type Locator struct {
	Scheme string
	Bucket string
	Key    string
}

// Prefix returns the string every locator with the given scheme starts with.
func Prefix(scheme string) string {
	return scheme + "://"
}

// Is reports whether s looks like a locator for scheme.
func Is(s, scheme string) bool {
	return strings.HasPrefix(s, Prefix(scheme))
}

// Parse splits s into bucket and key. Both must be non-empty.
func Parse(s, scheme string) (Locator, error) {
	if !Is(s, scheme) {
		return Locator{}, fmt.Errorf("%w: %q has no %s prefix", ErrInvalid, s, Prefix(scheme))
	}
	rest := strings.TrimPrefix(s, Prefix(scheme))
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return Locator{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// String returns the locator in scheme://bucket/key form.
func (l Locator) String() string {
	return Prefix(l.Scheme) + l.Bucket + "/" + l.Key
}

// ObjectName is the final path segment of the key, used as the local file name.
func (l Locator) ObjectName() string {
	return path.Base(l.Key)
}

// IsExternal reports whether l lives outside the workspace bucket.
func (l Locator) IsExternal(workspaceBucket string) bool {
	return l.Bucket != workspaceBucket
}
