package store

import (
	"fmt"
	"strings"
)

const forbiddenKeyChars = ".#$[]"

// Split parses a slash separated path into its segments. The root path
// ("" or "/") yields no segments.
func Split(path string) ([]string, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	for _, p := range parts {
		if err := ValidateKey(p); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return parts, nil
}

func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidPath)
	}
	if strings.ContainsAny(key, forbiddenKeyChars) {
		return fmt.Errorf("%w: key %q contains one of %q", ErrInvalidPath, key, forbiddenKeyChars)
	}
	return nil
}

func Join(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return "/" + strings.Join(clean, "/")
}

// Overlaps reports whether a write at one path can change the value seen at
// the other, which is the case when either is a prefix of the other.
func Overlaps(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
