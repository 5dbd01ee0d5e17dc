package store

import (
	"fmt"
	"strings"
)

func splitSegments(path string) []string {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return nil
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	return parts
}

// Doc joins segments into a document path.
func Doc(segments ...string) string {
	return strings.Join(segments, "/")
}

func ValidateDocPath(path string) error {
	parts := splitSegments(path)
	if len(parts) == 0 || len(parts)%2 != 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}

func ValidateCollectionPath(path string) error {
	parts := splitSegments(path)
	if len(parts) == 0 || len(parts)%2 != 1 {
		return fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, path)
	}
	return nil
}

// SplitDoc returns the collection path and id of a document path.
func SplitDoc(path string) (collection, id string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
