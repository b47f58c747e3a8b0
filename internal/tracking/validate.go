package tracking

import (
	"strings"
)

// MaxKeyLength bounds slugs and content ids.
const MaxKeyLength = 128

// ParseSlug validates a raw path segment as a link slug.
// Slugs use the unreserved URL characters only.
func ParseSlug(raw string) (Slug, error) {
	if raw == "" {
		return "", &ValidationError{Field: "slug", Message: "Missing slug"}
	}

	if len(raw) > MaxKeyLength {
		return "", &ValidationError{Field: "slug", Message: "Slug too long"}
	}

	for _, r := range raw {
		if !isUnreserved(r) {
			return "", &ValidationError{Field: "slug", Message: "Malformed slug"}
		}
	}

	return Slug(raw), nil
}

// ParseContentID validates a raw path segment as a post id.
func ParseContentID(raw string) (ContentID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", &ValidationError{Field: "id", Message: "Missing post ID"}
	}

	if len(id) > MaxKeyLength || strings.ContainsAny(id, "/ \t\r\n") {
		return "", &ValidationError{Field: "id", Message: "Malformed post ID"}
	}

	return ContentID(id), nil
}

func isUnreserved(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == '~':
		return true
	default:
		return false
	}
}
