package errors

import (
	"strings"
	"unicode"
)

// ValidateItemID validates an item identifier for safety and correctness.
// Item IDs are opaque strings supplied by collaborators (gallery backends,
// item feeds) and end up in cache keys and store documents, so the rules
// are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No null bytes or path separators
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidItem, "item ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item ID contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidItem, "item ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateColumnCount validates a column count for partitioning.
// Zero or negative counts are refused so callers can keep their previous
// valid assignment instead of crashing.
func ValidateColumnCount(k int) error {
	if k <= 0 {
		return New(ErrCodeInvalidColumnCount, "column count must be positive, got %d", k)
	}
	if k > 64 {
		return New(ErrCodeInvalidColumnCount, "column count too large (max 64), got %d", k)
	}
	return nil
}
