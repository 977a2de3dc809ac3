package utils

import (
	"strings"
	"time"
)

func BoolPtr(b bool) *bool {
	return &b
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PtrBoolOr dereferences b, falling back to def when b is nil.
func PtrBoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// TrimmedPtr returns nil for blank input, otherwise a pointer to the trimmed value.
func TrimmedPtr(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
