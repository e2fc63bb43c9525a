package util

import "strings"

// KeySep separates the segments of a namespaced key (domain:environment:id).
const KeySep = ":"

// ValidKey reports whether key can be used with the backend.
// The only requirement is a non-empty string.
func ValidKey(key string) bool {
	return key != ""
}

// Key joins segments into a namespaced key. Empty segments are kept so that
// positions stay stable ("partnerInfo::abc" still names the id "abc").
func Key(segments ...string) string {
	n := len(KeySep) * (len(segments) - 1)
	for _, s := range segments {
		n += len(s)
	}
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for i, s := range segments {
		if i > 0 {
			b.WriteString(KeySep)
		}
		b.WriteString(s)
	}
	return b.String()
}
