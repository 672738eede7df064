package tutor

import "strings"

// extractJSON cuts the substring between the first '{' and the last '}'.
// Models occasionally wrap JSON answers in prose or code fences even when
// asked not to.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
