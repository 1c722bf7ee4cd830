// Package scanner matches chat message text against a configured keyword
// list. Matching is pure case-insensitive substring containment; a short
// keyword matches inside longer words.
package scanner

import "strings"

// Scan returns every keyword from keywordList that occurs in message,
// preserving list order, lower-cased, with no duplicates.
//
// An empty effective keyword list returns immediately without touching the
// message. A message that is empty after trimming matches nothing.
func Scan(message string, keywordList []string) []string {
	keywords := effectiveKeywords(keywordList)
	if len(keywords) == 0 {
		return []string{}
	}
	if strings.TrimSpace(message) == "" {
		return []string{}
	}

	messageLower := strings.ToLower(message)
	matched := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		if seen[kw] {
			continue
		}
		if strings.Contains(messageLower, kw) {
			matched = append(matched, kw)
			seen[kw] = true
		}
	}
	return matched
}

// effectiveKeywords trims, lower-cases and drops blank entries.
func effectiveKeywords(keywordList []string) []string {
	out := make([]string, 0, len(keywordList))
	for _, kw := range keywordList {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
