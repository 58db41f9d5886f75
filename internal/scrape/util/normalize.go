package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// IsRemoteText reports whether a location/title/description blob reads as a
// remote posting.
func IsRemoteText(parts ...string) bool {
	blob := strings.ToLower(strings.Join(parts, " "))
	return strings.Contains(blob, "remote") || strings.Contains(blob, "work from home") ||
		strings.Contains(blob, "anywhere")
}

func InferWorkModeFromText(location, title, desc string) string {
	blob := strings.ToLower(strings.Join([]string{location, title, desc}, " "))

	switch {
	case strings.Contains(blob, "remote"):
		return "Remote"
	case strings.Contains(blob, "hybrid"):
		return "Hybrid"
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return "Onsite"
	default:
		return "Unknown"
	}
}

// MatchesAnyKeyword reports whether any keyword appears in the given texts.
// Empty keyword lists match everything (the orchestrator guarantees at least
// one keyword, but adapters stay safe on their own).
func MatchesAnyKeyword(keywords []string, texts ...string) bool {
	if len(keywords) == 0 {
		return true
	}
	blob := strings.ToLower(strings.Join(texts, " "))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(blob, k) {
			return true
		}
	}
	return false
}
