package score

import (
	"encoding/json"
	"strings"
)

type ListFormat int

const (
	FormatEmpty ListFormat = iota
	FormatJSON
	FormatDelimited
)

// ParsedList is the result of reading a dual-format stored list field:
// a JSON array when the row was written by us, a comma-separated string when
// it came from older rows or free-text scrapes.
type ParsedList struct {
	Format ListFormat
	Values []string
}

// ParseFlexibleList tries JSON first, then falls back to comma splitting.
// Blank entries are dropped either way.
func ParseFlexibleList(raw string) ParsedList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParsedList{Format: FormatEmpty}
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return ParsedList{Format: FormatJSON, Values: cleanList(arr)}
	}

	return ParsedList{Format: FormatDelimited, Values: cleanList(strings.Split(raw, ","))}
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
