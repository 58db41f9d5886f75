package score

import (
	"fmt"
	"strings"
)

// MatchLocation scores the job's location against the user's remote
// preference and preferred-location list.
func MatchLocation(jobLocation string, isRemote *bool, preference string, preferred []string) (int, string) {
	pref := strings.ToLower(strings.TrimSpace(preference))

	switch pref {
	case "remote":
		if isRemote != nil && *isRemote {
			return 100, "Remote job matches your remote preference."
		}
		return 30, "You prefer remote work but this job is not remote."
	case "any":
		return 90, "You are open to any location."
	}

	if len(preferred) == 0 {
		return 80, "No preferred locations set on your profile."
	}

	loc := strings.ToLower(strings.TrimSpace(jobLocation))
	if loc != "" {
		for _, p := range preferred {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if strings.Contains(loc, p) || strings.Contains(p, loc) {
				return 100, fmt.Sprintf("Job location %q matches your preferred locations.", jobLocation)
			}
		}
	}
	return 40, fmt.Sprintf("Job location %q is not in your preferred locations.", jobLocation)
}
