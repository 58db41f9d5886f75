package score

import (
	"fmt"
	"math"
)

// MatchSalary compares the job's disclosed range against the user's targets.
// Undisclosed salary is mildly penalized (70); no user target is close to
// neutral (80); a range beyond the user's maximum target scores 95.
func MatchSalary(jobMin, jobMax, userMin, userMax *float64) (int, string) {
	if jobMin == nil && jobMax == nil {
		return 70, "Job does not disclose a salary."
	}
	if userMin == nil {
		return 80, "No minimum salary target set on your profile."
	}

	jobTop := jobMax
	if jobTop == nil {
		jobTop = jobMin
	}

	if *jobTop < *userMin {
		gapPct := (*userMin - *jobTop) / *userMin * 100
		score := int(math.Round(100 - gapPct))
		if score < 0 {
			score = 0
		}
		return score, fmt.Sprintf("Job's top salary %.0f is %.0f%% below your minimum target %.0f.", *jobTop, gapPct, *userMin)
	}

	if userMax != nil && jobMin != nil && *jobMin > *userMax {
		return 95, "Job's salary floor exceeds your target range."
	}

	return 85, "Job's salary range overlaps your target."
}
