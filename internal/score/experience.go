package score

import (
	"fmt"
	"math"
	"time"

	"jobmatch-engine/internal/domain"
)

// TotalExperienceYears sums month deltas across all experience records.
// Ongoing roles (nil end date) run until now.
func TotalExperienceYears(records []domain.ExperienceRecord, now time.Time) float64 {
	months := 0
	for _, r := range records {
		if r.StartDate.IsZero() {
			continue
		}
		end := now
		if r.EndDate != nil && !r.EndDate.IsZero() {
			end = *r.EndDate
		}
		d := (end.Year()-r.StartDate.Year())*12 + int(end.Month()) - int(r.StartDate.Month())
		if d > 0 {
			months += d
		}
	}
	return float64(months) / 12.0
}

// MatchExperience scores the user's total years against the job's stated
// range. Being under the minimum is penalized much harder than being over
// the maximum.
func MatchExperience(years float64, jobMin, jobMax *float64) (int, string) {
	if jobMin == nil && jobMax == nil {
		return 80, "Job does not specify required experience."
	}

	belowMin := jobMin != nil && years < *jobMin
	aboveMax := jobMax != nil && years > *jobMax

	switch {
	case belowMin:
		gap := *jobMin - years
		score := int(math.Round(100 - 15*gap))
		if score < 0 {
			score = 0
		}
		return score, fmt.Sprintf("You have %.1f years of experience; the job asks for at least %.0f (%.1f years short).", years, *jobMin, gap)
	case aboveMax:
		excess := years - *jobMax
		score := int(math.Round(100 - 5*excess))
		if score < 60 {
			score = 60
		}
		return score, fmt.Sprintf("You have %.1f years of experience, above the job's stated maximum of %.0f; you may be overqualified.", years, *jobMax)
	default:
		return 100, fmt.Sprintf("Your %.1f years of experience fit the job's requirements.", years)
	}
}
