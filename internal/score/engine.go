// Package score turns one job posting and one user profile into a weighted
// fit score with an explainable breakdown. It is deterministic and does no
// I/O; persistence is the caller's responsibility.
package score

import (
	"fmt"
	"math"
	"time"

	"jobmatch-engine/internal/domain"
)

// Fixed component weights. Overall = round(Σ weight·component).
const (
	WeightSemantic   = 0.30
	WeightSkills     = 0.30
	WeightExperience = 0.20
	WeightSalary     = 0.10
	WeightLocation   = 0.10
)

// ProfileInput is the slice of profile data scoring needs.
type ProfileInput struct {
	Skills             []string
	Experience         []domain.ExperienceRecord
	SalaryMinTarget    *float64
	SalaryMaxTarget    *float64
	RemotePreference   string
	PreferredLocations []string
}

type Engine struct {
	// Now is replaceable for tests; defaults to time.Now.
	Now func() time.Time
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Score computes the full breakdown. semantic is the externally supplied
// vector-similarity input on a 0..100 scale; it is not computed here.
//
// Scoring must never panic past this boundary: any internal failure yields
// the neutral breakdown so one bad record can't abort a batch run.
func (e Engine) Score(job domain.NormalizedJob, profile ProfileInput, semantic int) (b domain.ScoreBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			b = Neutral(fmt.Sprintf("%v", r))
		}
	}()

	semantic = clamp(semantic)

	required := ParseFlexibleList(job.SkillsRequired).Values
	skillScore, matched, missing := MatchSkills(required, profile.Skills)

	years := TotalExperienceYears(profile.Experience, e.now())
	expScore, expAnalysis := MatchExperience(years, job.ExperienceMin, job.ExperienceMax)

	salScore, salAnalysis := MatchSalary(job.SalaryMin, job.SalaryMax, profile.SalaryMinTarget, profile.SalaryMaxTarget)

	locScore, locAnalysis := MatchLocation(job.Location, job.IsRemote, profile.RemotePreference, profile.PreferredLocations)

	overall := int(math.Round(
		WeightSemantic*float64(semantic) +
			WeightSkills*float64(skillScore) +
			WeightExperience*float64(expScore) +
			WeightSalary*float64(salScore) +
			WeightLocation*float64(locScore)))

	b = domain.ScoreBreakdown{
		OverallScore:         clamp(overall),
		SemanticScore:        semantic,
		SkillMatchScore:      skillScore,
		ExperienceMatchScore: expScore,
		SalaryMatchScore:     salScore,
		LocationMatchScore:   locScore,
		MatchedSkills:        matched,
		MissingSkills:        missing,
		ExperienceAnalysis:   expAnalysis,
		SalaryAnalysis:       salAnalysis,
		LocationAnalysis:     locAnalysis,
	}
	b.Pros, b.Cons = compileProsCons(b)
	return b
}

func compileProsCons(b domain.ScoreBreakdown) (pros, cons []string) {
	if b.SkillMatchScore >= 70 {
		pros = append(pros, "Strong skill match for this role.")
	} else if len(b.MissingSkills) > 0 {
		cons = append(cons, fmt.Sprintf("Missing skills: %s.", joinMax(b.MissingSkills, 5)))
	}
	if b.ExperienceMatchScore >= 80 {
		pros = append(pros, "Your experience level fits the role.")
	}
	if b.SalaryMatchScore >= 95 {
		pros = append(pros, "Salary exceeds your expectations.")
	} else if b.SalaryMatchScore < 50 {
		cons = append(cons, "Salary is likely below your target.")
	}
	if b.LocationMatchScore >= 80 {
		pros = append(pros, "Location works for you.")
	}
	return pros, cons
}

// Neutral is the all-50 fallback breakdown substituted when scoring input is
// unusable (malformed stored data, missing relations).
func Neutral(errNote string) domain.ScoreBreakdown {
	const msg = "Unable to analyze"
	b := domain.ScoreBreakdown{
		OverallScore:         50,
		SemanticScore:        50,
		SkillMatchScore:      50,
		ExperienceMatchScore: 50,
		SalaryMatchScore:     50,
		LocationMatchScore:   50,
		ExperienceAnalysis:   msg,
		SalaryAnalysis:       msg,
		LocationAnalysis:     msg,
	}
	if errNote != "" {
		b.Cons = append(b.Cons, "Scoring error: "+errNote)
	}
	return b
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func joinMax(xs []string, max int) string {
	if len(xs) > max {
		xs = xs[:max]
	}
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ", "
		}
		out += x
	}
	return out
}
