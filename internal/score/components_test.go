package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobmatch-engine/internal/domain"
)

func TestMatchSkillsSynonyms(t *testing.T) {
	// JS on the posting, JavaScript on the profile
	score, matched, missing := MatchSkills([]string{"JS"}, []string{"JavaScript"})
	assert.Equal(t, 100, score)
	assert.Equal(t, []string{"JS"}, matched)
	assert.Empty(t, missing)

	// and the other way round
	score, _, _ = MatchSkills([]string{"JavaScript"}, []string{"js"})
	assert.Equal(t, 100, score)

	score, _, _ = MatchSkills([]string{"k8s"}, []string{"Kubernetes"})
	assert.Equal(t, 100, score)
}

func TestMatchSkillsEmptyRequired(t *testing.T) {
	score, matched, missing := MatchSkills(nil, []string{"Go"})
	assert.Equal(t, 75, score)
	assert.Empty(t, matched)
	assert.Empty(t, missing)
}

func TestMatchSkillsSubstringAndTypo(t *testing.T) {
	// substring either direction
	score, _, _ := MatchSkills([]string{"React"}, []string{"React Native"})
	assert.Equal(t, 100, score)

	// small typo tolerated via edit distance
	score, _, _ = MatchSkills([]string{"PostgreSQL"}, []string{"PostgresSQL"})
	assert.Equal(t, 100, score)
}

func TestTotalExperienceYears(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []domain.ExperienceRecord{
		{StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &end}, // 24 months
		{StartDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},               // ongoing: 24 months
	}
	assert.InDelta(t, 4.0, TotalExperienceYears(records, now), 0.01)

	// zero start dates and inverted ranges contribute nothing
	badEnd := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	records = []domain.ExperienceRecord{
		{},
		{StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &badEnd},
	}
	assert.Zero(t, TotalExperienceYears(records, now))
}

func TestMatchExperienceBranches(t *testing.T) {
	score, _ := MatchExperience(5, nil, nil)
	assert.Equal(t, 80, score)

	// 2 years short of a 5-year minimum: 100 - 15*2 = 70
	score, analysis := MatchExperience(3, fp(5), nil)
	assert.Equal(t, 70, score)
	assert.Contains(t, analysis, "years short")

	// hugely short clamps at 0
	score, _ = MatchExperience(0, fp(10), nil)
	assert.Equal(t, 0, score)

	// 4 years over a 6-year maximum: 100 - 5*4 = 80
	score, analysis = MatchExperience(10, nil, fp(6))
	assert.Equal(t, 80, score)
	assert.Contains(t, analysis, "overqualified")

	// overshoot floors at 60
	score, _ = MatchExperience(30, nil, fp(5))
	assert.Equal(t, 60, score)

	score, _ = MatchExperience(4, fp(3), fp(8))
	assert.Equal(t, 100, score)
}

func TestMatchSalaryBranches(t *testing.T) {
	// job silent on salary
	score, analysis := MatchSalary(nil, nil, fp(90000), nil)
	assert.Equal(t, 70, score)
	assert.Contains(t, analysis, "does not disclose")

	// user has no target
	score, _ = MatchSalary(fp(50000), fp(70000), nil, nil)
	assert.Equal(t, 80, score)

	// job top 25% below user's minimum: 100 - 25 = 75
	score, _ = MatchSalary(nil, fp(75000), fp(100000), nil)
	assert.Equal(t, 75, score)

	// job floor above user's max target
	score, _ = MatchSalary(fp(150000), fp(180000), fp(90000), fp(120000))
	assert.Equal(t, 95, score)

	// overlap
	score, _ = MatchSalary(fp(80000), fp(110000), fp(90000), fp(120000))
	assert.Equal(t, 85, score)
}

func TestMatchLocationBranches(t *testing.T) {
	score, _ := MatchLocation("Berlin", bp(true), "remote", nil)
	assert.Equal(t, 100, score)

	score, _ = MatchLocation("Berlin", nil, "remote", nil)
	assert.Equal(t, 30, score)

	score, _ = MatchLocation("Berlin", nil, "any", nil)
	assert.Equal(t, 90, score)

	score, _ = MatchLocation("Berlin", nil, "onsite", nil)
	assert.Equal(t, 80, score)

	score, _ = MatchLocation("Berlin, Germany", nil, "onsite", []string{"berlin"})
	assert.Equal(t, 100, score)

	score, _ = MatchLocation("Tokyo, Japan", nil, "onsite", []string{"Berlin"})
	assert.Equal(t, 40, score)
}

func TestParseFlexibleList(t *testing.T) {
	p := ParseFlexibleList(`["Go"," Rust ",""]`)
	assert.Equal(t, FormatJSON, p.Format)
	assert.Equal(t, []string{"Go", "Rust"}, p.Values)

	p = ParseFlexibleList("Go, Rust, ,TypeScript")
	assert.Equal(t, FormatDelimited, p.Format)
	assert.Equal(t, []string{"Go", "Rust", "TypeScript"}, p.Values)

	p = ParseFlexibleList("   ")
	assert.Equal(t, FormatEmpty, p.Format)
	assert.Empty(t, p.Values)
}
