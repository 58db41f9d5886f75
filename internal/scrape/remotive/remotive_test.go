package remotive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalary(t *testing.T) {
	min, max, cur, ok := parseSalary("$60,000 - $80,000")
	require.True(t, ok)
	assert.Equal(t, 60000.0, min)
	assert.Equal(t, 80000.0, max)
	assert.Equal(t, "USD", cur)

	min, max, cur, ok = parseSalary("70k-90k USD")
	require.True(t, ok)
	assert.Equal(t, 70000.0, min)
	assert.Equal(t, 90000.0, max)
	assert.Equal(t, "USD", cur)

	min, _, cur, ok = parseSalary("€55,000")
	require.True(t, ok)
	assert.Equal(t, 55000.0, min)
	assert.Equal(t, "EUR", cur)

	_, _, _, ok = parseSalary("")
	assert.False(t, ok)

	// hourly-looking tiny numbers are refused
	_, _, _, ok = parseSalary("$25")
	assert.False(t, ok)

	_, _, _, ok = parseSalary("competitive")
	assert.False(t, ok)
}

func TestMapJob(t *testing.T) {
	j := mapJob(apiJob{
		ID:                        12345,
		URL:                       "https://remotive.com/remote-jobs/software-dev/backend-12345",
		Title:                     "Backend  Engineer",
		CompanyName:               "Acme",
		Category:                  "Software Development",
		Tags:                      []string{"go", "postgresql"},
		JobType:                   "full_time",
		PublicationDate:           "2025-05-20T09:30:00",
		CandidateRequiredLocation: "Europe",
		Salary:                    "$90,000 - $120,000",
	})

	assert.Equal(t, "12345", j.ExternalID)
	assert.Equal(t, SourceName, j.Source)
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, "full time", j.EmploymentType)
	require.NotNil(t, j.IsRemote)
	assert.True(t, *j.IsRemote)
	assert.JSONEq(t, `["go","postgresql"]`, j.SkillsRequired)
	require.NotNil(t, j.PostedDate)
	assert.Equal(t, 2025, j.PostedDate.Year())
	require.NotNil(t, j.SalaryMin)
	assert.Equal(t, 90000.0, *j.SalaryMin)
	require.NotNil(t, j.SalaryMax)
	assert.Equal(t, 120000.0, *j.SalaryMax)
	assert.Equal(t, "USD", j.SalaryCurrency)
}
