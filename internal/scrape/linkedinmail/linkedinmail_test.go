package linkedinmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertHTML = `
<html><body>
<table>
  <tr>
    <td><a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trk=alert"><img src="logo.png"></a></td>
    <td>
      <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trk=alert">Senior Backend Engineer</a>
      <p>Acme Corp · Berlin, Germany (Remote)</p>
      <p>$120,000 - $150,000 / year</p>
    </td>
  </tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/jobs/view/4098765432/">Platform Engineer</a>
    <p>Globex · Amsterdam, Netherlands</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/psettings/unsubscribe">Unsubscribe</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	jobs, err := parseAlertHTML(alertHTML)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	byID := map[string]int{}
	for i, j := range jobs {
		byID[j.ExternalID] = i
	}

	first := jobs[byID["4012345678"]]
	// the logo anchor and the titled anchor merged into one job
	assert.Equal(t, "Senior Backend Engineer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Contains(t, first.Location, "Berlin")
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4012345678", first.SourceURL)
	require.NotNil(t, first.IsRemote)
	assert.True(t, *first.IsRemote)
	require.NotNil(t, first.SalaryMin)
	assert.Equal(t, 120000.0, *first.SalaryMin)
	require.NotNil(t, first.SalaryMax)
	assert.Equal(t, 150000.0, *first.SalaryMax)
	assert.Equal(t, "USD", first.SalaryCurrency)

	second := jobs[byID["4098765432"]]
	assert.Equal(t, "Platform Engineer", second.Title)
	assert.Equal(t, "Globex", second.Company)
	assert.Nil(t, second.IsRemote)
}

func TestParseAlertHTMLDropsUntitledJobs(t *testing.T) {
	html := `<a href="https://www.linkedin.com/jobs/view/111/"><img src="x.png"></a>`
	jobs, err := parseAlertHTML(html)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestLooksLikeJobAlert(t *testing.T) {
	assert.True(t, looksLikeJobAlert("jobalerts-noreply@linkedin.com", "anything"))
	assert.True(t, looksLikeJobAlert("jobs-listings@linkedin.com", "30+ new jobs for you"))
	assert.False(t, looksLikeJobAlert("newsletter@linkedin.com", "Your weekly digest"))
	assert.False(t, looksLikeJobAlert("someone@example.com", "job offer"))
}

func TestParseSalaryRange(t *testing.T) {
	lo, hi, ok := parseSalaryRange("$90K - $120K / year")
	require.True(t, ok)
	assert.Equal(t, 90000.0, lo)
	assert.Equal(t, 120000.0, hi)

	lo, hi, ok = parseSalaryRange("$100,000 / year")
	require.True(t, ok)
	assert.Equal(t, 100000.0, lo)
	assert.Zero(t, hi)

	_, _, ok = parseSalaryRange("no numbers here")
	assert.False(t, ok)
}
