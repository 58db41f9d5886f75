// Package remotive queries the Remotive remote-jobs API
// (remotive.com/api/remote-jobs). Every posting it returns is remote by
// definition; salary comes as free text and is parsed best effort.
package remotive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape/util"
)

const SourceName = "remotive"

const maxSearchTerms = 3

type Config struct {
	Limit int
	Retry util.RetryPolicy
}

type Adapter struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Adapter {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	return &Adapter{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (a *Adapter) Name() string { return SourceName }

type apiResponse struct {
	Jobs []apiJob `json:"jobs"`
}

type apiJob struct {
	ID                       int64    `json:"id"`
	URL                      string   `json:"url"`
	Title                    string   `json:"title"`
	CompanyName              string   `json:"company_name"`
	CompanyLogo              string   `json:"company_logo"`
	Category                 string   `json:"category"`
	Tags                     []string `json:"tags"`
	JobType                  string   `json:"job_type"`
	PublicationDate          string   `json:"publication_date"`
	CandidateRequiredLocation string  `json:"candidate_required_location"`
	Salary                   string   `json:"salary"`
	Description              string   `json:"description"`
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	_, err := a.search(ctx, "engineer", 1)
	return err == nil
}

// Scrape runs one search per keyword (capped) and dedupes by posting id.
func (a *Adapter) Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	terms := cfg.Keywords
	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}

	seen := map[int64]bool{}
	var out []domain.NormalizedJob
	var lastErr error
	searchesOK := 0

	for _, term := range terms {
		jobs, err := a.search(ctx, term, a.cfg.Limit)
		if err != nil {
			lastErr = err
			continue
		}
		searchesOK++
		for _, j := range jobs {
			if seen[j.ID] {
				continue
			}
			seen[j.ID] = true
			out = append(out, mapJob(j))
		}
	}

	if searchesOK == 0 && lastErr != nil {
		return nil, fmt.Errorf("remotive search failed: %w", lastErr)
	}
	return out, nil
}

func (a *Adapter) search(ctx context.Context, term string, limit int) ([]apiJob, error) {
	apiURL := fmt.Sprintf("https://remotive.com/api/remote-jobs?search=%s&limit=%d",
		url.QueryEscape(term), limit)

	var resp apiResponse
	err := a.cfg.Retry.Do(ctx, func() error {
		if a.limiter != nil {
			if err := a.limiter.WaitURL(ctx, apiURL); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "JobMatch/1.0 (+local)")

		res, err := a.hc.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 400 {
			return &util.StatusErr{
				Status:     res.StatusCode,
				RetryAfter: util.ParseRetryAfter(res.Header.Get("Retry-After")),
			}
		}

		b, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

func mapJob(in apiJob) domain.NormalizedJob {
	remote := true
	j := domain.NormalizedJob{
		ExternalID:     strconv.FormatInt(in.ID, 10),
		Source:         SourceName,
		SourceURL:      in.URL,
		Title:          util.CleanText(in.Title),
		Company:        util.CleanText(in.CompanyName),
		Location:       util.NormalizeLocation(in.CandidateRequiredLocation),
		IsRemote:       &remote,
		Description:    util.CleanText(in.Description),
		EmploymentType: strings.ReplaceAll(in.JobType, "_", " "),
		CompanyLogoURL: in.CompanyLogo,
		Industry:       in.Category,
	}

	if len(in.Tags) > 0 {
		b, _ := json.Marshal(in.Tags)
		j.SkillsRequired = string(b)
	}

	if t, err := time.Parse("2006-01-02T15:04:05", in.PublicationDate); err == nil {
		t = t.UTC()
		j.PostedDate = &t
	}

	if min, max, cur, ok := parseSalary(in.Salary); ok {
		j.SalaryMin = &min
		if max > 0 {
			j.SalaryMax = &max
		}
		j.SalaryCurrency = cur
	}
	return j
}

var salaryRe = regexp.MustCompile(`(?i)([$€£]?)\s*([\d][\d,.]*)\s*k?(?:\s*[-–to]+\s*([$€£]?)\s*([\d][\d,.]*)\s*k?)?`)

// parseSalary reads strings like "$60,000 - $80,000", "70k-90k USD" or
// "100000". It refuses tiny numbers (hourly rates etc.) rather than guess.
func parseSalary(s string) (min, max float64, currency string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, "", false
	}

	m := salaryRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, "", false
	}

	parse := func(num string) float64 {
		num = strings.ReplaceAll(num, ",", "")
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		return v
	}

	min = parse(m[2])
	if m[4] != "" {
		max = parse(m[4])
	}
	// "70k" style
	lower := strings.ToLower(s)
	if strings.Contains(lower, "k") && min < 1000 {
		min *= 1000
		max *= 1000
	}
	if min < 1000 {
		return 0, 0, "", false
	}

	switch {
	case strings.Contains(s, "€"):
		currency = "EUR"
	case strings.Contains(s, "£"):
		currency = "GBP"
	case strings.Contains(s, "$") || strings.Contains(lower, "usd"):
		currency = "USD"
	}
	return min, max, currency, true
}
