// Package smartrecruiters pulls postings from the SmartRecruiters public API
// (api.smartrecruiters.com/v1/companies/<slug>/postings), paginated.
package smartrecruiters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape/util"
)

const SourceName = "smartrecruiters"

const (
	pageSize = 100
	maxPages = 3 // plenty for a single company board
)

type Company struct {
	Slug string
	Name string
}

type Config struct {
	Companies []Company
	Retry     util.RetryPolicy
}

type Adapter struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Adapter {
	return &Adapter{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 25 * time.Second},
		limiter: limiter,
	}
}

func (a *Adapter) Name() string { return SourceName }

// The public API response is { "content": [...], "totalFound": N, ... };
// we defensively parse only what we need.
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
}

type posting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleasedDate string `json:"releasedDate"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
	Industry struct {
		Label string `json:"label"`
	} `json:"industry"`
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if len(a.cfg.Companies) == 0 {
		return false
	}
	_, err := a.fetchPage(ctx, a.cfg.Companies[0].Slug, 0)
	return err == nil
}

func (a *Adapter) Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	var out []domain.NormalizedJob
	var lastErr error
	boardsOK := 0

	for _, co := range a.cfg.Companies {
		jobs, err := a.scrapeCompany(ctx, co, cfg)
		if err != nil {
			log.Printf("[smartrecruiters] company=%q slug=%q err=%v", co.Name, co.Slug, err)
			lastErr = err
			continue
		}
		boardsOK++
		out = append(out, jobs...)
	}

	if boardsOK == 0 && lastErr != nil {
		return nil, fmt.Errorf("all smartrecruiters boards failed: %w", lastErr)
	}
	return out, nil
}

func (a *Adapter) scrapeCompany(ctx context.Context, co Company, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	var jobs []domain.NormalizedJob

	for page := 0; page < maxPages; page++ {
		resp, err := a.fetchPage(ctx, co.Slug, page*pageSize)
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Content {
			j := mapPosting(co, p)
			if !util.MatchesAnyKeyword(cfg.Keywords, j.Title) {
				continue
			}
			jobs = append(jobs, j)
		}

		if (page+1)*pageSize >= resp.TotalFound {
			break
		}
	}
	return jobs, nil
}

func (a *Adapter) fetchPage(ctx context.Context, slug string, offset int) (*postingsResponse, error) {
	apiURL := fmt.Sprintf("https://api.smartrecruiters.com/v1/companies/%s/postings?limit=%d&offset=%d",
		slug, pageSize, offset)

	var resp postingsResponse
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
	return &resp, nil
}

func mapPosting(co Company, p posting) domain.NormalizedJob {
	var locParts []string
	for _, s := range []string{p.Location.City, p.Location.Region, p.Location.Country} {
		if s = strings.TrimSpace(s); s != "" {
			locParts = append(locParts, s)
		}
	}

	j := domain.NormalizedJob{
		ExternalID:     co.Slug + ":" + p.ID,
		Source:         SourceName,
		SourceURL:      fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", co.Slug, p.ID),
		Title:          util.CleanText(p.Name),
		Company:        co.Name,
		Location:       strings.Join(locParts, ", "),
		EmploymentType: strings.ToLower(p.TypeOfEmployment.Label),
		Industry:       p.Industry.Label,
	}

	if p.Location.Remote || util.IsRemoteText(j.Location, j.Title) {
		remote := true
		j.IsRemote = &remote
	}

	if t, err := time.Parse(time.RFC3339, p.ReleasedDate); err == nil {
		j.PostedDate = &t
	}
	return j
}
