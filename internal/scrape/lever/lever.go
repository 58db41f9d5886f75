// Package lever pulls postings from the public Lever API
// (api.lever.co/v0/postings/<slug>?mode=json).
package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape/util"
)

const SourceName = "lever"

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
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (a *Adapter) Name() string { return SourceName }

type posting struct {
	ID        string `json:"id"`
	Text      string `json:"text"` // title
	HostedURL string `json:"hostedUrl"`
	CreatedAt int64  `json:"createdAt"` // ms epoch

	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`

	SalaryRange *struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"salaryRange"`

	DescriptionPlain string `json:"descriptionPlain"`

	WorkplaceType string `json:"workplaceType"` // remote / hybrid / onsite
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if len(a.cfg.Companies) == 0 {
		return false
	}
	_, err := a.fetchCompany(ctx, a.cfg.Companies[0])
	return err == nil
}

func (a *Adapter) Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	const workers = 4

	companies := a.cfg.Companies
	jobsCh := make(chan []domain.NormalizedJob, len(companies))
	workCh := make(chan Company)
	errCount := 0
	var errMu sync.Mutex
	var lastErr error

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for co := range workCh {
				cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
				postings, err := a.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[lever] company=%q slug=%q err=%v", co.Name, co.Slug, err)
					errMu.Lock()
					errCount++
					lastErr = err
					errMu.Unlock()
					continue
				}

				var batch []domain.NormalizedJob
				for _, p := range postings {
					j := mapPosting(co, p)
					if !util.MatchesAnyKeyword(cfg.Keywords, j.Title, j.Description) {
						continue
					}
					batch = append(batch, j)
				}
				if len(batch) > 0 {
					jobsCh <- batch
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- co:
			}
		}
	}()

	wg.Wait()
	close(jobsCh)

	var out []domain.NormalizedJob
	for batch := range jobsCh {
		out = append(out, batch...)
	}

	if errCount == len(companies) && lastErr != nil {
		return nil, fmt.Errorf("all lever boards failed: %w", lastErr)
	}
	return out, nil
}

func (a *Adapter) fetchCompany(ctx context.Context, co Company) ([]posting, error) {
	apiURL := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", co.Slug)

	var postings []posting
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
		return json.Unmarshal(b, &postings)
	})
	return postings, err
}

func mapPosting(co Company, p posting) domain.NormalizedJob {
	j := domain.NormalizedJob{
		ExternalID:     co.Slug + ":" + p.ID,
		Source:         SourceName,
		SourceURL:      p.HostedURL,
		Title:          util.CleanText(p.Text),
		Company:        co.Name,
		Location:       util.NormalizeLocation(p.Categories.Location),
		Description:    util.CleanText(p.DescriptionPlain),
		EmploymentType: strings.ToLower(p.Categories.Commitment),
	}

	if p.CreatedAt > 0 {
		t := time.UnixMilli(p.CreatedAt).UTC()
		j.PostedDate = &t
	}

	if p.SalaryRange != nil && p.SalaryRange.Max > 0 {
		min, max := p.SalaryRange.Min, p.SalaryRange.Max
		j.SalaryMin = &min
		j.SalaryMax = &max
		j.SalaryCurrency = p.SalaryRange.Currency
	}

	if strings.EqualFold(p.WorkplaceType, "remote") || util.IsRemoteText(j.Location, j.Title) {
		remote := true
		j.IsRemote = &remote
	}
	return j
}
