// Package greenhouse scrapes boards.greenhouse.io company boards. It is the
// reference HTML adapter: board page for links, job page hydration for
// location and description, keyword filtering against the search config.
package greenhouse

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape/util"
)

const SourceName = "greenhouse"

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
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

func (a *Adapter) TestConnection(ctx context.Context) bool {
	if len(a.cfg.Companies) == 0 {
		return false
	}
	doc, err := a.fetchDoc(ctx, boardURL(a.cfg.Companies[0].Slug))
	return err == nil && doc != nil
}

func (a *Adapter) Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	var out []domain.NormalizedJob
	var lastErr error
	boardsOK := 0

	for _, co := range a.cfg.Companies {
		jobs, err := a.scrapeCompany(ctx, co, cfg)
		if err != nil {
			// one board being down shouldn't sink the others
			lastErr = fmt.Errorf("board %s: %w", co.Slug, err)
			continue
		}
		boardsOK++
		out = append(out, jobs...)
	}

	if boardsOK == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (a *Adapter) scrapeCompany(ctx context.Context, co Company, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	doc, err := a.fetchDoc(ctx, boardURL(co.Slug))
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var jobs []domain.NormalizedJob

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = "https://boards.greenhouse.io" + href
		}
		low := strings.ToLower(abs)
		if !strings.Contains(low, "boards.greenhouse.io") || !strings.Contains(low, "/jobs/") {
			return
		}

		jobID := extractJobID(abs)
		if jobID == "" {
			return
		}
		externalID := co.Slug + ":" + jobID
		if seen[externalID] {
			return
		}
		seen[externalID] = true

		title := util.CleanText(sel.Text())
		if looksLikeJunkTitle(title) {
			// the job page carries the real title; hydrate fills it in
			title = ""
		}

		jobs = append(jobs, domain.NormalizedJob{
			ExternalID: externalID,
			Source:     SourceName,
			SourceURL:  abs,
			Title:      title,
			Company:    co.Name,
		})
	})

	var kept []domain.NormalizedJob
	for i := range jobs {
		if err := a.hydrate(ctx, &jobs[i]); err != nil {
			// keep the minimal entry; hydration is best effort
			if ctx.Err() != nil {
				return kept, ctx.Err()
			}
		}
		if !util.MatchesAnyKeyword(cfg.Keywords, jobs[i].Title, jobs[i].Description) {
			continue
		}
		kept = append(kept, jobs[i])

		// don't hammer the board between job pages
		time.Sleep(time.Duration(100+rand.Intn(250)) * time.Millisecond)
	}
	return kept, nil
}

func (a *Adapter) hydrate(ctx context.Context, j *domain.NormalizedJob) error {
	doc, err := a.fetchDoc(ctx, j.SourceURL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		j.Title = util.CleanText(doc.Find("h1").First().Text())
	}

	loc := util.CleanText(doc.Find(".location").First().Text())
	if loc == "" {
		loc = util.CleanText(doc.Find("[data-testid='job-location']").First().Text())
	}
	if loc != "" {
		j.Location = util.NormalizeLocation(loc)
	}

	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		j.Description = util.CleanText(sel.Text())
	}

	if util.IsRemoteText(j.Location, j.Title) {
		remote := true
		j.IsRemote = &remote
	}
	return nil
}

func (a *Adapter) fetchDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := a.cfg.Retry.Do(ctx, func() error {
		if a.limiter != nil {
			if err := a.limiter.WaitURL(ctx, rawURL); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
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

		doc, err = goquery.NewDocumentFromReader(res.Body)
		return err
	})
	return doc, err
}

func boardURL(slug string) string {
	return fmt.Sprintf("https://boards.greenhouse.io/%s", slug)
}

func extractJobID(u string) string {
	// crude but effective: take the digits right after /jobs/
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r >= '0' && r <= '9' {
			id += string(r)
		} else {
			break
		}
	}
	return id
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view") || strings.Contains(l, "apply")
}
