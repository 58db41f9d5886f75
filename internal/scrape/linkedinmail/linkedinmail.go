// Package linkedinmail scrapes LinkedIn job-alert emails over IMAP. Messages
// are fetched with BODY.PEEK[] so nothing gets marked read, and the alert HTML
// is parsed into normalized jobs keyed by the /jobs/view/<id> posting id.
package linkedinmail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/scrape/util"
)

const SourceName = "linkedinmail"

// PasswordFunc resolves the IMAP password at scrape time so the secret
// never sits in the config file.
type PasswordFunc func() (string, error)

type Config struct {
	Host        string
	Port        int
	Username    string
	Mailbox     string
	MaxMessages int
	Password    PasswordFunc
}

type Adapter struct {
	cfg Config
}

func New(cfg Config) *Adapter {
	if cfg.Port <= 0 {
		cfg.Port = 993
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string { return SourceName }

func (a *Adapter) TestConnection(ctx context.Context) bool {
	c, err := a.dial(ctx)
	if err != nil {
		return false
	}
	logoutAndClose(c)
	return true
}

func (a *Adapter) Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error) {
	c, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(a.cfg.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", a.cfg.Mailbox, err)
	}

	msgs, err := fetchRecent(ctx, c, a.cfg.MaxMessages)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []domain.NormalizedJob
	for _, m := range msgs {
		if !looksLikeJobAlert(m.From, m.Subject) {
			continue
		}
		html := htmlBody(m.Raw)
		if html == "" {
			continue
		}
		jobs, err := parseAlertHTML(html)
		if err != nil {
			log.Printf("[linkedinmail] parse uid=%d err=%v", m.UID, err)
			continue
		}
		for _, j := range jobs {
			if seen[j.ExternalID] {
				continue
			}
			seen[j.ExternalID] = true
			if !m.Date.IsZero() {
				d := m.Date.UTC()
				j.PostedDate = &d
			}
			if !util.MatchesAnyKeyword(cfg.Keywords, j.Title) {
				continue
			}
			out = append(out, j)
		}
	}
	return out, nil
}

func (a *Adapter) dial(ctx context.Context) (*imapclient.Client, error) {
	if a.cfg.Host == "" || a.cfg.Username == "" {
		return nil, errors.New("imap host and username are required")
	}
	if a.cfg.Password == nil {
		return nil, errors.New("imap password source is not configured")
	}
	password, err := a.cfg.Password()
	if err != nil {
		return nil, fmt.Errorf("imap password: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: a.cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(a.cfg.Username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

type message struct {
	UID     imap.UID
	From    string
	Subject string
	Date    time.Time
	Raw     []byte
}

// fetchRecent pulls up to max messages from the last month, newest first.
func fetchRecent(ctx context.Context, c *imapclient.Client, max int) ([]message, error) {
	cutoff := time.Now().AddDate(0, -1, 0)
	searchData, err := c.UIDSearch(&imap.SearchCriteria{Since: cutoff}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m message
		m.UID = buf.UID
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
			if len(buf.Envelope.From) > 0 {
				m.From = buf.Envelope.From[0].Addr()
			}
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.Raw = append([]byte(nil), b...)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[linkedinmail] imap logout: %v", err)
	}
	_ = c.Close()
}

func looksLikeJobAlert(from, subject string) bool {
	f := strings.ToLower(from)
	if strings.Contains(f, "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subject)
	return strings.Contains(f, "linkedin") && strings.Contains(s, "job")
}

// htmlBody digs the text/html part out of a raw RFC822 message,
// walking multipart boundaries as needed.
func htmlBody(raw []byte) string {
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return ""
	}
	return htmlFromPart(msg.Header.Get("Content-Type"), msg.Body)
}

func htmlFromPart(contentType string, body io.Reader) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return ""
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return ""
			}
			if got := htmlFromPart(part.Header.Get("Content-Type"), part); got != "" {
				return got
			}
		}
	}

	if mediaType != "text/html" {
		return ""
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	s := string(b)
	// quoted-printable soft breaks survive net/mail; undo the common ones
	s = strings.ReplaceAll(s, "=\r\n", "")
	s = strings.ReplaceAll(s, "=\n", "")
	s = strings.ReplaceAll(s, "=3D", "=")
	return s
}

var reJobID = regexp.MustCompile(`/jobs/view/(\d+)`)
var reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*year`)

// parseAlertHTML merges every anchor pointing at the same posting id so a
// logo-only anchor seen first doesn't shadow the titled one.
func parseAlertHTML(htmlStr string) ([]domain.NormalizedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.NormalizedJob{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		lh := strings.ToLower(href)
		if !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := unwrapRedirect(href)
		m := reJobID.FindStringSubmatch(jobURL)
		if len(m) != 2 {
			return
		}
		id := m[1]

		j, ok := byID[id]
		if !ok {
			j = &domain.NormalizedJob{
				ExternalID: id,
				Source:     SourceName,
				SourceURL:  "https://www.linkedin.com/jobs/view/" + id,
			}
			byID[id] = j
		}

		if t := util.CleanText(a.Text()); plausibleTitle(t) && len(t) > len(j.Title) {
			j.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Parent()
		}

		// "Company · Location" lives in a <p> near the anchor
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if j.Company == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = util.NormalizeLocation(parts[1])
			}
		})

		if j.SalaryCurrency == "" {
			if sal := reSalary.FindString(util.CleanText(card.Text())); sal != "" {
				if lo, hi, ok := parseSalaryRange(sal); ok {
					j.SalaryMin = &lo
					if hi > 0 {
						j.SalaryMax = &hi
					}
					j.SalaryCurrency = "USD"
				}
			}
		}
	})

	out := make([]domain.NormalizedJob, 0, len(byID))
	for _, j := range byID {
		if j.Title == "" {
			continue
		}
		if util.IsRemoteText(j.Location, j.Title) {
			remote := true
			j.IsRemote = &remote
		}
		out = append(out, *j)
	}
	return out, nil
}

func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	return href
}

func plausibleTitle(t string) bool {
	if len(t) < 4 || len(t) > 140 {
		return false
	}
	l := strings.ToLower(t)
	for _, bad := range []string{"unsubscribe", "view job", "see all", "apply", "http", "easy apply", "promoted"} {
		if strings.Contains(l, bad) {
			return false
		}
	}
	return true
}

// parseSalaryRange turns "$90K - $120K / year" into yearly floats.
func parseSalaryRange(s string) (lo, hi float64, ok bool) {
	nums := regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)\s*(K|M)?`).FindAllStringSubmatch(s, 2)
	if len(nums) == 0 {
		return 0, 0, false
	}
	parse := func(m []string) float64 {
		v := strings.ReplaceAll(m[1], ",", "")
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err != nil {
			return 0
		}
		switch m[2] {
		case "K":
			f *= 1_000
		case "M":
			f *= 1_000_000
		}
		return f
	}
	lo = parse(nums[0])
	if len(nums) > 1 {
		hi = parse(nums[1])
	}
	return lo, hi, lo > 0
}
