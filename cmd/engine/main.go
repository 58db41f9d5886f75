package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"jobmatch-engine/internal/config"
	"jobmatch-engine/internal/domain"
	"jobmatch-engine/internal/events"
	"jobmatch-engine/internal/health"
	"jobmatch-engine/internal/httpapi"
	"jobmatch-engine/internal/scrape"
	"jobmatch-engine/internal/scrape/greenhouse"
	"jobmatch-engine/internal/scrape/lever"
	"jobmatch-engine/internal/scrape/linkedinmail"
	"jobmatch-engine/internal/scrape/remotive"
	"jobmatch-engine/internal/scrape/smartrecruiters"
	"jobmatch-engine/internal/scrape/types"
	"jobmatch-engine/internal/scrape/util"
	"jobmatch-engine/internal/secrets"
	"jobmatch-engine/internal/store"
)

func main() {
	_ = godotenv.Load()

	dataDir := os.Getenv("JOBMATCH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// single-instance guard; a second engine on the same data dir would
	// fight over sqlite and the scheduler
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("[main] lock: %v", err)
	}
	if !locked {
		log.Fatalf("[main] another engine instance is already running in %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("[main] config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		raw, err := config.Load(userCfgPath)
		if err != nil {
			return raw, err
		}
		normalized, vr := config.NormalizeAndValidate(raw)
		for _, warn := range vr.Warnings {
			log.Printf("[config] %s", warn)
		}
		if !vr.OK() {
			return normalized, errors.New(vr.Errors[0])
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("[main] config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	st, err := store.Open(filepath.Join(dataDir, "jobmatch.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		log.Fatalf("[main] migrate: %v", err)
	}

	userID := cfg.Schedule.UserID
	seedProfile(st, userID)

	registry, disabled := buildRegistry(cfg, &cfgVal)
	tracker := health.New(registry.Sources(),
		cfg.Scrape.FailureThreshold,
		time.Duration(cfg.Scrape.BlockWindowHours)*time.Hour)
	for _, source := range disabled {
		_ = tracker.Disable(source)
	}

	hub := events.NewHub()
	orc := scrape.NewOrchestrator(st, registry, tracker, nil, hub, cfg.Scrape.MaxConcurrency)

	sched := cron.New()
	_, err = sched.AddFunc(cfg.Schedule.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		summary := orc.ScrapeAll(ctx, userID, nil, nil)
		log.Printf("[sched] scrape done sources_ok=%d sources_failed=%d jobs_new=%d jobs_updated=%d",
			summary.SourcesSucceeded, summary.SourcesFailed, summary.TotalJobsNew, summary.TotalJobsUpdated)

		scored, err := orc.ScoreNewJobs(ctx, userID, cfg.Schedule.ScoreLimit)
		if err != nil {
			log.Printf("[sched] scoring: %v", err)
			return
		}
		log.Printf("[sched] scored %d jobs", scored)
	})
	if err != nil {
		log.Fatalf("[main] schedule spec %q: %v", cfg.Schedule.Spec, err)
	}
	_, _ = sched.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		deleted, err := st.CleanupOldJobs(ctx)
		if err != nil {
			log.Printf("[sched] cleanup: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("[sched] cleaned up %d stale jobs", deleted)
		}
	})
	sched.Start()
	defer sched.Stop()

	var scrapeStatus atomic.Value
	scrapeStatus.Store(httpapi.ScrapeStatus{})

	mux := httpapi.NewMux(httpapi.Deps{
		Store:         st,
		Orc:           orc,
		Hub:           hub,
		CfgVal:        &cfgVal,
		ScrapeStatus:  &scrapeStatus,
		UserCfgPath:   userCfgPath,
		LoadCfg:       loadCfg,
		DefaultUserID: userID,
	})

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[main] engine listening on http://%s (data=%s)", addr, dataDir)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("[main] engine stopped")
}

// buildRegistry registers every known adapter; sources switched off in config
// are registered but reported back so the tracker can disable them, keeping
// them visible (and re-enableable) through the API.
func buildRegistry(cfg config.Config, cfgVal *atomic.Value) (*types.Registry, []string) {
	limiter := util.NewHostLimiter(cfg.Scrape.HostReqPerSec, cfg.Scrape.HostBurst)
	retry := util.RetryPolicy{
		MaxAttempts: cfg.Scrape.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.Scrape.RetryBaseDelayMS) * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}

	var ghCompanies []greenhouse.Company
	for _, c := range cfg.Sources.Greenhouse.Companies {
		ghCompanies = append(ghCompanies, greenhouse.Company{Slug: c.Slug, Name: c.Name})
	}
	var lvCompanies []lever.Company
	for _, c := range cfg.Sources.Lever.Companies {
		lvCompanies = append(lvCompanies, lever.Company{Slug: c.Slug, Name: c.Name})
	}
	var srCompanies []smartrecruiters.Company
	for _, c := range cfg.Sources.SmartRecruiters.Companies {
		srCompanies = append(srCompanies, smartrecruiters.Company{Slug: c.Slug, Name: c.Name})
	}

	reg := types.NewRegistry(
		greenhouse.New(greenhouse.Config{Companies: ghCompanies, Retry: retry}, limiter),
		lever.New(lever.Config{Companies: lvCompanies, Retry: retry}, limiter),
		smartrecruiters.New(smartrecruiters.Config{Companies: srCompanies, Retry: retry}, limiter),
		remotive.New(remotive.Config{
			Limit: cfg.Sources.Remotive.Limit,
			Retry: retry,
		}, limiter),
		linkedinmail.New(linkedinmail.Config{
			Host:        cfg.Sources.LinkedInMail.IMAPHost,
			Port:        cfg.Sources.LinkedInMail.IMAPPort,
			Username:    cfg.Sources.LinkedInMail.Username,
			Mailbox:     cfg.Sources.LinkedInMail.Mailbox,
			MaxMessages: cfg.Sources.LinkedInMail.MaxMessages,
			Password: func() (string, error) {
				// read the live config so an account change picks up the right secret
				cur := cfgVal.Load().(config.Config)
				return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cur))
			},
		}),
	)

	var disabled []string
	if !cfg.Sources.Greenhouse.Enabled {
		disabled = append(disabled, greenhouse.SourceName)
	}
	if !cfg.Sources.Lever.Enabled {
		disabled = append(disabled, lever.SourceName)
	}
	if !cfg.Sources.SmartRecruiters.Enabled {
		disabled = append(disabled, smartrecruiters.SourceName)
	}
	if !cfg.Sources.Remotive.Enabled {
		disabled = append(disabled, remotive.SourceName)
	}
	if !cfg.Sources.LinkedInMail.Enabled {
		disabled = append(disabled, linkedinmail.SourceName)
	}
	return reg, disabled
}

// seedProfile writes a minimal default profile on first run so scoring has
// something to work with before the user fills theirs in.
func seedProfile(st *store.Store, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := st.GetProfile(ctx, userID)
	if err == nil {
		return
	}
	if !errors.Is(err, store.ErrNoProfile) {
		log.Printf("[main] profile check: %v", err)
		return
	}

	p := domain.Profile{
		UserID:           userID,
		TargetRoles:      `["software engineer"]`,
		RemotePreference: "any",
	}
	if err := st.SaveProfile(ctx, p); err != nil {
		log.Printf("[main] profile seed: %v", err)
		return
	}
	log.Printf("[main] seeded default profile for user %q", userID)
}
