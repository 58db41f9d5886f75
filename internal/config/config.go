package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SourceCompany struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type BoardSource struct {
	Enabled   bool            `yaml:"enabled"`
	Companies []SourceCompany `yaml:"companies"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		MaxConcurrency   int     `yaml:"max_concurrency"`
		FailureThreshold int     `yaml:"failure_threshold"`
		BlockWindowHours int     `yaml:"block_window_hours"`
		RetryMaxAttempts int     `yaml:"retry_max_attempts"`
		RetryBaseDelayMS int     `yaml:"retry_base_delay_ms"`
		HostReqPerSec    float64 `yaml:"host_req_per_sec"`
		HostBurst        int     `yaml:"host_burst"`
	} `yaml:"scrape"`

	Schedule struct {
		Spec       string `yaml:"spec"` // robfig/cron spec, e.g. "@every 6h"
		UserID     string `yaml:"user_id"`
		ScoreLimit int    `yaml:"score_limit"`
	} `yaml:"schedule"`

	Sources struct {
		Greenhouse      BoardSource `yaml:"greenhouse"`
		Lever           BoardSource `yaml:"lever"`
		SmartRecruiters BoardSource `yaml:"smartrecruiters"`
		Remotive        struct {
			Enabled bool `yaml:"enabled"`
			Limit   int  `yaml:"limit"`
		} `yaml:"remotive"`
		LinkedInMail struct {
			Enabled     bool   `yaml:"enabled"`
			IMAPHost    string `yaml:"imap_host"`
			IMAPPort    int    `yaml:"imap_port"`
			Username    string `yaml:"username"`
			Mailbox     string `yaml:"mailbox"`
			MaxMessages int    `yaml:"max_messages"`
		} `yaml:"linkedin_mail"`
	} `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
