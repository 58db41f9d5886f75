package domain

import "time"

// NormalizedJob is the canonical job schema every adapter maps its
// source-specific payload into. (Source, ExternalID) is the natural key:
// a re-scrape of the same posting updates the stored row, never duplicates it.
type NormalizedJob struct {
	ExternalID     string     `json:"externalId"`
	Source         string     `json:"source"`
	SourceURL      string     `json:"sourceUrl"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location,omitempty"`
	IsRemote       *bool      `json:"isRemote,omitempty"`
	Description    string     `json:"description,omitempty"`
	Requirements   string     `json:"requirements,omitempty"`
	SkillsRequired string     `json:"skillsRequired,omitempty"` // JSON array, or comma-separated free text
	SalaryMin      *float64   `json:"salaryMin,omitempty"`
	SalaryMax      *float64   `json:"salaryMax,omitempty"`
	SalaryCurrency string     `json:"salaryCurrency,omitempty"`
	ExperienceMin  *float64   `json:"experienceMin,omitempty"`
	ExperienceMax  *float64   `json:"experienceMax,omitempty"`
	EmploymentType string     `json:"employmentType,omitempty"`
	PostedDate     *time.Time `json:"postedDate,omitempty"`
	CompanyLogoURL string     `json:"companyLogoUrl,omitempty"`
	Industry       string     `json:"industry,omitempty"`
	CompanySize    string     `json:"companySize,omitempty"`
}
