package domain

import "time"

// Profile is the single user's job-search profile. TargetRoles and
// PreferredLocations are stored as free text: either a JSON array or a
// comma-separated list (older rows); readers must accept both.
type Profile struct {
	UserID             string   `json:"userId"`
	TargetRoles        string   `json:"targetRoles"`
	PreferredLocations string   `json:"preferredLocations"`
	RemotePreference   string   `json:"remotePreference"` // remote | any | onsite
	SalaryMinTarget    *float64 `json:"salaryMinTarget,omitempty"`
	SalaryMaxTarget    *float64 `json:"salaryMaxTarget,omitempty"`
	SalaryCurrency     string   `json:"salaryCurrency,omitempty"`
}

type Skill struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"` // higher = more prominent in searches
}

// ExperienceRecord is one role on the profile. EndDate nil means ongoing.
type ExperienceRecord struct {
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}
