package domain

// ScoreBreakdown is the explainable decomposition of a job's fit score for
// one user. All component scores are 0..100; OverallScore is the rounded
// weighted sum of the five components. Recomputation overwrites the persisted
// record keyed by (jobID, userID).
type ScoreBreakdown struct {
	OverallScore         int `json:"overallScore"`
	SemanticScore        int `json:"semanticScore"`
	SkillMatchScore      int `json:"skillMatchScore"`
	ExperienceMatchScore int `json:"experienceMatchScore"`
	SalaryMatchScore     int `json:"salaryMatchScore"`
	LocationMatchScore   int `json:"locationMatchScore"`

	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`

	ExperienceAnalysis string `json:"experienceAnalysis"`
	SalaryAnalysis     string `json:"salaryAnalysis"`
	LocationAnalysis   string `json:"locationAnalysis"`

	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}
