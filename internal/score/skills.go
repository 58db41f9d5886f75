package score

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// synonyms maps common shorthand to a canonical skill name so that "JS" on a
// job posting matches "JavaScript" on the profile and vice versa.
var synonyms = map[string]string{
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"golang":     "go",
	"k8s":        "kubernetes",
	"postgres":   "postgresql",
	"node":       "node.js",
	"nodejs":     "node.js",
	"reactjs":    "react",
	"react.js":   "react",
	"vuejs":      "vue",
	"vue.js":     "vue",
	"gcp":        "google cloud",
	"aws":        "amazon web services",
	"ml":         "machine learning",
	"ai":         "artificial intelligence",
	"ci/cd":      "cicd",
	"c sharp":    "c#",
	"dotnet":     ".net",
	"expressjs":  "express",
	"express.js": "express",
}

func normalizeSkill(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if canon, ok := synonyms[s]; ok {
		return canon
	}
	return s
}

// MatchSkills scores the job's required skills against the user's skill set.
// An empty requirement list scores 75 (benefit of the doubt). Otherwise the
// score is the matched fraction on a 0..100 scale, with matched and missing
// lists returned for explainability.
func MatchSkills(required, userSkills []string) (score int, matched, missing []string) {
	if len(required) == 0 {
		return 75, nil, nil
	}

	user := make([]string, 0, len(userSkills))
	for _, s := range userSkills {
		if n := normalizeSkill(s); n != "" {
			user = append(user, n)
		}
	}

	for _, req := range required {
		if userHasSkill(user, normalizeSkill(req)) {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}

	score = int(math.Round(100 * float64(len(matched)) / float64(len(required))))
	return score, matched, missing
}

// userHasSkill tests one normalized required skill against the normalized
// user set: exact, substring either direction, or edit distance <= 2.
// (Synonym folding already happened in normalizeSkill.)
func userHasSkill(user []string, req string) bool {
	if req == "" {
		return false
	}
	for _, u := range user {
		if u == req {
			return true
		}
		if strings.Contains(u, req) || strings.Contains(req, u) {
			return true
		}
		if levenshtein.ComputeDistance(u, req) <= 2 {
			return true
		}
	}
	return false
}
