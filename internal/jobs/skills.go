package jobs

import (
	"fmt"
	"math"
	"strings"
)

// DefaultSkill is searched when the query names no skills.
const DefaultSkill = "software engineer"

// InternshipKeywords mark a posting as an internship or entry level role.
var InternshipKeywords = []string{
	"intern", "internship", "co-op", "coop", "trainee", "apprentice",
	"entry level", "junior", "graduate", "student", "summer intern",
}

// SeniorWords mark a posting title as too senior.
var SeniorWords = []string{"senior", "lead", "principal", "manager", "director"}

// ParseSkills splits a comma separated query into trimmed skills.
func ParseSkills(query string) []string {
	var skills []string
	for _, part := range strings.Split(query, ",") {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return []string{DefaultSkill}
	}
	return skills
}

// SearchTerms builds "<skill> internship" terms for the first limit skills.
func SearchTerms(skills []string, limit int) []string {
	if limit > 0 && len(skills) > limit {
		skills = skills[:limit]
	}
	terms := make([]string, 0, len(skills))
	for _, skill := range skills {
		terms = append(terms, fmt.Sprintf("%s internship", skill))
	}
	return terms
}

// IsInternship reports whether any internship keyword is in the title or
// description.
func IsInternship(title, description string) bool {
	return containsAny(strings.ToLower(title), InternshipKeywords) ||
		containsAny(strings.ToLower(description), InternshipKeywords)
}

// IsSenior reports whether the title names a senior position.
func IsSenior(title string) bool {
	return containsAny(strings.ToLower(title), SeniorWords)
}

// Relevance scores a posting against the user's skills on a 0-10 scale.
func Relevance(p *Posting, skills []string) float64 {
	title := strings.ToLower(p.Title)
	text := strings.Join([]string{title, strings.ToLower(p.Description), strings.ToLower(p.Company)}, " ")

	var matches, titleMatches float64
	for _, skill := range skills {
		skill = strings.ToLower(skill)
		if strings.Contains(text, skill) {
			matches++
		}
		if strings.Contains(title, skill) {
			titleMatches++
		}
	}

	score := matches / math.Max(float64(len(skills)), 1) * 10
	score += titleMatches
	if containsAny(title, InternshipKeywords) {
		score += 0.5
	}

	return math.Round(math.Min(10, score)*100) / 100
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
