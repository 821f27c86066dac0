package enhance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Sections that Feedback can score.
const (
	SectionPersonal   = "personal"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionCustom     = "custom"
)

const (
	feedbackWeak  = "This content needs significant improvement. Consider adding more specifics and achievements."
	feedbackGood  = "Good content, but could be enhanced with more specific metrics and accomplishments."
	feedbackGreat = "Excellent content! It effectively communicates your experience and achievements."
)

// Feedback is a 60-100 score with a one-sentence verdict.
type Feedback struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

var (
	metric      = regexp.MustCompile(`\d`)
	strongStart = regexp.MustCompile(`(?im)^\s*(Led|Developed|Created|Managed|Implemented|Spearheaded|Orchestrated|Pioneered|Transformed|Revitalized|Built|Designed|Launched|Increased|Reduced)\b`)
)

// Feedback scores content by length, measurable results, strong opening
// verbs and the absence of weak phrases. The same input always gets the
// same score.
func (Heuristic) Feedback(ctx context.Context, section, content string) (Feedback, error) {
	if err := ctx.Err(); err != nil {
		return Feedback{}, err
	}
	switch section {
	case SectionPersonal, SectionExperience, SectionEducation, SectionSkills, SectionCustom:
	default:
		return Feedback{}, fmt.Errorf("unknown section %q", section)
	}

	score := 60
	if words := len(strings.Fields(content)); words > 0 {
		score += min(words, 60) / 4
		if metric.MatchString(content) {
			score += 10
		}
		if strongStart.MatchString(content) {
			score += 10
		}
		if !hasWeakPhrase(content) {
			score += 5
		}
	}
	score = min(score, 100)

	verdict := feedbackGreat
	switch {
	case score < 70:
		verdict = feedbackWeak
	case score < 85:
		verdict = feedbackGood
	}
	return Feedback{Score: score, Feedback: verdict}, nil
}

func hasWeakPhrase(content string) bool {
	for _, rules := range [][]replacement{summaryRules, descriptionRules} {
		for _, r := range rules {
			if r.pattern.MatchString(content) {
				return true
			}
		}
	}
	return false
}
