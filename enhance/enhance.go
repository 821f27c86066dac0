// Package enhance rewrites resume text to read more strongly.
package enhance

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf16"
)

// Field kinds understood by Heuristic. Any other kind is returned unchanged.
const (
	KindSummary     = "summary"
	KindDescription = "description"
	KindHighlights  = "highlights"
)

// Enhancer improves a text fragment of the given field kind and scores
// section content. Implementations may fail; callers write accepted results
// back through the document store.
type Enhancer interface {
	Enhance(ctx context.Context, text, kind string) (string, error)
	Feedback(ctx context.Context, section, content string) (Feedback, error)
}

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

func rule(word, with string) replacement {
	return replacement{pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word)), with: with}
}

var (
	summaryRules = []replacement{
		rule("experienced", "accomplished"),
		rule("good", "exceptional"),
		rule("worked on", "spearheaded"),
		rule("helped", "led"),
	}
	descriptionRules = []replacement{
		rule("responsible for", "led"),
		rule("worked with", "collaborated with"),
		rule("made", "created"),
		rule("improved", "optimized"),
	}

	actionVerbStart = regexp.MustCompile(`(?i)^(Led|Developed|Created|Managed|Implemented)`)
	improvedWord    = regexp.MustCompile(`(?i)improved`)
	percentage      = regexp.MustCompile(`(?i)by \d+%`)
	actionVerbs     = []string{"Spearheaded", "Orchestrated", "Pioneered", "Transformed", "Revitalized"}
)

const (
	summaryPadding     = " Skilled in cross-functional collaboration and delivering high-quality solutions in fast-paced environments."
	descriptionPadding = " Collaborated with cross-functional teams to deliver high-impact solutions that increased efficiency and user satisfaction."
	extraHighlight     = "Increased team productivity by 25% through implementation of streamlined workflows and enhanced collaboration tools"
)

// Heuristic is a deterministic rule-based Enhancer. Short texts are padded
// with a stock sentence; longer ones get weak phrases swapped for stronger ones.
type Heuristic struct{}

func (Heuristic) Enhance(ctx context.Context, text, kind string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	switch kind {
	case KindSummary:
		if textLength(text) < 100 {
			return text + summaryPadding, nil
		}
		return apply(text, summaryRules), nil
	case KindDescription:
		if textLength(text) < 50 {
			return text + descriptionPadding, nil
		}
		return apply(text, descriptionRules), nil
	case KindHighlights:
		return enhanceHighlights(text), nil
	default:
		return text, nil
	}
}

func apply(text string, rules []replacement) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.with)
	}
	return text
}

func enhanceHighlights(text string) string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			bullets = append(bullets, line)
		}
	}

	out := make([]string, 0, len(bullets)+1)
	for i, bullet := range bullets {
		if actionVerbStart.MatchString(bullet) {
			bullet = improvedWord.ReplaceAllString(bullet, "increased")
			out = append(out, percentage.ReplaceAllString(bullet, "by 35%"))
			continue
		}
		verb := actionVerbs[i%len(actionVerbs)]
		out = append(out, verb+" "+lowerFirst(bullet))
	}
	if len(bullets) < 3 {
		out = append(out, extraHighlight)
	}
	return strings.Join(out, "\n")
}

// textLength counts UTF-16 code units, the unit the thresholds were tuned in.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
