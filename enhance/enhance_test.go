package enhance

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristic_ShortSummaryIsPadded(t *testing.T) {
	out, err := Heuristic{}.Enhance(context.Background(), "Backend engineer.", KindSummary)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer."+summaryPadding, out)
}

func TestHeuristic_LongSummaryRewritesWords(t *testing.T) {
	text := "Experienced engineer who worked on payment systems and helped teams ship good software on time, every time, at scale."
	out, err := Heuristic{}.Enhance(context.Background(), text, KindSummary)
	require.NoError(t, err)
	assert.Equal(t, "accomplished engineer who spearheaded payment systems and led teams ship exceptional software on time, every time, at scale.", out)
}

func TestHeuristic_Description(t *testing.T) {
	out, err := Heuristic{}.Enhance(context.Background(), "Built APIs.", KindDescription)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Built APIs. Collaborated"))

	long := "Responsible for the billing platform; worked with finance and improved invoice latency considerably."
	out, err = Heuristic{}.Enhance(context.Background(), long, KindDescription)
	require.NoError(t, err)
	assert.Equal(t, "led the billing platform; collaborated with finance and optimized invoice latency considerably.", out)
}

func TestHeuristic_Highlights(t *testing.T) {
	text := "Led migration that improved uptime by 10%\n\nwrote docs"
	out, err := Heuristic{}.Enhance(context.Background(), text, KindHighlights)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Led migration that increased uptime by 35%", lines[0])
	assert.Equal(t, "Orchestrated wrote docs", lines[1])
	assert.Equal(t, extraHighlight, lines[2])
}

func TestHeuristic_HighlightsNoExtraWhenThreeOrMore(t *testing.T) {
	out, err := Heuristic{}.Enhance(context.Background(), "A\nB\nC", KindHighlights)
	require.NoError(t, err)
	assert.Equal(t, "Spearheaded a\nOrchestrated b\nPioneered c", out)
}

func TestHeuristic_PassThrough(t *testing.T) {
	out, err := Heuristic{}.Enhance(context.Background(), "Acme Corp", "company")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", out)

	out, err = Heuristic{}.Enhance(context.Background(), "   ", KindSummary)
	require.NoError(t, err)
	assert.Equal(t, "   ", out)
}

func TestHeuristic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Heuristic{}.Enhance(ctx, "text", KindSummary)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristic_ThresholdsCountCharactersNotBytes(t *testing.T) {
	// 60 characters but 120 bytes: still a short summary
	text := strings.Repeat("é", 60)
	out, err := Heuristic{}.Enhance(context.Background(), text, KindSummary)
	require.NoError(t, err)
	assert.Equal(t, text+summaryPadding, out)

	// 40 characters, 120 bytes: still a short description
	text = strings.Repeat("日本", 20)
	out, err = Heuristic{}.Enhance(context.Background(), text, KindDescription)
	require.NoError(t, err)
	assert.Equal(t, text+descriptionPadding, out)
}

func TestTextLength(t *testing.T) {
	assert.Equal(t, 5, textLength("hello"))
	assert.Equal(t, 2, textLength("éé"))
	assert.Equal(t, 2, textLength("🚀"))
}
