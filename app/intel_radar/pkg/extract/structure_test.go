package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

func TestStructure(t *testing.T) {
	page := &model.PageContent{
		Title:   "Glucora",
		Content: "Try Glucora today! Only $49.99 for a limited time. Save $20 with our money back guarantee. Buy now.",
		URL:     "https://glucora.test",
	}

	sc := Structure(page)

	assert.Equal(t, "Glucora", sc.Title)
	assert.Equal(t, "https://glucora.test", sc.URL)
	assert.Equal(t, 18, sc.WordCount)
	assert.Equal(t, []string{"$49.99", "$20", "money back guarantee", "Save $20"}, sc.PricingMentions)

	// "guarantee" 不等于触发词 "guaranteed"
	require.Len(t, sc.EmotionalTriggers, 1)
	assert.Equal(t, "limited time", sc.EmotionalTriggers[0].Trigger)
	assert.Contains(t, sc.EmotionalTriggers[0].Context, "Only $49.99 for a limited time.")

	assert.Equal(t, "try glucora today", sc.ContentSections["headline"])
	assert.Equal(t, "buy now", sc.ContentSections["call_to_action"])
	assert.Contains(t, sc.ContentSections["guarantee"], "guarantee")
}

func TestPricingMentions_CapsPerPattern(t *testing.T) {
	content := strings.Repeat("$5 ", 15)
	assert.Len(t, PricingMentions(content), 10)
}

func TestPricingMentions_Variants(t *testing.T) {
	got := PricingMentions("Free trial, 30% off, buy 2 get 1 free, was $99 now $49, €10 and £7.50, 100 dollars")
	assert.Contains(t, got, "Free trial")
	assert.Contains(t, got, "30% off")
	assert.Contains(t, got, "buy 2 get 1 free")
	assert.Contains(t, got, "was $99 now $49")
	assert.Contains(t, got, "€10")
	assert.Contains(t, got, "£7.50")
	assert.Contains(t, got, "100 dollars")
}

func TestEmotionalTriggers_Cap(t *testing.T) {
	content := strings.Join(TriggerWords, " ")
	got := EmotionalTriggers(content)
	assert.Len(t, got, 15)
	assert.Equal(t, "limited time", got[0].Trigger)
}

func TestEmotionalTriggers_ContextWindow(t *testing.T) {
	content := strings.Repeat("x", 80) + " secret " + strings.Repeat("y", 80)
	got := EmotionalTriggers(content)
	require.Len(t, got, 1)
	assert.Equal(t, strings.Repeat("x", 49)+" secret "+strings.Repeat("y", 49), got[0].Context)
}

func TestStructure_Nil(t *testing.T) {
	sc := Structure(nil)
	assert.Zero(t, sc.WordCount)
	assert.Empty(t, sc.PricingMentions)
	assert.Empty(t, sc.EmotionalTriggers)
}
