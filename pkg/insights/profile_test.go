package insights

import (
	"strings"
	"testing"
)

func TestCleanText_StripsURLsAndEmails(t *testing.T) {
	got := CleanText("Reach me at joe@example.com or https://example.com/page  anytime!!")
	if strings.Contains(got, "@") || strings.Contains(got, "http") {
		t.Fatalf("CleanText left contact noise: %q", got)
	}
	if strings.Contains(got, "!!") {
		t.Fatalf("CleanText should collapse repeated punctuation: %q", got)
	}
}

func TestSplitSentences_FiltersShortAndNumeric(t *testing.T) {
	sentences := SplitSentences("Hi. I really like long walks on the beach. 12345. Me too.")
	if len(sentences) != 1 {
		t.Fatalf("expected exactly one meaningful sentence, got %v", sentences)
	}
	if !strings.Contains(sentences[0], "long walks") {
		t.Fatalf("kept the wrong sentence: %v", sentences)
	}
}

func TestScoreTraits_KeywordBuckets(t *testing.T) {
	text := "I am very social and outgoing, I love parties with friends and people around me."
	profile := BuildProfile(text, "")
	if profile.Traits.DominantTrait != "extraversion" {
		t.Fatalf("dominant trait = %q, want extraversion (scores %v)",
			profile.Traits.DominantTrait, profile.Traits.Scores)
	}
	if profile.Traits.Description == "" {
		t.Fatal("trait description should not be empty")
	}
}

func TestAnalyzePatterns_Enthusiasm(t *testing.T) {
	text := "I love this! So fun! Best day ever! What a ride! Amazing stuff here!"
	profile := BuildProfile(text, "")
	if profile.Patterns.EnthusiasmLevel != "high" {
		t.Fatalf("enthusiasm = %q, want high (%+v)", profile.Patterns.EnthusiasmLevel, profile.Patterns)
	}
}

func TestDominantStyle_Casual(t *testing.T) {
	text := "Yeah that was totally cool and awesome, um, like really great you know."
	profile := BuildProfile(text, "")
	if profile.DominantStyle != "casual" {
		t.Fatalf("dominant style = %q, want casual", profile.DominantStyle)
	}
}

func TestDominantStyle_NeutralWhenNoIndicators(t *testing.T) {
	profile := BuildProfile("The cat sat on the mat near the door today.", "")
	if profile.DominantStyle != "neutral" {
		t.Fatalf("dominant style = %q, want neutral", profile.DominantStyle)
	}
}

func TestScoreSentiment_Positive(t *testing.T) {
	text := "I love my work and enjoy every day, it is a great and happy life."
	profile := BuildProfile(text, "")
	if profile.Sentiment.Dominant != "positive" {
		t.Fatalf("sentiment = %+v, want positive dominant", profile.Sentiment)
	}
	if profile.Sentiment.PositiveRatio <= profile.Sentiment.NegativeRatio {
		t.Fatalf("positive ratio should exceed negative: %+v", profile.Sentiment)
	}
}

func TestBuildProfile_BioFactsMerged(t *testing.T) {
	bio := "Call me Dusty. I work as a mechanic."
	profile := BuildProfile("Some longer story about my life goes here today.", bio)
	if !containsAll(profile.Insights.Nicknames, "Dusty") {
		t.Fatalf("bio nicknames missing: %+v", profile.Insights)
	}
	if profile.Insights.Profession != "Mechanic" {
		t.Fatalf("profession = %q, want Mechanic", profile.Insights.Profession)
	}
	if profile.SentenceCount == 0 {
		t.Fatal("sentence count should include combined text")
	}
}

func TestCommonWords_StopwordsExcluded(t *testing.T) {
	text := "The garden is lovely. The garden needs water. The garden grows fast."
	profile := BuildProfile(text, "")
	for _, wc := range profile.Patterns.CommonWords {
		if wc.Word == "the" {
			t.Fatalf("stopword leaked into common words: %v", profile.Patterns.CommonWords)
		}
	}
	found := false
	for _, wc := range profile.Patterns.CommonWords {
		if wc.Word == "garden" && wc.Count == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected garden x3 in common words, got %v", profile.Patterns.CommonWords)
	}
}
