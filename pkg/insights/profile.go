package insights

import (
	"regexp"
	"sort"
	"strings"
)

// TextProfile bundles everything learned from one text submission: the
// structured bio facts plus the looser style/personality signals used to
// flavor generated replies.
type TextProfile struct {
	Insights      Insights       `json:"insights"`
	Traits        TraitProfile   `json:"traits"`
	Patterns      SpeechPatterns `json:"patterns"`
	DominantStyle string         `json:"dominant_style"`
	Sentiment     Sentiment      `json:"sentiment"`
	SentenceCount int            `json:"sentence_count"`
}

// TraitProfile scores the five keyword buckets and names the strongest one.
type TraitProfile struct {
	Scores        map[string]float64 `json:"scores"`
	DominantTrait string             `json:"dominant_trait"`
	Description   string             `json:"description"`
}

// SpeechPatterns captures sentence-level habits of the writer.
type SpeechPatterns struct {
	AvgSentenceLength  float64     `json:"avg_sentence_length"`
	LengthCategory     string      `json:"length_category"`
	ExclamationFreq    float64     `json:"exclamation_frequency"`
	QuestionFreq       float64     `json:"question_frequency"`
	EnthusiasmLevel    string      `json:"enthusiasm_level"`
	CommunicationStyle string      `json:"communication_style"`
	CommonWords        []WordCount `json:"common_words"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Sentiment is a crude positive/negative word-list ratio. It stands in for
// the model-backed scoring the hosted deployment uses.
type Sentiment struct {
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
	Dominant      string  `json:"dominant"`
}

var traitIndicators = map[string][]string{
	"extraversion":      {"party", "social", "outgoing", "talkative", "energetic", "people", "friends"},
	"agreeableness":     {"kind", "helpful", "caring", "empathy", "understanding", "support", "love"},
	"conscientiousness": {"organized", "responsible", "reliable", "planned", "careful", "detail"},
	"neuroticism":       {"worry", "stress", "anxious", "nervous", "upset", "emotional", "sensitive"},
	"openness":          {"creative", "curious", "imagination", "artistic", "innovative", "explore", "new"},
}

var styleIndicators = map[string][]string{
	"formal":     {"therefore", "however", "furthermore", "consequently", "nevertheless"},
	"casual":     {"yeah", "ok", "cool", "awesome", "totally", "like", "um"},
	"emotional":  {"feel", "heart", "love", "hate", "amazing", "terrible", "wonderful"},
	"analytical": {"think", "consider", "analyze", "reason", "logic", "because", "since"},
}

var positiveWords = []string{"love", "great", "happy", "wonderful", "amazing", "enjoy", "proud", "best", "good", "excited"}
var negativeWords = []string{"hate", "sad", "terrible", "awful", "angry", "worst", "bad", "worried", "lost", "hard"}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"at": {}, "for": {}, "with": {}, "by": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"be": {}, "been": {}, "i": {}, "my": {}, "me": {}, "we": {}, "our": {}, "you": {},
	"your": {}, "it": {}, "its": {}, "that": {}, "this": {}, "as": {}, "but": {}, "or": {},
	"have": {}, "has": {}, "had": {}, "not": {}, "so": {}, "do": {}, "did": {},
}

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	urlPattern      = regexp.MustCompile(`http[s]?://\S+`)
	emailPattern    = regexp.MustCompile(`\S+@\S+`)
	ellipsisRun     = regexp.MustCompile(`[.]{3,}`)
	exclamationRun  = regexp.MustCompile(`[!]{2,}`)
	questionRun     = regexp.MustCompile(`[?]{2,}`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
	wordPattern     = regexp.MustCompile(`[a-z']+`)
)

// CleanText normalizes raw submission text: collapses whitespace, strips
// URLs and email addresses, and tames runs of punctuation.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = ellipsisRun.ReplaceAllString(text, "...")
	text = exclamationRun.ReplaceAllString(text, "!")
	text = questionRun.ReplaceAllString(text, "?")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSentences breaks cleaned text into sentences, keeping only the ones
// meaningful enough to analyze (three or more words, not digits-only).
// Terminal punctuation stays attached so later passes can count it.
func SplitSentences(text string) []string {
	parts := sentencePattern.FindAllString(text, -1)
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(strings.Fields(part)) < 3 {
			continue
		}
		if isDigitsOnly(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func isDigitsOnly(sentence string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '!', '?':
			return -1
		}
		return r
	}, sentence)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BuildProfile runs the full analysis over a text submission. bioText may be
// empty; when present its extracted facts are merged into the profile and
// the bio is prepended for the style passes, mirroring the ingestion flow.
func BuildProfile(rawText, bioText string) TextProfile {
	combined := rawText
	factSource := bioText
	if strings.TrimSpace(bioText) != "" {
		combined = bioText + "\n\n" + rawText
	} else {
		factSource = rawText
	}

	cleaned := CleanText(combined)
	sentences := SplitSentences(cleaned)

	return TextProfile{
		Insights:      Extract(factSource),
		Traits:        scoreTraits(sentences),
		Patterns:      analyzePatterns(sentences),
		DominantStyle: dominantStyle(sentences),
		Sentiment:     scoreSentiment(sentences),
		SentenceCount: len(sentences),
	}
}

func scoreTraits(sentences []string) TraitProfile {
	sample := sentences
	if len(sample) > 50 {
		sample = sample[:50]
	}
	text := strings.ToLower(strings.Join(sample, " "))

	scores := make(map[string]float64, len(traitIndicators))
	for trait, indicators := range traitIndicators {
		hits := 0
		for _, word := range indicators {
			if strings.Contains(text, word) {
				hits++
			}
		}
		score := float64(hits) / float64(len(indicators))
		if score > 1 {
			score = 1
		}
		scores[trait] = score
	}

	dominant := dominantKey(scores)
	return TraitProfile{
		Scores:        scores,
		DominantTrait: dominant,
		Description:   traitDescription(dominant, scores[dominant]),
	}
}

func traitDescription(trait string, score float64) string {
	strength := "moderate"
	if score > 0.6 {
		strength = "high"
	}
	switch trait {
	case "extraversion":
		return "Shows " + strength + " social energy and outgoing nature"
	case "agreeableness":
		return "Demonstrates " + strength + " kindness and cooperation"
	case "conscientiousness":
		return "Displays " + strength + " organization and responsibility"
	case "neuroticism":
		return "Shows " + strength + " emotional sensitivity"
	case "openness":
		return "Exhibits " + strength + " creativity and curiosity"
	}
	return "Balanced personality traits"
}

func analyzePatterns(sentences []string) SpeechPatterns {
	if len(sentences) == 0 {
		return SpeechPatterns{LengthCategory: "medium", EnthusiasmLevel: "normal", CommunicationStyle: "balanced"}
	}

	totalWords := 0
	for _, s := range sentences {
		totalWords += len(strings.Fields(s))
	}
	avg := float64(totalWords) / float64(len(sentences))

	joined := strings.Join(sentences, " ")
	exclamations := strings.Count(joined, "!")
	questions := strings.Count(joined, "?")

	category := "medium"
	switch {
	case avg < 10:
		category = "short"
	case avg >= 20:
		category = "long"
	}

	enthusiasm := "normal"
	if float64(exclamations) > float64(len(sentences))*0.1 {
		enthusiasm = "high"
	}

	return SpeechPatterns{
		AvgSentenceLength:  avg,
		LengthCategory:     category,
		ExclamationFreq:    float64(exclamations) / float64(len(sentences)),
		QuestionFreq:       float64(questions) / float64(len(sentences)),
		EnthusiasmLevel:    enthusiasm,
		CommunicationStyle: communicationStyle(avg, exclamations, questions),
		CommonWords:        commonWords(sentences, 10),
	}
}

func communicationStyle(avgLength float64, exclamations, questions int) string {
	switch {
	case avgLength < 8 && exclamations > questions:
		return "energetic_brief"
	case avgLength > 15 && questions > exclamations:
		return "thoughtful_detailed"
	case exclamations > 5:
		return "enthusiastic"
	case questions > 5:
		return "inquisitive"
	default:
		return "balanced"
	}
}

func commonWords(sentences []string, limit int) []WordCount {
	sample := sentences
	if len(sample) > 20 {
		sample = sample[:20]
	}
	counts := map[string]int{}
	for _, s := range sample {
		for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
			if len(w) < 3 {
				continue
			}
			if _, skip := stopwords[w]; skip {
				continue
			}
			counts[w]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dominantStyle(sentences []string) string {
	text := strings.ToLower(strings.Join(sentences, " "))
	scores := map[string]float64{}
	any := false
	for style, indicators := range styleIndicators {
		hits := 0
		for _, word := range indicators {
			if strings.Contains(text, word) {
				hits++
			}
		}
		if hits > 0 {
			any = true
		}
		scores[style] = float64(hits)
	}
	if !any {
		return "neutral"
	}
	return dominantKey(scores)
}

func scoreSentiment(sentences []string) Sentiment {
	if len(sentences) == 0 {
		return Sentiment{Dominant: "neutral"}
	}
	text := strings.ToLower(strings.Join(sentences, " "))

	pos := 0
	for _, w := range positiveWords {
		pos += strings.Count(text, w)
	}
	neg := 0
	for _, w := range negativeWords {
		neg += strings.Count(text, w)
	}

	total := pos + neg
	if total == 0 {
		return Sentiment{Dominant: "neutral"}
	}

	s := Sentiment{
		PositiveRatio: float64(pos) / float64(total),
		NegativeRatio: float64(neg) / float64(total),
	}
	switch {
	case pos > neg:
		s.Dominant = "positive"
	case neg > pos:
		s.Dominant = "negative"
	default:
		s.Dominant = "neutral"
	}
	return s
}

// dominantKey picks the highest-scoring key, breaking ties alphabetically so
// the result is stable.
func dominantKey(scores map[string]float64) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := ""
	bestScore := -1.0
	for _, k := range keys {
		if scores[k] > bestScore {
			best = k
			bestScore = scores[k]
		}
	}
	return best
}
