package insights

import (
	"regexp"
	"strings"
)

// A captureRule pairs one pattern with a transform that turns its submatches
// into zero or more fact strings. Rules for a category run in declaration
// order. Union categories (nicknames, family, locations, hobbies) keep every
// rule's output; the profession category stops at the first rule that
// produces anything.
type captureRule struct {
	re        *regexp.Regexp
	transform func(groups []string) []string
}

var nicknameRules = []captureRule{
	{regexp.MustCompile(`call me ([a-z]+)`), titleFirst},
	{regexp.MustCompile(`nickname is ([a-z]+)`), titleFirst},
	{regexp.MustCompile(`known as ([a-z]+)`), titleFirst},
	{regexp.MustCompile(`goes by ([a-z]+)`), titleFirst},
	{regexp.MustCompile(`called ([a-z]+)`), titleFirst},
}

var familyRules = []captureRule{
	{
		regexp.MustCompile(`(?:my|his|her|their)\s+(mom|mother|dad|father|brother|sister|son|daughter|wife|husband|partner)\s+(?:is|was|named?)\s+([a-z]+)`),
		func(groups []string) []string {
			return []string{groups[1] + ": " + titleCase(groups[2])}
		},
	},
	{
		regexp.MustCompile(`(mom|mother|dad|father|brother|sister|son|daughter|wife|husband|partner)(?:'s)?\s+name\s+is\s+([a-z]+)`),
		func(groups []string) []string {
			return []string{groups[1] + ": " + titleCase(groups[2])}
		},
	},
	{
		regexp.MustCompile(`(?:kids?|children)\s+(?:are|named?|called?)\s+([a-z\s,&]+)`),
		func(groups []string) []string {
			var out []string
			for _, name := range splitNameList(groups[1]) {
				out = append(out, "child: "+titleCase(name))
			}
			return out
		},
	},
}

var professionRules = []captureRule{
	{
		regexp.MustCompile(`(?:work|job|profession|career|occupation)\s+(?:as|is)\s+(?:a\s+)?([a-z\s]+)`),
		func(groups []string) []string {
			if role := trimRolePhrase(groups[1]); role != "" {
				return []string{titleCase(role)}
			}
			return nil
		},
	},
	{
		regexp.MustCompile(`(?:is|was)\s+(?:a\s+)?([a-z]+)\s+(?:by|for)\s+profession`),
		titleFirst,
	},
	{
		regexp.MustCompile(`\b(barber|teacher|doctor|nurse|engineer|lawyer|chef|mechanic|artist|musician|writer|programmer|manager|director|sales|marketing|retail|construction|plumber|electrician|accountant|dentist|veterinarian)\b`),
		titleFirst,
	},
}

var locationRules = []captureRule{
	{
		regexp.MustCompile(`(?:from|lives?|lived|grew up|born)\s+(?:in\s+)?([a-z\s]+)(?:,|\.|$)`),
		titledPlace,
	},
	{
		regexp.MustCompile(`(?:city|town|state|country)\s+(?:is|was)\s+([a-z\s]+)`),
		titledPlace,
	},
}

// Closed adjective vocabulary. Any entry appearing anywhere in the
// lower-cased text is reported; this is a substring test, not a parse.
var personalityVocabulary = []string{
	"funny", "kind", "caring", "loving", "smart", "creative", "artistic", "musical",
	"athletic", "outgoing", "shy", "quiet", "loud", "energetic", "calm", "patient",
	"stubborn", "generous", "helpful", "organized", "messy", "punctual", "late",
	"optimistic", "pessimistic", "cheerful", "serious", "playful", "responsible",
}

var hobbyRules = []captureRule{
	{
		regexp.MustCompile(`(?:hobby|hobbies|likes?|loves?|enjoys?|interests?)\s+(?:are|is|include|including)?\s*([a-z\s,&]+)`),
		hobbyList,
	},
	{
		regexp.MustCompile(`(?:plays?|playing)\s+([a-z\s]+)`),
		hobbyList,
	},
	{
		regexp.MustCompile(`(?:watches?|watching|reads?|reading|listens? to|listening to)\s+([a-z\s]+)`),
		hobbyList,
	},
}

// Fact rules run against the original text so captured fragments keep the
// casing the author wrote.
var factRules = []captureRule{
	{regexp.MustCompile(`(\d+)\s+(?:years? old|kids?|children)`), rawFirst},
	{regexp.MustCompile(`(?:born|started|married|graduated)\s+(?:in\s+)?(\d{4})`), rawFirst},
	{regexp.MustCompile(`(has\s+\d+\s+[a-zA-Z]+)`), rawFirst},
	{regexp.MustCompile(`(moved\s+to\s+[a-zA-Z\s]+)`), rawFirst},
	{regexp.MustCompile(`(studied\s+[a-zA-Z\s]+)`), rawFirst},
}

// Extract parses biographical free text into structured facts. It is a pure
// function: empty or unrecognizable input yields a zero-valued Insights,
// never an error.
func Extract(bioText string) Insights {
	var in Insights
	if strings.TrimSpace(bioText) == "" {
		return in
	}

	lower := strings.ToLower(bioText)

	in.Nicknames = applyUnion(nicknameRules, lower)
	in.FamilyMembers = applyUnion(familyRules, lower)
	in.Profession = applyFirst(professionRules, lower)
	in.Locations = applyUnion(locationRules, lower)

	for _, word := range personalityVocabulary {
		if strings.Contains(lower, word) {
			in.PersonalityDescriptors = append(in.PersonalityDescriptors, titleCase(word))
		}
	}

	in.HobbiesInterests = applyUnion(hobbyRules, lower)
	in.ImportantFacts = applyUnion(factRules, bioText)

	return in
}

// applyUnion runs every rule and unions all of their outputs, deduplicated
// in first-seen order.
func applyUnion(rules []captureRule, text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, rule := range rules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			for _, value := range rule.transform(m) {
				if value == "" {
					continue
				}
				if _, ok := seen[value]; ok {
					continue
				}
				seen[value] = struct{}{}
				out = append(out, value)
			}
		}
	}
	return out
}

// applyFirst stops at the first rule whose first match yields a value.
// Profession is single-valued, so later rules never override it.
func applyFirst(rules []captureRule, text string) string {
	for _, rule := range rules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		values := rule.transform(m)
		if len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return ""
}

func titleFirst(groups []string) []string {
	return []string{titleCase(groups[1])}
}

func rawFirst(groups []string) []string {
	return []string{strings.TrimSpace(groups[1])}
}

// titledPlace title-cases a captured place and drops fragments too short to
// be a real name.
func titledPlace(groups []string) []string {
	place := strings.TrimSpace(groups[1])
	if len(place) <= 2 {
		return nil
	}
	return []string{titleCase(place)}
}

func hobbyList(groups []string) []string {
	var out []string
	for _, hobby := range splitNameList(groups[1]) {
		if len(hobby) <= 2 {
			continue
		}
		out = append(out, titleCase(hobby))
	}
	return out
}

var nameListSeparator = regexp.MustCompile(`,|&|\band\b`)

// splitNameList breaks "x, y and z" style enumerations into trimmed parts.
func splitNameList(list string) []string {
	var out []string
	for _, part := range nameListSeparator.Split(list, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// trimRolePhrase narrows a greedy role capture like
// "barber and have been cutting hair for" down to the role itself.
func trimRolePhrase(phrase string) string {
	phrase = strings.TrimSpace(phrase)
	for _, sep := range []string{" and ", " for ", " with ", " in ", " at ", " since "} {
		if idx := strings.Index(phrase, sep); idx >= 0 {
			phrase = phrase[:idx]
		}
	}
	return strings.TrimSpace(phrase)
}
