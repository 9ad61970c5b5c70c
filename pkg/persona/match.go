package persona

import "strings"

// FindPinnedMatch scans pinned Q&A pairs in declaration order and returns
// the first whose question shares any word longer than three characters
// with the user input. First match wins; this is deliberately not a
// best-match search, so ties go to the earlier-declared pair. Returns nil
// when nothing matches.
//
// The overlap test is permissive: a pinned question containing a generic
// long word ("work", "project") can match loosely related input. That
// looseness is part of the observable behavior and is kept as-is.
func FindPinnedMatch(cfg *Config, userInput string) *QAPair {
	inputLower := strings.ToLower(userInput)

	for i := range cfg.QA.Pinned {
		pair := &cfg.QA.Pinned[i]
		for _, word := range strings.Fields(strings.ToLower(pair.Q)) {
			if len(word) <= 3 {
				continue
			}
			if strings.Contains(inputLower, word) {
				return pair
			}
		}
	}
	return nil
}
