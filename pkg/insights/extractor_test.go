package insights

import (
	"testing"
)

func containsAll(haystack []string, wanted ...string) bool {
	set := map[string]struct{}{}
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func TestExtract_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		in := Extract(text)
		if !in.IsEmpty() {
			t.Fatalf("Extract(%q) should be empty, got %+v", text, in)
		}
	}
}

func TestExtract_NoRecognizablePattern(t *testing.T) {
	in := Extract("The quick brown fox jumps over the lazy dog.")
	if !in.IsEmpty() {
		t.Fatalf("expected all-empty insights for patternless text, got %+v", in)
	}
	if in.Profession != "" {
		t.Fatalf("profession should be empty, got %q", in.Profession)
	}
}

func TestExtract_Nicknames(t *testing.T) {
	in := Extract("Call me Ace, but friends call me Tommy, and family knows me as T.")
	if !containsAll(in.Nicknames, "Ace", "Tommy") {
		t.Fatalf("nicknames = %v, want superset of [Ace Tommy]", in.Nicknames)
	}
}

func TestExtract_NicknamesDeduplicated(t *testing.T) {
	in := Extract("Everyone calls me Buddy. Yes, just call me Buddy.")
	count := 0
	for _, n := range in.Nicknames {
		if n == "Buddy" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("nickname Buddy should appear exactly once, got %v", in.Nicknames)
	}
}

func TestExtract_ProfessionFromPhrase(t *testing.T) {
	in := Extract("I work as a barber and have been cutting hair for 15 years.")
	if in.Profession != "Barber" {
		t.Fatalf("profession = %q, want Barber", in.Profession)
	}
}

func TestExtract_ProfessionFromVocabulary(t *testing.T) {
	in := Extract("Being a plumber keeps my weekends busy.")
	if in.Profession != "Plumber" {
		t.Fatalf("profession = %q, want Plumber", in.Profession)
	}
}

func TestExtract_ProfessionFirstMatchWins(t *testing.T) {
	// The explicit phrasing rule must win over the vocabulary rule even when
	// a vocabulary word appears earlier in the text.
	in := Extract("My doctor says I work as a teacher.")
	if in.Profession != "Teacher" {
		t.Fatalf("profession = %q, want Teacher (phrase rule precedes vocabulary)", in.Profession)
	}
}

func TestExtract_FamilyRelationAndName(t *testing.T) {
	in := Extract("My mom is Jane and my brother is Mike.")
	if !containsAll(in.FamilyMembers, "mom: Jane", "brother: Mike") {
		t.Fatalf("family = %v, want mom: Jane and brother: Mike", in.FamilyMembers)
	}
}

func TestExtract_FamilyChildren(t *testing.T) {
	in := Extract("My kids are Anna, Ben and Chloe.")
	if !containsAll(in.FamilyMembers, "child: Anna", "child: Ben", "child: Chloe") {
		t.Fatalf("family = %v, want three child entries", in.FamilyMembers)
	}
}

func TestExtract_Locations(t *testing.T) {
	in := Extract("I grew up in new york, then lived in chicago.")
	if !containsAll(in.Locations, "New York") {
		t.Fatalf("locations = %v, want New York", in.Locations)
	}
}

func TestExtract_LocationNoiseFiltered(t *testing.T) {
	in := Extract("I am from la.")
	for _, loc := range in.Locations {
		if len(loc) <= 2 {
			t.Fatalf("short location fragment %q should have been discarded", loc)
		}
	}
}

func TestExtract_PersonalityDescriptors(t *testing.T) {
	in := Extract("People say I am funny, caring and a bit stubborn.")
	if !containsAll(in.PersonalityDescriptors, "Funny", "Caring", "Stubborn") {
		t.Fatalf("descriptors = %v", in.PersonalityDescriptors)
	}
}

func TestExtract_Hobbies(t *testing.T) {
	in := Extract("My hobbies are fishing, carpentry and chess. I also enjoy hiking.")
	if !containsAll(in.HobbiesInterests, "Fishing", "Carpentry", "Chess") {
		t.Fatalf("hobbies = %v", in.HobbiesInterests)
	}
}

func TestExtract_HobbiesShortFragmentsDropped(t *testing.T) {
	in := Extract("I enjoy go.")
	for _, h := range in.HobbiesInterests {
		if len(h) <= 2 {
			t.Fatalf("short hobby fragment %q should have been discarded", h)
		}
	}
}

func TestExtract_ImportantFactsKeepOriginalCasing(t *testing.T) {
	in := Extract("I am 42 years old and moved to Austin Texas last spring. I studied Electrical Engineering.")
	if !containsAll(in.ImportantFacts, "42") {
		t.Fatalf("facts = %v, want age capture", in.ImportantFacts)
	}
	foundMove := false
	foundStudy := false
	for _, f := range in.ImportantFacts {
		if f == "moved to Austin Texas last spring" {
			foundMove = true
		}
		if f == "studied Electrical Engineering" {
			foundStudy = true
		}
	}
	if !foundMove || !foundStudy {
		t.Fatalf("facts should keep original casing, got %v", in.ImportantFacts)
	}
}

func TestExtract_GraduationYear(t *testing.T) {
	in := Extract("I graduated in 2004 and married in 2010.")
	if !containsAll(in.ImportantFacts, "2004", "2010") {
		t.Fatalf("facts = %v, want both years", in.ImportantFacts)
	}
}
