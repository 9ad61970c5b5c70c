package persona

import (
	"strings"
	"testing"

	"github.com/shadowlink/afterlife/pkg/insights"
)

func samplePersona() *Config {
	return &Config{
		ID:          "james",
		DisplayName: "James",
		Style: Style{
			Tone:     "Confident, friendly, technical mentor",
			Register: "neutral",
			Quirks:   []string{"Uses clear step-by-step lists", "Brief humor when appropriate"},
		},
		Boundaries: Boundaries{
			SafeTopics:  []string{"Kubernetes", "DevSecOps"},
			AvoidTopics: []string{"politics", "medical advice"},
			Refusals:    []string{"Let's keep this focused on my work."},
		},
		Memory: Memory{
			Bio:           "Builder of automation platforms.",
			ElevatorPitch: "I build secure, self-hosted AI systems.",
			Highlights:    []string{"Designed an AI platform", "CKA certified"},
			Projects: map[string]string{
				"LinkOps":   "AI DevOps automation platform",
				"AfterLife": "Conversational avatar platform",
			},
			Certs: []string{"CKA", "Security+"},
		},
		QA: QA{Pinned: []QAPair{
			{Q: "What is LinkOps?", A: "LinkOps is my automation platform."},
		}},
		TTSVoice: "en_US-male-1",
	}
}

func TestBuildSystemPrompt_ContainsCoreBlocks(t *testing.T) {
	prompt := BuildSystemPrompt(samplePersona())

	for _, want := range []string{
		"You are James.",
		"Tone: Confident, friendly, technical mentor",
		"Formality: neutral",
		"Professional Background:",
		"Elevator Pitch:",
		"LinkOps: AI DevOps automation platform",
		"Certifications: CKA, Security+",
		"Safe topics: Kubernetes, DevSecOps",
		"Avoid discussing: politics, medical advice",
		"Stay in character",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPrompt_Idempotent(t *testing.T) {
	cfg := samplePersona()
	first := BuildSystemPrompt(cfg)
	second := BuildSystemPrompt(cfg)
	if first != second {
		t.Fatal("BuildSystemPrompt should be byte-identical across calls")
	}
}

func TestBuildSystemPromptWithInsights_Idempotent(t *testing.T) {
	cfg := samplePersona()
	in := insights.Extract("Call me Jimmy. I work as a barber. My kids are Anna and Ben.")
	first := BuildSystemPromptWithInsights(cfg, in)
	second := BuildSystemPromptWithInsights(cfg, in)
	if first != second {
		t.Fatal("BuildSystemPromptWithInsights should be byte-identical across calls")
	}
}

func TestBuildSystemPromptWithInsights_EmptyInsightsOmitsSection(t *testing.T) {
	cfg := samplePersona()
	prompt := BuildSystemPromptWithInsights(cfg, insights.Insights{})
	if strings.Contains(prompt, "Personal Background:") {
		t.Fatal("empty insights must not add a Personal Background section")
	}
	if prompt != BuildSystemPrompt(cfg) {
		t.Fatal("empty insights should yield the plain persona prompt")
	}
}

func TestBuildSystemPromptWithInsights_OnlyProfession(t *testing.T) {
	cfg := samplePersona()
	prompt := BuildSystemPromptWithInsights(cfg, insights.Insights{Profession: "Barber"})

	if !strings.Contains(prompt, "Personal Background: You work as a Barber.") {
		t.Fatalf("expected a profession-only Personal Background section:\n%s", prompt)
	}
	for _, absent := range []string{
		"Your loved ones call you",
		"Your family includes",
		"You're from",
		"People describe you as",
		"You enjoy",
	} {
		if strings.Contains(prompt, absent) {
			t.Errorf("clause %q should be omitted when its facts are absent", absent)
		}
	}
}

func TestBuildSystemPromptWithInsights_ClauseOrderAndLimits(t *testing.T) {
	cfg := samplePersona()
	in := insights.Insights{
		Nicknames:              []string{"Ace", "Tommy", "Third"},
		FamilyMembers:          []string{"mom: Jane", "dad: Joe", "child: Anna", "child: Ben", "child: Chloe"},
		Profession:             "Barber",
		Locations:              []string{"Detroit", "Chicago"},
		PersonalityDescriptors: []string{"Funny", "Kind", "Caring", "Loud"},
		HobbiesInterests:       []string{"Fishing", "Chess", "Hiking", "Golf"},
	}
	prompt := BuildSystemPromptWithInsights(cfg, in)

	if !strings.Contains(prompt, "Your loved ones call you Ace, Tommy.") {
		t.Errorf("nickname clause should cap at two names:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Your family includes mom: Jane; dad: Joe; child: Anna; child: Ben.") {
		t.Errorf("family clause should cap at four members:\n%s", prompt)
	}
	if !strings.Contains(prompt, "You're from Detroit.") {
		t.Errorf("location clause should use the first location only:\n%s", prompt)
	}
	if !strings.Contains(prompt, "People describe you as Funny, Kind, Caring.") {
		t.Errorf("descriptor clause should cap at three:\n%s", prompt)
	}
	if !strings.Contains(prompt, "You enjoy Fishing, Chess, Hiking.") {
		t.Errorf("hobby clause should cap at three:\n%s", prompt)
	}

	nickIdx := strings.Index(prompt, "Your loved ones")
	famIdx := strings.Index(prompt, "Your family includes")
	profIdx := strings.Index(prompt, "You work as a")
	locIdx := strings.Index(prompt, "You're from")
	if !(nickIdx < famIdx && famIdx < profIdx && profIdx < locIdx) {
		t.Error("personal background clauses out of order")
	}
}
