package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shadowlink/afterlife/pkg/history"
	"github.com/shadowlink/afterlife/pkg/insights"
	"github.com/shadowlink/afterlife/pkg/persona"
)

const jamesYAML = `id: james
display_name: James
style:
  tone: Confident, friendly
  register: neutral
boundaries:
  safe_topics: [Kubernetes]
memory:
  bio: Builder of automation platforms. Based in Tampa.
  elevator_pitch: I build secure AI systems. They run themselves.
  highlights:
    - Designed an AI platform
    - Led a platform migration
    - Mentored three engineers
  projects:
    LinkOps: AI DevOps automation platform
    ZapFleet: Fleet telemetry pipeline
  certs: [CKA, Security+]
qa:
  pinned:
    - q: What is LinkOps exactly?
      a: LinkOps is my AI automation platform.
tts_voice: en_US-male-1
`

func newTestGenerator(t *testing.T, previewLength int) (*Generator, *history.Store) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "james.yaml"), []byte(jamesYAML), 0644); err != nil {
		t.Fatalf("write persona fixture: %v", err)
	}
	store, err := persona.NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	hist, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.NewStore: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	return NewGenerator(store, hist, previewLength), hist
}

func TestRespondUnknownPersonaListsAvailable(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	resp := gen.Respond(context.Background(), Request{PersonaID: "ghost", UserInput: "hi"})

	if resp.MatchedQA {
		t.Fatal("unknown persona must not report a pinned match")
	}
	if resp.PersonaName != "Unknown" {
		t.Fatalf("expected Unknown persona name, got %q", resp.PersonaName)
	}
	if !strings.Contains(resp.Answer, "james") {
		t.Fatalf("answer should list available personas, got %q", resp.Answer)
	}
	if resp.Error == "" {
		t.Fatal("expected diagnostic error field")
	}
}

func TestRespondPinnedAnswerVerbatim(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "Can you explain what LinkOps exactly does?",
	})

	if !resp.MatchedQA {
		t.Fatalf("expected pinned match, got %+v", resp)
	}
	if resp.Answer != "LinkOps is my AI automation platform." {
		t.Fatalf("pinned answer must be verbatim, got %q", resp.Answer)
	}
	if resp.PersonaName != "James" || resp.TTSVoice != "en_US-male-1" {
		t.Fatalf("unexpected persona metadata: %+v", resp)
	}
}

func TestRespondProjectFallback(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	// "zapfleet" hits no pinned question word, so the project scan runs.
	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "how does zapfleet scale?",
	})

	if resp.MatchedQA {
		t.Fatalf("expected fallback, got pinned match: %+v", resp)
	}
	if !strings.Contains(resp.Answer, "Great question about ZapFleet!") {
		t.Fatalf("expected project answer, got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "i build secure ai systems") {
		t.Fatalf("expected lowercased pitch sentence, got %q", resp.Answer)
	}
}

func TestRespondCertFallback(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "do you hold the cka?",
	})

	if !strings.Contains(resp.Answer, "Yes, I'm certified in CKA, Security+.") {
		t.Fatalf("expected cert answer, got %q", resp.Answer)
	}
}

func TestRespondAboutFallbackUsesTwoHighlights(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "so, background?",
	})

	if !strings.Contains(resp.Answer, "Designed an AI platform; Led a platform migration.") {
		t.Fatalf("expected first two highlights, got %q", resp.Answer)
	}
	if strings.Contains(resp.Answer, "Mentored") {
		t.Fatalf("third highlight must be dropped, got %q", resp.Answer)
	}
}

func TestRespondGenericFallback(t *testing.T) {
	gen, _ := newTestGenerator(t, 0)

	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "hmm.",
	})

	if resp.Answer != "That's an interesting question! Builder of automation platforms. "+
		"I'd be happy to discuss how this relates to my work with LinkOps, ZapFleet." {
		t.Fatalf("unexpected generic answer: %q", resp.Answer)
	}
}

func TestRespondPromptPreviewTruncated(t *testing.T) {
	gen, _ := newTestGenerator(t, 80)

	resp := gen.Respond(context.Background(), Request{PersonaID: "james", UserInput: "hmm."})

	if len(resp.PromptPreview) != 83 || !strings.HasSuffix(resp.PromptPreview, "...") {
		t.Fatalf("expected 80-char preview with ellipsis, got %d chars: %q",
			len(resp.PromptPreview), resp.PromptPreview)
	}
	if !strings.HasPrefix(resp.PromptPreview, "You are James.") {
		t.Fatalf("preview should start with the prompt, got %q", resp.PromptPreview)
	}
}

func TestRespondSessionInsightsFeedPrompt(t *testing.T) {
	gen, hist := newTestGenerator(t, 100000)
	ctx := context.Background()

	profile := &insights.TextProfile{
		Insights: insights.Insights{Profession: "Barber"},
	}
	sessionID, err := hist.RecordIngestion(ctx, "", profile)
	if err != nil {
		t.Fatalf("RecordIngestion: %v", err)
	}

	resp := gen.Respond(ctx, Request{
		PersonaID: "james",
		UserInput: "hmm.",
		SessionID: sessionID,
	})

	if !strings.Contains(resp.PromptPreview, "Personal Background: You work as a Barber.") {
		t.Fatalf("expected insights in prompt, got %q", resp.PromptPreview)
	}
}

func TestRespondRecordsSessionTurns(t *testing.T) {
	gen, hist := newTestGenerator(t, 0)
	ctx := context.Background()

	resp := gen.Respond(ctx, Request{
		PersonaID: "james",
		UserInput: "so, background?",
		SessionID: "sess-1",
	})

	turns, err := hist.RecentTurns(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns, got %+v", turns)
	}
	if turns[0].Role != "user" || turns[0].Content != "so, background?" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != resp.Answer {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestRespondWithoutHistoryStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "james.yaml"), []byte(jamesYAML), 0644); err != nil {
		t.Fatalf("write persona fixture: %v", err)
	}
	store, err := persona.NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	gen := NewGenerator(store, nil, 0)

	resp := gen.Respond(context.Background(), Request{
		PersonaID: "james",
		UserInput: "hmm.",
		SessionID: "ignored",
	})
	if resp.Answer == "" || resp.Error != "" {
		t.Fatalf("nil history must not fail responses: %+v", resp)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	got := truncate("日本語テキスト", 4)
	if got != "日..." {
		t.Fatalf("expected cut on rune boundary, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated preview is not valid UTF-8: %q", got)
	}

	if got := truncate("abcdef", 4); got != "abcd..." {
		t.Fatalf("unexpected ASCII truncation: %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("strings within the limit must pass through, got %q", got)
	}
}
