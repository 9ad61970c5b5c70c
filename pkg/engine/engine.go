// Package engine orchestrates persona responses: it loads the persona,
// assembles the system prompt, tries the pinned Q&A list, and falls back
// to templated contextual answers. It never returns an error to callers;
// failures become apology-shaped responses.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shadowlink/afterlife/pkg/history"
	"github.com/shadowlink/afterlife/pkg/logger"
	"github.com/shadowlink/afterlife/pkg/persona"
)

const defaultPreviewLength = 200

// Request carries one chat turn into the generator.
type Request struct {
	PersonaID string
	UserInput string
	// Context is optional free-form text supplied by the caller.
	Context string
	// SessionID, when set, pulls stored bio insights into the prompt and
	// records the exchange in history.
	SessionID string
}

// Response is the serializable result of one chat turn.
type Response struct {
	Answer        string `json:"answer"`
	PersonaID     string `json:"persona_id"`
	PersonaName   string `json:"persona_name"`
	TTSVoice      string `json:"tts_voice,omitempty"`
	MatchedQA     bool   `json:"matched_qa"`
	PromptPreview string `json:"system_prompt_preview,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Generator produces persona responses. History is optional; a nil store
// disables session insights and transcript recording.
type Generator struct {
	store         *persona.Store
	history       *history.Store
	previewLength int
}

// NewGenerator builds a generator over the persona store.
// previewLength <= 0 picks the default.
func NewGenerator(store *persona.Store, hist *history.Store, previewLength int) *Generator {
	if previewLength <= 0 {
		previewLength = defaultPreviewLength
	}
	return &Generator{store: store, history: hist, previewLength: previewLength}
}

// Respond handles one chat turn. It never panics and never returns an
// error: unknown personas and internal failures become user-facing
// responses with the diagnostic in the Error field.
func (g *Generator) Respond(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("engine", "Recovered from panic in respond", map[string]interface{}{
				"persona": req.PersonaID,
				"panic":   fmt.Sprint(r),
			})
			resp = g.failureResponse(req.PersonaID, fmt.Errorf("%v", r))
		}
	}()

	cfg, err := g.store.Load(req.PersonaID)
	if err != nil {
		if errors.Is(err, persona.ErrNotFound) {
			available := g.store.ListAvailable()
			logger.WarnCF("engine", "Persona not found", map[string]interface{}{
				"persona":   req.PersonaID,
				"available": strings.Join(available, ","),
			})
			return Response{
				Answer: fmt.Sprintf("Sorry, I couldn't find the persona '%s'. Available personas: %s",
					req.PersonaID, strings.Join(available, ", ")),
				PersonaID:   req.PersonaID,
				PersonaName: "Unknown",
				Error:       "persona not found",
			}
		}
		logger.ErrorCF("engine", "Failed to load persona", map[string]interface{}{
			"persona": req.PersonaID,
			"error":   err.Error(),
		})
		return g.failureResponse(req.PersonaID, err)
	}

	prompt := g.assemblePrompt(ctx, cfg, req.SessionID)

	var answer string
	matched := false
	if pair := persona.FindPinnedMatch(cfg, req.UserInput); pair != nil {
		answer = pair.A
		matched = true
	} else {
		answer = contextualAnswer(cfg, req.UserInput)
	}

	g.recordExchange(ctx, req, cfg.ID, answer)

	return Response{
		Answer:        answer,
		PersonaID:     cfg.ID,
		PersonaName:   cfg.DisplayName,
		TTSVoice:      cfg.TTSVoice,
		MatchedQA:     matched,
		PromptPreview: truncate(prompt, g.previewLength),
	}
}

func (g *Generator) assemblePrompt(ctx context.Context, cfg *persona.Config, sessionID string) string {
	if g.history == nil || sessionID == "" {
		return persona.BuildSystemPrompt(cfg)
	}

	profile, err := g.history.GetProfile(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, history.ErrNoProfile) {
			logger.WarnCF("engine", "Failed to load session profile", map[string]interface{}{
				"session": sessionID,
				"error":   err.Error(),
			})
		}
		return persona.BuildSystemPrompt(cfg)
	}
	return persona.BuildSystemPromptWithInsights(cfg, profile.Insights)
}

func (g *Generator) recordExchange(ctx context.Context, req Request, personaID, answer string) {
	if g.history == nil || req.SessionID == "" {
		return
	}
	if err := g.history.AppendTurn(ctx, req.SessionID, personaID, "user", req.UserInput); err != nil {
		logger.WarnCF("engine", "Failed to record user turn", map[string]interface{}{
			"session": req.SessionID,
			"error":   err.Error(),
		})
		return
	}
	if err := g.history.AppendTurn(ctx, req.SessionID, personaID, "assistant", answer); err != nil {
		logger.WarnCF("engine", "Failed to record assistant turn", map[string]interface{}{
			"session": req.SessionID,
			"error":   err.Error(),
		})
	}
}

func (g *Generator) failureResponse(personaID string, err error) Response {
	return Response{
		Answer:      fmt.Sprintf("I'm having trouble processing that request. Error: %s", err.Error()),
		PersonaID:   personaID,
		PersonaName: "Error",
		Error:       err.Error(),
	}
}

// contextualAnswer builds a templated reply when no pinned Q&A matched:
// project mentions, then certifications, then general about-you phrasings,
// then a generic line from the elevator pitch and first projects.
func contextualAnswer(cfg *persona.Config, userInput string) string {
	userLower := strings.ToLower(userInput)

	for _, name := range cfg.Memory.ProjectNames() {
		if strings.Contains(userLower, strings.ToLower(name)) {
			return fmt.Sprintf("Great question about %s! %s. I built this because I believe in %s.",
				name, cfg.Memory.Projects[name], strings.ToLower(firstSentence(cfg.Memory.ElevatorPitch)))
		}
	}

	for _, cert := range cfg.Memory.Certs {
		if cert != "" && strings.Contains(userLower, strings.ToLower(cert)) {
			return fmt.Sprintf("Yes, I'm certified in %s. These certifications are crucial for the work I do in %s.",
				strings.Join(cfg.Memory.Certs, ", "), strings.ToLower(firstSentence(cfg.Memory.Bio)))
		}
	}

	for _, word := range []string{"who", "about", "tell me", "background"} {
		if strings.Contains(userLower, word) {
			highlights := cfg.Memory.Highlights
			if len(highlights) > 2 {
				highlights = highlights[:2]
			}
			return fmt.Sprintf("%s Some highlights of my work include: %s.",
				cfg.Memory.ElevatorPitch, strings.Join(highlights, "; "))
		}
	}

	names := cfg.Memory.ProjectNames()
	if len(names) > 2 {
		names = names[:2]
	}
	return fmt.Sprintf("That's an interesting question! %s. I'd be happy to discuss how this relates to my work with %s.",
		firstSentence(cfg.Memory.Bio), strings.Join(names, ", "))
}

func firstSentence(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate cuts s to at most max bytes, backing up so the cut never
// lands inside a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
