package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadowlink/afterlife/pkg/insights"
)

// BuildSystemPrompt renders the persona into the instructional prefix a
// downstream language model consumes. Deterministic: identical configs
// always produce byte-identical output.
func BuildSystemPrompt(cfg *Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\n\n", cfg.DisplayName)

	b.WriteString("Communication Style:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", cfg.Style.Tone)
	fmt.Fprintf(&b, "- Formality: %s\n", cfg.Style.Register)
	fmt.Fprintf(&b, "- Quirks: %s\n\n", joinOr(cfg.Style.Quirks, "; ", "None specified"))

	fmt.Fprintf(&b, "Professional Background:\n%s\n\n", cfg.Memory.Bio)
	fmt.Fprintf(&b, "Elevator Pitch:\n%s\n\n", cfg.Memory.ElevatorPitch)

	b.WriteString("Key Highlights:\n")
	for _, h := range cfg.Memory.Highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	b.WriteString("\nProjects:\n")
	for _, name := range cfg.Memory.ProjectNames() {
		fmt.Fprintf(&b, "- %s: %s\n", name, cfg.Memory.Projects[name])
	}

	fmt.Fprintf(&b, "\nCertifications: %s\n\n", joinOr(cfg.Memory.Certs, ", ", "None listed"))

	b.WriteString("Boundaries:\n")
	fmt.Fprintf(&b, "- Safe topics: %s\n", strings.Join(cfg.Boundaries.SafeTopics, ", "))
	fmt.Fprintf(&b, "- Avoid discussing: %s\n", strings.Join(cfg.Boundaries.AvoidTopics, ", "))
	fmt.Fprintf(&b, "- If asked about avoided topics, use one of these responses: %s\n\n", strings.Join(cfg.Boundaries.Refusals, " / "))

	b.WriteString("Guidelines:\n")
	b.WriteString("- Answer clearly and concisely\n")
	b.WriteString("- Use step-by-step explanations when giving instructions\n")
	b.WriteString("- Stay in character and maintain your professional tone\n")
	b.WriteString("- When appropriate, reference your projects and experience\n")
	b.WriteString("- If a question matches your pinned Q&A, prefer that answer but expand naturally\n")

	return b.String()
}

// BuildSystemPromptWithInsights appends a Personal Background section built
// from extracted bio facts. Sub-clauses appear in a fixed order and absent
// facts are simply omitted; an all-empty insights value yields the plain
// persona prompt.
func BuildSystemPromptWithInsights(cfg *Config, in insights.Insights) string {
	prompt := BuildSystemPrompt(cfg)
	if in.IsEmpty() {
		return prompt
	}

	var clauses []string
	if len(in.Nicknames) > 0 {
		clauses = append(clauses, "Your loved ones call you "+strings.Join(firstN(in.Nicknames, 2), ", "))
	}
	if len(in.FamilyMembers) > 0 {
		clauses = append(clauses, "Your family includes "+strings.Join(firstN(in.FamilyMembers, 4), "; "))
	}
	if in.Profession != "" {
		clauses = append(clauses, "You work as a "+in.Profession)
	}
	if len(in.Locations) > 0 {
		clauses = append(clauses, "You're from "+in.Locations[0])
	}
	if len(in.PersonalityDescriptors) > 0 {
		clauses = append(clauses, "People describe you as "+strings.Join(firstN(in.PersonalityDescriptors, 3), ", "))
	}
	if len(in.HobbiesInterests) > 0 {
		clauses = append(clauses, "You enjoy "+strings.Join(firstN(in.HobbiesInterests, 3), ", "))
	}
	if len(clauses) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\nPersonal Background: ")
	b.WriteString(strings.Join(clauses, ". "))
	b.WriteString(".\n\n")
	b.WriteString("When responding, naturally incorporate these personal details when relevant. " +
		"Use nicknames when appropriate, reference your family and background organically, " +
		"and let your profession and interests influence your perspective and advice.\n")
	return b.String()
}

// ProjectNames returns project names in sorted order so rendering is stable.
func (m Memory) ProjectNames() []string {
	names := make([]string, 0, len(m.Projects))
	for name := range m.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinOr(values []string, sep, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, sep)
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
