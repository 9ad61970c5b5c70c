package persona

// Config is a complete persona definition loaded from one YAML file.
// Values are never mutated after load; reloading builds a fresh instance.
type Config struct {
	ID          string     `yaml:"id" json:"id"`
	DisplayName string     `yaml:"display_name" json:"display_name"`
	Style       Style      `yaml:"style" json:"style"`
	Boundaries  Boundaries `yaml:"boundaries" json:"boundaries"`
	Memory      Memory     `yaml:"memory" json:"memory"`
	QA          QA         `yaml:"qa" json:"qa"`
	TTSVoice    string     `yaml:"tts_voice,omitempty" json:"tts_voice,omitempty"`
}

// Style sets the communication tone of the persona.
type Style struct {
	Tone     string   `yaml:"tone" json:"tone"`
	Register string   `yaml:"register" json:"register"`
	Quirks   []string `yaml:"quirks" json:"quirks"`
}

// Boundaries lists what the persona will and will not talk about.
type Boundaries struct {
	SafeTopics  []string `yaml:"safe_topics" json:"safe_topics"`
	AvoidTopics []string `yaml:"avoid_topics" json:"avoid_topics"`
	Refusals    []string `yaml:"refusals" json:"refusals"`
}

// Memory holds the persona's durable biographical and professional facts.
type Memory struct {
	Bio           string            `yaml:"bio" json:"bio"`
	ElevatorPitch string            `yaml:"elevator_pitch" json:"elevator_pitch"`
	Highlights    []string          `yaml:"highlights" json:"highlights"`
	Projects      map[string]string `yaml:"projects" json:"projects"`
	Certs         []string          `yaml:"certs" json:"certs"`
}

// QA carries author-curated answers the persona prefers over generation.
type QA struct {
	Pinned []QAPair `yaml:"pinned" json:"pinned"`
}

// QAPair is one pinned question/answer.
type QAPair struct {
	Q string `yaml:"q" json:"q"`
	A string `yaml:"a" json:"a"`
}

// Validate checks the required scalar fields the loader refuses to
// proceed without. Pinned QA may be empty; presence of the boundaries
// and qa sections themselves is enforced when the file is decoded.
func (c *Config) Validate() error {
	switch {
	case c.ID == "":
		return &ValidationError{Field: "id"}
	case c.DisplayName == "":
		return &ValidationError{Field: "display_name"}
	case c.Style.Tone == "":
		return &ValidationError{Field: "style.tone"}
	case c.Style.Register == "":
		return &ValidationError{Field: "style.register"}
	case c.Memory.Bio == "":
		return &ValidationError{Field: "memory.bio"}
	case c.Memory.ElevatorPitch == "":
		return &ValidationError{Field: "memory.elevator_pitch"}
	}
	return nil
}
