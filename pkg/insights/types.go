package insights

// Insights holds structured facts pulled out of free-text biographical
// input. Every field defaults to empty; extraction never fails, it just
// leaves fields empty when nothing matched.
type Insights struct {
	Nicknames              []string `json:"nicknames"`
	FamilyMembers          []string `json:"family_members"`
	Profession             string   `json:"profession"`
	Locations              []string `json:"locations"`
	PersonalityDescriptors []string `json:"personality_descriptors"`
	HobbiesInterests       []string `json:"hobbies_interests"`
	ImportantFacts         []string `json:"important_facts"`
}

// IsEmpty reports whether no fact category captured anything.
func (in Insights) IsEmpty() bool {
	return len(in.Nicknames) == 0 &&
		len(in.FamilyMembers) == 0 &&
		in.Profession == "" &&
		len(in.Locations) == 0 &&
		len(in.PersonalityDescriptors) == 0 &&
		len(in.HobbiesInterests) == 0 &&
		len(in.ImportantFacts) == 0
}
