// Package registry defines the guild application form: the questions asked
// in each intake phase and the schemas their answers must satisfy.
package registry

// Phase identifies one of the two sequential form submissions composing a
// single application.
type Phase int

const (
	PhaseOne Phase = 1
	PhaseTwo Phase = 2
)

// Question is one text input on an intake form.
type Question struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Paragraph   bool   `json:"paragraph,omitempty"`
	Required    bool   `json:"required"`
}

var phaseOneQuestions = []Question{
	{Key: "ign", Label: "What's your in-game name (IGN)?", Required: true},
	{Key: "weapon", Label: "What's your main weapon combo?", Required: true},
	{Key: "gearscore", Label: "What's your current gearscore?", Required: true},
	{Key: "hours", Label: "How many hours do you play per day on average?", Required: true},
	{
		Key:         "availability",
		Label:       "Can you attend Boonstone, Riftstone & Siege?",
		Placeholder: "Answer if you can attend most of these events",
		Paragraph:   true,
		Required:    true,
	},
}

var phaseTwoQuestions = []Question{
	{
		Key:         "pvp",
		Label:       "Are you PvP focused? What experience do you have?",
		Placeholder: "Describe your PvP focus and experience in other games",
		Paragraph:   true,
		Required:    true,
	},
}

// Questions returns the form definition for a phase, in display order.
func Questions(phase Phase) []Question {
	switch phase {
	case PhaseOne:
		return phaseOneQuestions
	case PhaseTwo:
		return phaseTwoQuestions
	default:
		return nil
	}
}

// AllKeys returns every question key across both phases, in display order.
// The order is also the canonical answer ordering for rendering.
func AllKeys() []string {
	keys := make([]string, 0, len(phaseOneQuestions)+len(phaseTwoQuestions))
	for _, q := range phaseOneQuestions {
		keys = append(keys, q.Key)
	}
	for _, q := range phaseTwoQuestions {
		keys = append(keys, q.Key)
	}
	return keys
}
