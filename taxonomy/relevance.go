package taxonomy

// EmergencyReference is the canonical sentence chunks are compared against for relevance.
const EmergencyReference = "emergency response disaster preparedness safety procedures evacuation first aid rescue operations"

// RelevanceKeywords returns the lexical relevance vocabulary.
func RelevanceKeywords() []string {
	return []string{
		"emergency", "disaster", "safety", "evacuation", "rescue", "first aid",
		"fire", "flood", "earthquake", "storm", "hurricane", "tornado", "medical",
		"help", "danger", "warning", "prepare", "response", "survival", "shelter",
		"emergency kit", "emergency plan", "emergency supplies", "hazard", "risk",
	}
}
