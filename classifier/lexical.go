package classifier

import "strings"

// keywordDensity returns the share of keywords found in text per whitespace word, in percent,
// and the word count. Multi-word keywords count once when present as a substring.
func keywordDensity(text string, keywords []string) (float64, int) {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0, 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			hits++
		}
	}
	return float64(hits) / float64(words) * 100, words
}
