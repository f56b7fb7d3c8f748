package emotion

import (
	"strings"
	"unicode/utf8"
)

const (
	MetricWordCount        = "word_count"
	MetricHesitationRatio  = "hesitation_ratio"
	MetricConfidenceRatio  = "confidence_ratio"
	MetricSpeechComplexity = "speech_complexity"
	MetricSpeechPace       = "speech_pace"
)

// Matching is per whitespace token, so the multi-word entries never match.
var hesitationLexicon = map[string]struct{}{
	"um": {}, "uh": {}, "like": {}, "you know": {}, "i mean": {}, "sort of": {}, "kind of": {},
}

var confidenceLexicon = map[string]struct{}{
	"definitely": {}, "absolutely": {}, "certainly": {}, "sure": {}, "confident": {}, "know": {},
}

// CalculateTextMetrics computes linguistic features of text. speech_pace is
// word_count/60 clamped to [0,2]; it is a proxy, not a wall-clock rate.
func CalculateTextMetrics(text string) map[string]float64 {
	words := strings.Fields(text)
	wordCount := len(words)

	metrics := map[string]float64{
		MetricWordCount:        float64(wordCount),
		MetricHesitationRatio:  0,
		MetricConfidenceRatio:  0,
		MetricSpeechComplexity: 0,
		MetricSpeechPace:       0,
	}
	if wordCount == 0 {
		return metrics
	}

	var hesitations, confident, totalLen int
	for _, w := range words {
		lower := strings.ToLower(w)
		if _, ok := hesitationLexicon[lower]; ok {
			hesitations++
		}
		if _, ok := confidenceLexicon[lower]; ok {
			confident++
		}
		totalLen += utf8.RuneCountInString(w)
	}

	n := float64(wordCount)
	metrics[MetricHesitationRatio] = float64(hesitations) / n
	metrics[MetricConfidenceRatio] = float64(confident) / n
	metrics[MetricSpeechComplexity] = clamp(float64(totalLen)/n/5.0, 0, 1)
	metrics[MetricSpeechPace] = clamp(n/60.0, 0, 2)
	return metrics
}
