package emotion

import (
	"fmt"
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
)

const enrichmentPrompt = `Analyze the emotional tone of this interview response:

Text: %q

Provide a JSON response with:
{
    "emotion": "%s",
    "confidence": 0.85,
    "intensity": "low|medium|high",
    "stress_indicators": ["list", "of", "indicators"],
    "confidence_markers": ["list", "of", "confidence", "markers"],
    "energy_level": 0.7,
    "professional_tone": 0.8,
    "coherence": 0.9
}

Consider:
- Interview context and professional communication
- Confidence vs uncertainty markers
- Stress and anxiety indicators
- Energy and enthusiasm levels
- Language fluency and coherence

Return only valid JSON.`

// BuildEnrichmentPrompt asks the LLM to classify text against the closed
// emotion vocabulary plus interview-specific markers.
func BuildEnrichmentPrompt(text string) string {
	labels := make([]string, 0, len(models.Emotions))
	for _, e := range models.Emotions {
		labels = append(labels, string(e))
	}
	return fmt.Sprintf(enrichmentPrompt, text, strings.Join(labels, "|"))
}
