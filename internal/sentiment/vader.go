package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/moodflow/internal/models"
)

const compoundThreshold = 0.20

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup, so
// transcripts pasted from chat tools score on their words alone.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plainText), " ")
}

// VaderClassifier is a lexicon-based sentiment classifier. It needs no model
// download and serves as the fallback sentiment signal.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Classify returns a single prediction. Polar labels score |compound|;
// neutral scores 1-|compound|.
func (v *VaderClassifier) Classify(_ context.Context, text string) ([]models.Prediction, error) {
	score, label := v.Analyze(text)

	confidence := math.Abs(score)
	if label == "neutral" {
		confidence = 1 - confidence
	}
	return []models.Prediction{{Label: label, Score: confidence}}, nil
}

func (v *VaderClassifier) Analyze(text string) (float64, string) {
	plainText := ConvertMarkdownToText(text)
	if plainText == "" {
		return 0, "neutral"
	}

	sentiment := v.analyzer.PolarityScores(plainText)
	score := sentiment.Compound

	var label string
	if score >= compoundThreshold {
		label = "positive"
	} else if score <= -compoundThreshold {
		label = "negative"
	} else {
		label = "neutral"
	}

	return score, label
}
