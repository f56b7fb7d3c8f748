package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
)

const DefaultLLMTimeout = 30 * time.Second

const (
	llmKeyEmotion    = "emotion"
	llmKeyConfidence = "confidence"
	llmKeyIntensity  = "intensity"
)

// Enrichment is a partial update parsed from the LLM reply. Nil fields were
// absent or unusable and leave the baseline untouched.
type Enrichment struct {
	Emotion    *models.Emotion
	Confidence *float64
	Intensity  *models.Intensity
	Metrics    map[string]float64
}

// ApplyTo overwrites the intersecting fields of sig.
func (e Enrichment) ApplyTo(sig *TextSignal) {
	if e.Emotion != nil {
		sig.Emotion = string(*e.Emotion)
	}
	if e.Confidence != nil {
		sig.Confidence = *e.Confidence
	}
	if e.Intensity != nil {
		sig.Intensity = *e.Intensity
	}
}

// LLMEnricher asks an LLM for a structured emotion judgment.
type LLMEnricher struct {
	llm     Generator
	timeout time.Duration
}

// NewLLMEnricher returns nil when llm is nil so callers can skip enrichment
// with a single check.
func NewLLMEnricher(llm Generator, timeout time.Duration) *LLMEnricher {
	if llm == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMEnricher{llm: llm, timeout: timeout}
}

type generation struct {
	text string
	err  error
}

// Enrich reports false when the call fails, times out, or the reply holds no
// decodable JSON object. It is never retried.
func (e *LLMEnricher) Enrich(ctx context.Context, text string) (Enrichment, bool) {
	if e == nil {
		return Enrichment{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	select {
	case <-ctx.Done():
		slog.Warn("[LLMEnricher] LLM call abandoned",
			slog.String("error", ctx.Err().Error()),
			slog.Duration("elapsed", time.Since(start)))
		return Enrichment{}, false
	case res := <-e.submit(ctx, BuildEnrichmentPrompt(text)):
		if res.err != nil {
			slog.Warn("[LLMEnricher] LLM call failed",
				slog.String("error", res.err.Error()),
				slog.Duration("elapsed", time.Since(start)))
			return Enrichment{}, false
		}

		enrichment, err := ParseEnrichment(res.text)
		if err != nil {
			slog.Warn("[LLMEnricher] Could not parse LLM response",
				slog.String("error", err.Error()),
				getPreview(res.text))
			return Enrichment{}, false
		}
		return enrichment, true
	}
}

// submit runs the generator on its own goroutine. The channel is buffered so
// an abandoned call never blocks.
func (e *LLMEnricher) submit(ctx context.Context, prompt string) <-chan generation {
	out := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- generation{err: fmt.Errorf("llm generator panic: %v", r)}
			}
		}()
		text, err := e.llm.Generate(ctx, prompt)
		out <- generation{text: text, err: err}
	}()
	return out
}

// ParseEnrichment decodes the first JSON object in reply. Unknown numeric keys
// become metrics, list-valued keys become "<key>_count" metrics, and anything
// else is dropped.
func ParseEnrichment(reply string) (Enrichment, error) {
	span, err := ExtractFirstJSONObject(reply)
	if err != nil {
		return Enrichment{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return Enrichment{}, fmt.Errorf("failed to decode LLM JSON: %w", err)
	}

	out := Enrichment{Metrics: map[string]float64{}}
	for key, raw := range fields {
		switch key {
		case llmKeyEmotion:
			if s, ok := raw.(string); ok {
				if e, valid := models.ParseEmotion(s); valid {
					out.Emotion = &e
				}
			}
		case llmKeyConfidence:
			if f, ok := raw.(float64); ok {
				c := clamp(f, 0, 1)
				out.Confidence = &c
			}
		case llmKeyIntensity:
			if s, ok := raw.(string); ok {
				if i, valid := models.ParseIntensity(s); valid {
					out.Intensity = &i
				}
			}
		default:
			switch v := raw.(type) {
			case float64:
				out.Metrics[key] = v
			case []any:
				out.Metrics[key+"_count"] = float64(len(v))
			}
		}
	}
	return out, nil
}

func getPreview(raw string) slog.Attr {
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}
