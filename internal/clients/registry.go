package clients

import (
	"context"
	"log/slog"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

// Registry holds the model handles built from configuration plus whatever
// must be released at shutdown.
type Registry struct {
	Models emotion.Models
	HF     *HuggingFaceClient

	hugot  *HugotSession
	pinger interface{ Ping(ctx context.Context) error }
}

// LoadModels builds every configured model once. A model that fails to
// initialize is logged and left nil, which downstream code treats as
// unavailable.
func LoadModels(ctx context.Context, cfg config.Config) *Registry {
	r := &Registry{HF: NewHuggingFaceClient(ctx, cfg.HFToken, cfg.HFTimeout)}

	r.Models.Text = r.textClassifier(cfg.TextBackend, cfg.HFTextEndpoint, cfg.HugotTextModel, cfg)
	r.Models.Sentiment = r.textClassifier(cfg.SentimentBackend, cfg.HFSentimentEndpoint, cfg.HugotSentimentModel, cfg)

	if cfg.AudioEnabled && cfg.HFAudioEndpoint != "" {
		r.Models.Audio = r.HF.AudioClassifier(cfg.HFAudioEndpoint)
	}

	switch cfg.LLMProvider {
	case config.LLMProviderGemini:
		if gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
			unavailable("llm", err)
		} else {
			r.Models.LLM = gemini
			r.pinger = gemini
		}
	case config.LLMProviderOpenAI:
		if oa, err := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel); err != nil {
			unavailable("llm", err)
		} else {
			r.Models.LLM = oa
			r.pinger = oa
		}
	}

	return r
}

func (r *Registry) textClassifier(backend, endpoint, repo string, cfg config.Config) emotion.Classifier {
	switch backend {
	case config.TextBackendRemote:
		if endpoint == "" {
			unavailable(repo, emotion.ErrModelUnavailable)
			return nil
		}
		return r.HF.TextClassifier(endpoint)
	case config.TextBackendVader:
		return sentiment.NewVaderClassifier()
	case config.TextBackendHugot:
		if r.hugot == nil {
			session, err := NewHugotSession(cfg.HugotModelDir)
			if err != nil {
				unavailable(repo, err)
				return nil
			}
			r.hugot = session
		}
		classifier, err := r.hugot.Classifier(repo)
		if err != nil {
			unavailable(repo, err)
			return nil
		}
		return classifier
	default:
		return nil
	}
}

// LLMHealthy reports whether the configured LLM endpoint answers. It is
// false when no LLM is configured.
func (r *Registry) LLMHealthy(ctx context.Context) bool {
	if r.pinger == nil {
		return false
	}
	if err := r.pinger.Ping(ctx); err != nil {
		slog.Warn("[ModelRegistry] LLM health check failed",
			slog.String("error", err.Error()))
		return false
	}
	return true
}

func (r *Registry) Close() {
	if r.hugot != nil {
		r.hugot.Destroy()
	}
}

func unavailable(model string, err error) {
	slog.Warn("[ModelRegistry] Model unavailable, its signal will use defaults",
		slog.String("model", model),
		slog.String("error", err.Error()))
}
