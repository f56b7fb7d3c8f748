package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	TextBackendHugot  = "hugot"
	TextBackendRemote = "remote"
	TextBackendVader  = "vader"
	TextBackendNone   = "none"

	LLMProviderGemini = "gemini"
	LLMProviderOpenAI = "openai"
	LLMProviderNone   = "none"
)

type Config struct {
	AppEnv   string `env:"APP_ENV,default=development"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// text and sentiment classifiers
	TextBackend         string        `env:"TEXT_BACKEND,default=remote"`
	SentimentBackend    string        `env:"SENTIMENT_BACKEND,default=vader"`
	HFToken             string        `env:"HF_TOKEN"`
	HFTextEndpoint      string        `env:"HF_TEXT_ENDPOINT,default=https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"`
	HFSentimentEndpoint string        `env:"HF_SENTIMENT_ENDPOINT,default=https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment-latest"`
	HFAudioEndpoint     string        `env:"HF_AUDIO_ENDPOINT,default=https://api-inference.huggingface.co/models/ehcalabres/wav2vec2-lg-xlsr-en-speech-emotion-recognition"`
	HFTimeout           time.Duration `env:"HF_TIMEOUT,default=30s"`
	HugotModelDir       string        `env:"HUGOT_MODEL_DIR,default=./models"`
	HugotTextModel      string        `env:"HUGOT_TEXT_MODEL,default=j-hartmann/emotion-english-distilroberta-base"`
	HugotSentimentModel string        `env:"HUGOT_SENTIMENT_MODEL,default=cardiffnlp/twitter-roberta-base-sentiment-latest"`
	AudioEnabled        bool          `env:"AUDIO_ENABLED,default=true"`

	// LLM enrichment
	LLMProvider  string        `env:"LLM_PROVIDER,default=gemini"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	OpenAIModel  string        `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT,default=30s"`

	SampleRate int `env:"SAMPLE_RATE,default=22050"`

	// streaming
	StreamChunkSize int           `env:"STREAM_CHUNK_SIZE,default=8192"`
	CallbackTimeout time.Duration `env:"CALLBACK_TIMEOUT,default=10s"`

	// messaging and storage
	KafkaBroker      string        `env:"KAFKA_BROKER,default=localhost:9092"`
	KafkaGroupID     string        `env:"KAFKA_GROUP_ID,default=moodflow"`
	UtteranceTopic   string        `env:"KAFKA_UTTERANCE_TOPIC,default=utterance-requests"`
	ResultsTopic     string        `env:"KAFKA_RESULTS_TOPIC,default=emotion-results"`
	DynamoTable      string        `env:"DYNAMODB_TABLE,default=emotion_results"`
	DynamoBatchSize  int           `env:"DYNAMODB_BATCH_SIZE,default=25"`
	AWSEndpoint      string        `env:"AWS_ENDPOINT"`
	AWSRegion        string        `env:"AWS_REGION,default=us-west-2"`
	ValkeyAddress    string        `env:"VALKEY_INIT_ADDRESS,default=localhost:6379"`
	ValkeyPassword   string        `env:"VALKEY_PASSWORD"`
	ValkeyTLS        bool          `env:"VALKEY_TLS,default=false"`
	HealthCheckEvery time.Duration `env:"HEALTHCHECK_INTERVAL,default=15s"`
	HFHealthEndpoint string        `env:"HF_HEALTH_ENDPOINT"`
}

// Load reads the process environment into a validated Config. Call LoadEnv
// first to seed it from a .env file.
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if !oneOf(c.TextBackend, TextBackendHugot, TextBackendRemote, TextBackendNone) {
		errs = append(errs, fmt.Errorf("invalid TEXT_BACKEND %q", c.TextBackend))
	}
	if !oneOf(c.SentimentBackend, TextBackendHugot, TextBackendRemote, TextBackendVader, TextBackendNone) {
		errs = append(errs, fmt.Errorf("invalid SENTIMENT_BACKEND %q", c.SentimentBackend))
	}
	if !oneOf(c.LLMProvider, LLMProviderGemini, LLMProviderOpenAI, LLMProviderNone) {
		errs = append(errs, fmt.Errorf("invalid LLM_PROVIDER %q", c.LLMProvider))
	}
	if !oneOf(strings.ToLower(c.LogLevel), "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate))
	}
	if c.StreamChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("STREAM_CHUNK_SIZE must be positive, got %d", c.StreamChunkSize))
	}
	if c.DynamoBatchSize <= 0 || c.DynamoBatchSize > 25 {
		errs = append(errs, fmt.Errorf("DYNAMODB_BATCH_SIZE must be in [1, 25], got %d", c.DynamoBatchSize))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
