package models

// UtteranceRequest is the message carried on the utterance request topic.
type UtteranceRequest struct {
	UtteranceID string  `json:"utterance_id"`
	SessionID   string  `json:"session_id"`
	Text        string  `json:"text"`
	Timestamp   float64 `json:"timestamp"`
	UseLLM      bool    `json:"use_llm"`
}

// SessionEmotionResult ties a fused result to the interview session and
// utterance that produced it.
type SessionEmotionResult struct {
	EmotionResult
	UtteranceID string `json:"utterance_id"`
	SessionID   string `json:"session_id"`
	Source      string `json:"source"`
}

const (
	SourceText   = "text"
	SourceStream = "stream"
)
