package emotion

import "errors"

var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrEmptyPrediction  = errors.New("classifier returned no predictions")
	ErrNoJSONObject     = errors.New("no JSON object in response")
)
