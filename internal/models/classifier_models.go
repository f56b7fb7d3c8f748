package models

// Prediction is one ranked entry returned by a classifier. The first entry of
// a slice is the top prediction.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type (
	HFInferenceRequest struct {
		Inputs string `json:"inputs"`
	}

	// HFInferenceResponse is either [[{label,score}...]] or [{label,score}...]
	// depending on the endpoint; see clients.decodePredictions.
	HFInferenceResponse [][]Prediction
)
