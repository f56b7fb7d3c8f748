package emotion

import "github.com/spacesedan/moodflow/internal/models"

const (
	textHighThreshold  = 0.8
	textLowThreshold   = 0.4
	audioHighThreshold = 0.7
	audioLowThreshold  = 0.3

	// unknownAudioFeature stands in for a missing energy or pitch feature.
	unknownAudioFeature = 0.5
)

// IntensityFromConfidence buckets a text confidence: > 0.8 high, < 0.4 low,
// medium otherwise (both boundaries fall in medium).
func IntensityFromConfidence(confidence float64) models.Intensity {
	switch {
	case confidence > textHighThreshold:
		return models.IntensityHigh
	case confidence < textLowThreshold:
		return models.IntensityLow
	default:
		return models.IntensityMedium
	}
}

// AudioIntensity averages energy_mean and pitch_std and buckets the score at
// 0.3 and 0.7. Missing features count as 0.5.
func AudioIntensity(features models.AcousticFeatures) models.Intensity {
	energy, ok := features[models.FeatureEnergyMean]
	if !ok {
		energy = unknownAudioFeature
	}
	pitchStd, ok := features[models.FeaturePitchStd]
	if !ok {
		pitchStd = unknownAudioFeature
	}

	score := (energy + pitchStd) / 2
	switch {
	case score > audioHighThreshold:
		return models.IntensityHigh
	case score < audioLowThreshold:
		return models.IntensityLow
	default:
		return models.IntensityMedium
	}
}
