package models

const (
	FeaturePitchMean        = "pitch_mean"
	FeaturePitchStd         = "pitch_std"
	FeatureEnergyMean       = "energy_mean"
	FeatureEnergyStd        = "energy_std"
	FeatureSpectralCentroid = "spectral_centroid_mean"
	FeatureZCRMean          = "zcr_mean"
	FeatureTempo            = "tempo"
)

var AcousticFeatureKeys = []string{
	FeaturePitchMean,
	FeaturePitchStd,
	FeatureEnergyMean,
	FeatureEnergyStd,
	FeatureSpectralCentroid,
	FeatureZCRMean,
	FeatureTempo,
}

// AcousticFeatures holds either every key in AcousticFeatureKeys or none of
// them. An empty vector means "no acoustic evidence".
type AcousticFeatures map[string]float64

func (f AcousticFeatures) Empty() bool {
	return len(f) == 0
}

// Metrics copies the vector into a fresh metrics bag.
func (f AcousticFeatures) Metrics() map[string]float64 {
	out := make(map[string]float64, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
