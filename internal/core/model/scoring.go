// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model holds the request-scoped values exchanged between the
// scoring components: requests, per-provider results, ensembles, A/B
// verdicts and recommendations. None of them are persisted.
package model

// Default values used whenever a field could not be derived from a
// provider reply. Downstream code branches on IsError only.
const (
	DefaultScore                = 50.0
	DefaultConfidence           = 50.0
	ParseErrorConfidence        = 30.0
	TransportErrorConfidence    = 20.0
	EnsembleProviderID          = "ensemble"
	DefaultReasoningMaxLength   = 150
	DefaultRecommendationsLimit = 5
)

// ScoreResult is one provider's opinion about one piece of content. Scores
// are nominally 0-100 but are never clamped.
type ScoreResult struct {
	OverallScore         float64      `json:"overall_score" mapstructure:"overall_score"`
	TextQuality          float64      `json:"text_quality" mapstructure:"text_quality"`
	VisualAppeal         float64      `json:"visual_appeal" mapstructure:"visual_appeal"`
	EmotionalResonance   float64      `json:"emotional_resonance" mapstructure:"emotional_resonance"`
	Clarity              float64      `json:"clarity" mapstructure:"clarity"`
	BrandAlignment       float64      `json:"brand_alignment" mapstructure:"brand_alignment"`
	PlatformOptimization float64      `json:"platform_optimization" mapstructure:"platform_optimization"`
	Reasoning            string       `json:"reasoning" mapstructure:"reasoning"`
	Confidence           float64      `json:"confidence" mapstructure:"confidence"`
	ProviderID           string       `json:"provider_id" mapstructure:"-"`
	Model                string       `json:"model,omitempty" mapstructure:"-"`
	AnalysisMode         AnalysisMode `json:"analysis_mode,omitempty" mapstructure:"-"`
	IsError              bool         `json:"is_error" mapstructure:"-"`
}

// NewDefaultScoreResult returns a result with every numeric field at its
// default, ready to be overlaid by decoded provider output.
func NewDefaultScoreResult(providerID string) *ScoreResult {
	return &ScoreResult{
		OverallScore:         DefaultScore,
		TextQuality:          DefaultScore,
		VisualAppeal:         DefaultScore,
		EmotionalResonance:   DefaultScore,
		Clarity:              DefaultScore,
		BrandAlignment:       DefaultScore,
		PlatformOptimization: DefaultScore,
		Confidence:           DefaultConfidence,
		ProviderID:           providerID,
	}
}

// NewErrorScoreResult is the sentinel produced when a provider call or the
// parsing of its reply failed.
func NewErrorScoreResult(providerID string, confidence float64, err error) *ScoreResult {
	out := NewDefaultScoreResult(providerID)
	out.IsError = true
	out.Confidence = confidence
	if err != nil {
		out.Reasoning = err.Error()
	}
	return out
}

// Dimensions returns the seven numeric scores in a fixed order.
func (r *ScoreResult) Dimensions() []float64 {
	return []float64{
		r.OverallScore,
		r.TextQuality,
		r.VisualAppeal,
		r.EmotionalResonance,
		r.Clarity,
		r.BrandAlignment,
		r.PlatformOptimization,
	}
}

// SetDimensions is the inverse of Dimensions.
func (r *ScoreResult) SetDimensions(values []float64) {
	if len(values) != 7 {
		return
	}
	r.OverallScore = values[0]
	r.TextQuality = values[1]
	r.VisualAppeal = values[2]
	r.EmotionalResonance = values[3]
	r.Clarity = values[4]
	r.BrandAlignment = values[5]
	r.PlatformOptimization = values[6]
}

// EnsembleResult is the field-wise mean over the non-error results of one
// request.
type EnsembleResult struct {
	ScoreResult
	Contributors []string `json:"contributors"`
}
