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

package model

// ExampleScore is the shape shown to providers as a few-shot answer. It
// carries only the fields a provider is asked to return.
type ExampleScore struct {
	OverallScore         float64  `json:"overall_score"`
	TextQuality          float64  `json:"text_quality"`
	VisualAppeal         float64  `json:"visual_appeal"`
	EmotionalResonance   float64  `json:"emotional_resonance"`
	Clarity              float64  `json:"clarity"`
	BrandAlignment       float64  `json:"brand_alignment"`
	PlatformOptimization float64  `json:"platform_optimization"`
	Reasoning            string   `json:"reasoning"`
	Confidence           *float64 `json:"confidence,omitempty"`
}

// GetExampleScore returns the few-shot score example. Confidence is only
// present when the prompt asks for it.
func GetExampleScore(includeConfidence bool) *ExampleScore {
	out := &ExampleScore{
		OverallScore:         68,
		TextQuality:          72,
		VisualAppeal:         64,
		EmotionalResonance:   70,
		Clarity:              75,
		BrandAlignment:       66,
		PlatformOptimization: 61,
		Reasoning:            "Warm, specific caption with a clear lunch-hour hook; the photo is well lit but the call to action is buried at the end.",
	}
	if includeConfidence {
		c := 70.0
		out.Confidence = &c
	}
	return out
}

// ExampleRecommendations wraps the few-shot recommendation answer.
type ExampleRecommendations struct {
	Suggestions []*Recommendation `json:"suggestions"`
}

func GetExampleRecommendations() *ExampleRecommendations {
	return &ExampleRecommendations{
		Suggestions: []*Recommendation{
			{Suggestion: "Open with the price point (\"$9 lunch in 9 minutes\") instead of the atmosphere line.", EstimatedImpact: 8},
			{Suggestion: "Replace #food with two local tags such as #SeattleLunch and #CapitolHillEats.", EstimatedImpact: 4.5},
			{Suggestion: "Drop the second emoji run; it pushes the call to action below the fold.", EstimatedImpact: 2.5},
		},
	}
}
