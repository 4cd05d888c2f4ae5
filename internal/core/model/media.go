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

// MediaKind is the coarse class of an uploaded asset.
type MediaKind string

const (
	MediaKindImage   MediaKind = "image"
	MediaKindVideo   MediaKind = "video"
	MediaKindUnknown MediaKind = "unknown"
	MediaKindNone    MediaKind = "none"
)

// AnalysisMode tags how a provider actually looked at the content.
type AnalysisMode string

const (
	AnalysisModeText          AnalysisMode = "text"
	AnalysisModeImage         AnalysisMode = "image"
	AnalysisModeFrame         AnalysisMode = "frame"
	AnalysisModeFullVideo     AnalysisMode = "full-video"
	AnalysisModeFrameFallback AnalysisMode = "frame-fallback"
)

// Variant labels the two sides of an A/B comparison.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)
