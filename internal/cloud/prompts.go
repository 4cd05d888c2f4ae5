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

package cloud

// Default prompt templates. They are text/template sources rendered with an
// upper-case vocabulary (CAPTION, CONTEXT, CATEGORY, AUDIENCE, MEDIA_KIND,
// EXAMPLE_JSON, INCLUDE_CONFIDENCE, BASELINE, FOCUS) and may be replaced
// wholesale from [prompt_templates] in TOML.

const DefaultScorePrompt = `Analyze this {{.CATEGORY}} content for {{.CONTEXT}}.

Text: {{.CAPTION}}
{{if eq .MEDIA_KIND "image"}}
An image is attached. Judge its composition, colour and how well it supports the text.
{{else if eq .MEDIA_KIND "video"}}
A single frame from the post's video is attached. Judge the frame as the video's thumbnail.
{{end}}
Score each dimension from 0 to 100. Most real posts land between 40 and 80; reserve
scores above 85 for exceptional content.

Provide JSON with: overall_score, text_quality, visual_appeal, emotional_resonance,
clarity, brand_alignment, platform_optimization, reasoning (string){{if .INCLUDE_CONFIDENCE}}, confidence (0-100){{end}}.

Example:
` + "```json" + `
{{.EXAMPLE_JSON}}
` + "```"

const DefaultVideoPrompt = `Analyze this {{.CATEGORY}} video post for {{.CONTEXT}}.

Caption: {{.CAPTION}}

Watch the whole video. Consider the hook in the first three seconds, pacing and cuts,
motion, audio and music, on-screen text, and whether the ending invites a share.

Score each dimension from 0 to 100. Most real posts land between 40 and 80.

Provide JSON with: overall_score, text_quality, visual_appeal, emotional_resonance,
clarity, brand_alignment, platform_optimization, reasoning (string){{if .INCLUDE_CONFIDENCE}}, confidence (0-100){{end}}.

Example:
` + "```json" + `
{{.EXAMPLE_JSON}}
` + "```"

const DefaultRecommendPrompt = `A {{.MEDIA_KIND}} post for {{.CONTEXT}} currently scores {{printf "%.1f" .BASELINE}}/100
for predicted engagement.

Caption: {{.CAPTION}}

Suggest five concrete edits that would raise the score. Focus on {{.FOCUS}}.
For each edit estimate the change in overall score as a signed number of points.

Return JSON shaped like:
` + "```json" + `
{{.EXAMPLE_JSON}}
` + "```"
