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

package providers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/extract"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

// DegradedPrefix marks reasoning produced from a single frame after the
// full-video job failed.
const DegradedPrefix = "[frame-only, degraded analysis] "

// GeminiAdapter scores through the Gemini models API. Videos are uploaded
// and analysed whole; when that job fails the extracted frame is scored
// instead.
type GeminiAdapter struct {
	id         string
	model      *cloud.QuotaAwareGenerativeAIModel
	files      videojob.FileService
	book       *PromptBook
	jobOptions []videojob.Option

	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
}

// NewGeminiAdapter builds the adapter. files may be nil, in which case
// every video is scored from its frame.
func NewGeminiAdapter(id string, m *cloud.QuotaAwareGenerativeAIModel, files videojob.FileService, book *PromptBook, jobOptions ...videojob.Option) *GeminiAdapter {
	meter := otel.Meter(cor.MeterName)
	inputTokens, err := meter.Int64Counter(id + ".token.input")
	if err != nil {
		slog.Warn("error creating input token counter", "provider", id, "error", err)
	}
	outputTokens, err := meter.Int64Counter(id + ".token.output")
	if err != nil {
		slog.Warn("error creating output token counter", "provider", id, "error", err)
	}
	return &GeminiAdapter{
		id:           id,
		model:        m,
		files:        files,
		book:         book,
		jobOptions:   jobOptions,
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
	}
}

func (a *GeminiAdapter) ID() string { return a.id }

func (a *GeminiAdapter) Score(ctx context.Context, req *model.ScoringRequest) *model.ScoreResult {
	ctx, span := tracer.Start(ctx, a.id+".score")
	defer span.End()

	var out *model.ScoreResult
	switch req.MediaKind {
	case model.MediaKindImage:
		out = a.scoreInline(ctx, req, req.Media, media.ImageMIME(req.Filename, req.Media), model.MediaKindImage, model.AnalysisModeImage)
	case model.MediaKindVideo:
		out = a.scoreVideo(ctx, req)
	default:
		out = a.scoreInline(ctx, req, nil, "", model.MediaKindNone, model.AnalysisModeText)
	}

	span.SetAttributes(attribute.String("analysis_mode", string(out.AnalysisMode)))
	if out.IsError {
		span.SetStatus(codes.Error, out.Reasoning)
	} else {
		span.SetStatus(codes.Ok, "scored")
	}
	return out
}

func (a *GeminiAdapter) scoreVideo(ctx context.Context, req *model.ScoringRequest) *model.ScoreResult {
	if a.files != nil && req.VideoPath != "" {
		job := videojob.New(a.files, req.VideoPath, media.DetectMIME(req.Filename, req.Media), a.jobOptions...)
		defer job.Release(ctx)

		remote, err := job.Run(ctx)
		if err == nil {
			prompt, err := a.book.VideoPrompt(req)
			if err != nil {
				return failure(ctx, a.id, a.model.ModelName, model.AnalysisModeFullVideo, err)
			}
			return a.generate(ctx, model.AnalysisModeFullVideo, cloud.NewTextPart(prompt), cloud.NewFileData(remote.URI, remote.MIMEType))
		}
		slog.WarnContext(ctx, "full video analysis unavailable, scoring extracted frame",
			"provider", a.id, "handle", job.Handle, "state", job.State, "error", err)
	}

	if !req.HasFrame() {
		return failure(ctx, a.id, a.model.ModelName, model.AnalysisModeFrameFallback, frameUnavailable(req))
	}
	out := a.scoreInline(ctx, req, req.Frame, "image/jpeg", model.MediaKindVideo, model.AnalysisModeFrameFallback)
	if !out.IsError {
		out.Reasoning = DegradedPrefix + out.Reasoning
	}
	return out
}

func (a *GeminiAdapter) scoreInline(ctx context.Context, req *model.ScoringRequest, data []byte, mimeType string, attached model.MediaKind, mode model.AnalysisMode) *model.ScoreResult {
	prompt, err := a.book.ScorePrompt(req, attached)
	if err != nil {
		return failure(ctx, a.id, a.model.ModelName, mode, err)
	}
	parts := []*genai.Part{cloud.NewTextPart(prompt)}
	if len(data) > 0 {
		parts = append(parts, cloud.NewInlineData(data, mimeType))
	}
	return a.generate(ctx, mode, parts...)
}

func (a *GeminiAdapter) generate(ctx context.Context, mode model.AnalysisMode, parts ...*genai.Part) *model.ScoreResult {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	text, err := cloud.GenerateMultiModalResponse(ctx, a.inputTokens, a.outputTokens, a.model, contents)
	if err != nil {
		return failure(ctx, a.id, a.model.ModelName, mode, err)
	}
	out, err := extract.ParseScore(text, a.id)
	if err != nil {
		return failure(ctx, a.id, a.model.ModelName, mode, err)
	}
	out.Model = a.model.ModelName
	out.AnalysisMode = mode
	return out
}

// Complete sends prompt with system replacing the configured instructions.
func (a *GeminiAdapter) Complete(ctx context.Context, system, prompt string) (string, error) {
	m := *a.model
	if a.model.GenerativeContentConfig != nil {
		cfg := *a.model.GenerativeContentConfig
		m.GenerativeContentConfig = &cfg
	} else {
		m.GenerativeContentConfig = &genai.GenerateContentConfig{}
	}
	if system != "" {
		m.GenerativeContentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{cloud.NewTextPart(system)}}
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{cloud.NewTextPart(prompt)}}}
	return cloud.GenerateMultiModalResponse(ctx, a.inputTokens, a.outputTokens, &m, contents)
}
