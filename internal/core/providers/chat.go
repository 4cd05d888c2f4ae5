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
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/extract"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// ClaudeMaxDimension bounds either side of an image sent to Claude.
const ClaudeMaxDimension = 1024

// claudeFormats are passed through untouched when they fit.
var claudeFormats = []string{"jpeg", "png", "gif", "webp"}

type imagePreparer func(data []byte, filename string) (*cloud.InlineImage, error)

// ChatAdapter scores through a REST chat transport. GPT and Claude differ
// only in how an image is prepared.
type ChatAdapter struct {
	id       string
	client   cloud.ChatClient
	provider cloud.Provider
	book     *PromptBook
	prepare  imagePreparer
}

// NewGPTAdapter attaches images as sent by the user.
func NewGPTAdapter(id string, client cloud.ChatClient, provider cloud.Provider, book *PromptBook) *ChatAdapter {
	return &ChatAdapter{id: id, client: client, provider: provider, book: book, prepare: passThrough}
}

// NewClaudeAdapter downsizes images larger than 1024 px on either side and
// re-encodes formats the API does not accept.
func NewClaudeAdapter(id string, client cloud.ChatClient, provider cloud.Provider, book *PromptBook) *ChatAdapter {
	return &ChatAdapter{id: id, client: client, provider: provider, book: book, prepare: fitForClaude}
}

func passThrough(data []byte, filename string) (*cloud.InlineImage, error) {
	return &cloud.InlineImage{Data: data, MIMEType: media.ImageMIME(filename, data)}, nil
}

func fitForClaude(data []byte, _ string) (*cloud.InlineImage, error) {
	img, err := media.FitWithin(data, ClaudeMaxDimension, ClaudeMaxDimension, claudeFormats...)
	if err != nil {
		return nil, err
	}
	return &cloud.InlineImage{Data: img.Data, MIMEType: img.MIMEType}, nil
}

func (a *ChatAdapter) ID() string { return a.id }

func (a *ChatAdapter) Score(ctx context.Context, req *model.ScoringRequest) *model.ScoreResult {
	ctx, span := tracer.Start(ctx, a.id+".score")
	defer span.End()

	mode, attached, image, err := a.attachment(req)
	span.SetAttributes(attribute.String("analysis_mode", string(mode)))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failure(ctx, a.id, a.client.Model(), mode, err)
	}

	prompt, err := a.book.ScorePrompt(req, attached)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failure(ctx, a.id, a.client.Model(), mode, err)
	}

	text, err := a.client.Complete(ctx, &cloud.ChatRequest{
		System:      a.provider.SystemInstructions,
		Prompt:      prompt,
		Image:       image,
		Temperature: a.provider.Temperature,
		MaxTokens:   a.provider.MaxTokens,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failure(ctx, a.id, a.client.Model(), mode, err)
	}

	out, err := extract.ParseScore(text, a.id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failure(ctx, a.id, a.client.Model(), mode, err)
	}
	out.Model = a.client.Model()
	out.AnalysisMode = mode
	span.SetStatus(codes.Ok, "scored")
	return out
}

// attachment decides what travels with the prompt. Videos are represented
// by their pre-extracted frame.
func (a *ChatAdapter) attachment(req *model.ScoringRequest) (model.AnalysisMode, model.MediaKind, *cloud.InlineImage, error) {
	switch req.MediaKind {
	case model.MediaKindImage:
		img, err := a.prepare(req.Media, req.Filename)
		return model.AnalysisModeImage, model.MediaKindImage, img, err
	case model.MediaKindVideo:
		if !req.HasFrame() {
			return model.AnalysisModeFrame, model.MediaKindVideo, nil, frameUnavailable(req)
		}
		img, err := a.prepare(req.Frame, "frame.jpg")
		return model.AnalysisModeFrame, model.MediaKindVideo, img, err
	default:
		return model.AnalysisModeText, model.MediaKindNone, nil, nil
	}
}

func (a *ChatAdapter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return a.client.Complete(ctx, &cloud.ChatRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: a.provider.Temperature,
		MaxTokens:   a.provider.MaxTokens,
	})
}

func frameUnavailable(req *model.ScoringRequest) error {
	if errors.Is(req.FrameErr, media.ErrMediaUnreadable) {
		return req.FrameErr
	}
	if req.FrameErr != nil {
		return fmt.Errorf("%w: %w", media.ErrMediaUnreadable, req.FrameErr)
	}
	return fmt.Errorf("%w: no frame extracted from %s", media.ErrMediaUnreadable, req.Filename)
}
