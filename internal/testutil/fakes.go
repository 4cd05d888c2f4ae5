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

package test

import (
	"context"
	"errors"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

// FakeChatClient records requests and answers with Reply or Err.
type FakeChatClient struct {
	mu       sync.Mutex
	ModelID  string
	Reply    string
	Err      error
	Requests []*cloud.ChatRequest
}

func (f *FakeChatClient) Complete(_ context.Context, in *cloud.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, in)
	return f.Reply, f.Err
}

func (f *FakeChatClient) Model() string {
	if f.ModelID == "" {
		return "fake-model"
	}
	return f.ModelID
}

func (f *FakeChatClient) Last() *cloud.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return nil
	}
	return f.Requests[len(f.Requests)-1]
}

// FakeGenerator stands in for genai.Models.
type FakeGenerator struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Contents [][]*genai.Content
	Configs  []*genai.GenerateContentConfig
}

func (f *FakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Contents = append(f.Contents, contents)
	f.Configs = append(f.Configs, config)
	if f.Err != nil {
		return nil, f.Err
	}
	return &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.Reply}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5},
	}, nil
}

// Parts returns the parts of the n-th call.
func (f *FakeGenerator) Parts(n int) []*genai.Part {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n >= len(f.Contents) || len(f.Contents[n]) == 0 {
		return nil
	}
	return f.Contents[n][0].Parts
}

func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Contents)
}

// FakeFiles is a scripted videojob.FileService.
type FakeFiles struct {
	mu          sync.Mutex
	UploadState videojob.State
	UploadErr   error
	PollState   videojob.State
	Uploads     int
	Polls       int
	Deleted     []string
}

func (f *FakeFiles) Upload(_ context.Context, _ string, mimeType string) (*videojob.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads++
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	return &videojob.RemoteFile{Name: "files/video-1", URI: "https://files/video-1", MIMEType: mimeType, State: f.UploadState}, nil
}

func (f *FakeFiles) Get(_ context.Context, name string) (*videojob.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Polls++
	return &videojob.RemoteFile{Name: name, URI: "https://files/video-1", MIMEType: "video/mp4", State: f.PollState}, nil
}

func (f *FakeFiles) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, name)
	return nil
}

// NoSleep is a videojob.Sleeper that returns at once.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// FakeFrameExtractor returns Frame or Err and records the paths it saw.
type FakeFrameExtractor struct {
	mu    sync.Mutex
	Frame []byte
	Err   error
	Paths []string
}

func (f *FakeFrameExtractor) ExtractFrame(_ context.Context, videoPath string) (*media.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths = append(f.Paths, videoPath)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Frame == nil {
		return nil, errors.New("no frame configured")
	}
	return &media.Image{Data: f.Frame, MIMEType: "image/jpeg", Width: 8, Height: 8}, nil
}

// StubScorer returns a copy of Result, or an error result when Result is
// nil. Requests are recorded.
type StubScorer struct {
	mu        sync.Mutex
	Name      string
	Result    *model.ScoreResult
	ByCaption map[string]*model.ScoreResult // overrides Result
	Reply     string                        // answer for Complete
	ReplyErr  error
	Requests  []*model.ScoringRequest
	Prompts   []string
}

func (s *StubScorer) ID() string { return s.Name }

func (s *StubScorer) Score(_ context.Context, req *model.ScoringRequest) *model.ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	result := s.Result
	if r, ok := s.ByCaption[req.Caption]; ok {
		result = r
	}
	if result == nil {
		return model.NewErrorScoreResult(s.Name, model.TransportErrorConfidence, errors.New(s.Name+" unavailable"))
	}
	out := *result
	out.ProviderID = s.Name
	return &out
}

func (s *StubScorer) Complete(_ context.Context, _ string, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	return s.Reply, s.ReplyErr
}

// Score builds a successful result with every dimension at overall.
func Score(overall float64, reasoning string) *model.ScoreResult {
	r := model.NewDefaultScoreResult("")
	r.SetDimensions([]float64{overall, overall, overall, overall, overall, overall, overall})
	r.Reasoning = reasoning
	r.Confidence = 70
	return r
}

// FakePublisher records published messages.
type FakePublisher struct {
	mu         sync.Mutex
	Err        error
	Messages   [][]byte
	Attributes []map[string]string
}

func (p *FakePublisher) Publish(_ context.Context, data []byte, attributes map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, data)
	p.Attributes = append(p.Attributes, attributes)
	return nil
}

// FakeMediaSource serves media by uri.
type FakeMediaSource struct {
	Objects map[string][]byte
}

func (s *FakeMediaSource) Read(_ context.Context, uri string) ([]byte, error) {
	data, ok := s.Objects[uri]
	if !ok {
		return nil, errors.New("object not found: " + uri)
	}
	return data, nil
}
