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

// Package cloud provides components for interacting with Google Cloud services.
// This file adapts the Gemini Files API to the videojob.FileService
// interface so full-video jobs can upload, poll and delete their video.
//
// Structs:
//   - GenAIFileService: Upload/Get/Delete over `genai.Files`.
package cloud

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

// GenAIFiles is the subset of genai.Files used for video uploads.
type GenAIFiles interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// GenAIFileService adapts the Gemini Files API to videojob.FileService.
type GenAIFileService struct {
	Files GenAIFiles
}

func NewGenAIFileService(files GenAIFiles) *GenAIFileService {
	return &GenAIFileService{Files: files}
}

func (s *GenAIFileService) Upload(ctx context.Context, path string, mimeType string) (*videojob.RemoteFile, error) {
	f, err := s.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: uuid.NewString() + filepath.Ext(path),
	})
	if err != nil {
		return nil, NewTransportError(ProviderKindGemini, err)
	}
	return toRemoteFile(f), nil
}

func (s *GenAIFileService) Get(ctx context.Context, name string) (*videojob.RemoteFile, error) {
	f, err := s.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, NewTransportError(ProviderKindGemini, err)
	}
	return toRemoteFile(f), nil
}

func (s *GenAIFileService) Delete(ctx context.Context, name string) error {
	if _, err := s.Files.Delete(ctx, name, nil); err != nil {
		return NewTransportError(ProviderKindGemini, err)
	}
	return nil
}

func toRemoteFile(f *genai.File) *videojob.RemoteFile {
	out := &videojob.RemoteFile{Name: f.Name, URI: f.URI, MIMEType: f.MIMEType}
	switch f.State {
	case genai.FileStateActive:
		out.State = videojob.StateActive
	case genai.FileStateFailed:
		out.State = videojob.StateFailed
	default:
		out.State = videojob.StateProcessing
	}
	return out
}
