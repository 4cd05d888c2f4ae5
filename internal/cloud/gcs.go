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
// This file holds the Cloud Storage helpers: parsing gs:// URIs, downloading
// trigger media and staging videos for the Vertex AI backend.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

const stagingPrefix = "video-staging/"

// GCSObject is a reference to a Cloud Storage object.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "video/mp4").
}

// URI renders the object as gs://bucket/name.
func (o GCSObject) URI() string {
	return "gs://" + o.Bucket + "/" + o.Name
}

// ParseGCSURI splits gs://bucket/object into its parts.
func ParseGCSURI(uri string) (GCSObject, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return GCSObject{}, fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, name, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || name == "" {
		return GCSObject{}, fmt.Errorf("gs:// uri needs a bucket and an object: %q", uri)
	}
	return GCSObject{Bucket: bucket, Name: name}, nil
}

// ReadGCSObject downloads an object fully into memory, refusing anything
// larger than maxBytes (when > 0).
func ReadGCSObject(ctx context.Context, client *storage.Client, obj GCSObject, maxBytes int64) ([]byte, error) {
	reader, err := client.Bucket(obj.Bucket).Object(obj.Name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", obj.URI(), err)
	}
	defer reader.Close()
	if maxBytes > 0 && reader.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", obj.URI(), reader.Attrs.Size, maxBytes)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", obj.URI(), err)
	}
	return data, nil
}

// GCSFileService implements videojob.FileService by staging the video in a
// bucket. Vertex AI reads gs:// URIs directly, so an object that exists is
// already ACTIVE.
type GCSFileService struct {
	Client *storage.Client
	Bucket string
}

func NewGCSFileService(client *storage.Client, bucket string) *GCSFileService {
	return &GCSFileService{Client: client, Bucket: bucket}
}

func (s *GCSFileService) Upload(ctx context.Context, localPath string, mimeType string) (*videojob.RemoteFile, error) {
	if s.Bucket == "" {
		return nil, errors.New("no video staging bucket configured")
	}
	in, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	name := path.Join(stagingPrefix, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))
	w := s.Client.Bucket(s.Bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := io.Copy(w, in); err != nil {
		_ = w.Close()
		return nil, NewTransportError(VideoBackendGCS, err)
	}
	if err := w.Close(); err != nil {
		return nil, NewTransportError(VideoBackendGCS, err)
	}

	obj := GCSObject{Bucket: s.Bucket, Name: name, MIMEType: mimeType}
	return &videojob.RemoteFile{Name: name, URI: obj.URI(), MIMEType: mimeType, State: videojob.StateActive}, nil
}

func (s *GCSFileService) Get(ctx context.Context, name string) (*videojob.RemoteFile, error) {
	attrs, err := s.Client.Bucket(s.Bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &videojob.RemoteFile{Name: name, State: videojob.StateFailed}, nil
	}
	if err != nil {
		return nil, NewTransportError(VideoBackendGCS, err)
	}
	obj := GCSObject{Bucket: s.Bucket, Name: name}
	return &videojob.RemoteFile{Name: name, URI: obj.URI(), MIMEType: attrs.ContentType, State: videojob.StateActive}, nil
}

func (s *GCSFileService) Delete(ctx context.Context, name string) error {
	err := s.Client.Bucket(s.Bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return NewTransportError(VideoBackendGCS, err)
	}
	return nil
}

// GCSMediaReader downloads the media referenced by a trigger message.
type GCSMediaReader struct {
	Client   *storage.Client
	MaxBytes int64
}

// NewGCSMediaReader reads trigger media through client. maxBytes <= 0 means no cap.
func NewGCSMediaReader(client *storage.Client, maxBytes int64) *GCSMediaReader {
	return &GCSMediaReader{Client: client, MaxBytes: maxBytes}
}

// Read fetches the object named by a gs:// uri.
//
// Inputs:
//   - ctx: Bounds the download.
//   - uri: A gs://bucket/object reference taken from the trigger message.
//
// Returns:
//   - The object bytes, or an error when the uri is malformed, the object is
//     missing or it exceeds MaxBytes.
func (r *GCSMediaReader) Read(ctx context.Context, uri string) ([]byte, error) {
	obj, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	if r.Client == nil {
		return nil, errors.New("no storage client configured")
	}
	return ReadGCSObject(ctx, r.Client, obj, r.MaxBytes)
}
