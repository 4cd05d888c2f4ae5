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

package videojob_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

type scriptedFiles struct {
	uploadState videojob.State
	uploadErr   error
	polls       []videojob.State // returned in order; the last one repeats
	getCalls    int
	deleted     []string
}

func (s *scriptedFiles) Upload(_ context.Context, _ string, mimeType string) (*videojob.RemoteFile, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &videojob.RemoteFile{Name: "files/abc", URI: "https://files/abc", MIMEType: mimeType, State: s.uploadState}, nil
}

func (s *scriptedFiles) Get(_ context.Context, name string) (*videojob.RemoteFile, error) {
	idx := s.getCalls
	if idx >= len(s.polls) {
		idx = len(s.polls) - 1
	}
	s.getCalls++
	return &videojob.RemoteFile{Name: name, URI: "https://files/abc", MIMEType: "video/mp4", State: s.polls[idx]}, nil
}

func (s *scriptedFiles) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	return nil
}

func newJob(files videojob.FileService, clock *fakeClock, seen *[]videojob.Transition) *videojob.Job {
	return videojob.New(files, "/tmp/clip.mp4", "video/mp4",
		videojob.WithSleeper(clock.Sleep),
		videojob.WithObserver(func(t videojob.Transition) { *seen = append(*seen, t) }))
}

func states(seen []videojob.Transition) []videojob.State {
	out := make([]videojob.State, 0, len(seen))
	for _, t := range seen {
		out = append(out, t.To)
	}
	return out
}

func TestJobBecomesActiveAfterPolling(t *testing.T) {
	files := &scriptedFiles{
		uploadState: videojob.StateProcessing,
		polls:       []videojob.State{videojob.StateProcessing, videojob.StateActive},
	}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	remote, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "files/abc", remote.Name)
	assert.Equal(t, videojob.StateActive, job.State)
	assert.Equal(t, 4*time.Second, job.Elapsed)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.slept)
	assert.Equal(t, []videojob.State{videojob.StateProcessing, videojob.StateProcessing, videojob.StateActive}, states(seen))

	job.Release(context.Background())
	job.Release(context.Background())
	assert.Equal(t, []string{"files/abc"}, files.deleted)
}

func TestJobActiveOnUploadSkipsPolling(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateActive}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clock.slept)
	assert.Zero(t, files.getCalls)
	assert.Equal(t, []videojob.State{videojob.StateActive}, states(seen))
}

func TestJobTimesOutWhileProcessing(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateProcessing, polls: []videojob.State{videojob.StateProcessing}}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, videojob.ErrJobTimedOut))
	assert.Equal(t, videojob.StateFailed, job.State)
	assert.Equal(t, 30*time.Second, job.Elapsed)
	assert.Equal(t, 15, files.getCalls)
	assert.Len(t, clock.slept, 15)
	assert.Equal(t, videojob.StateFailed, seen[len(seen)-1].To)

	job.Release(context.Background())
	assert.Equal(t, []string{"files/abc"}, files.deleted)
}

func TestJobProviderFailure(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateProcessing, polls: []videojob.State{videojob.StateFailed}}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	_, err := job.Run(context.Background())
	assert.True(t, errors.Is(err, videojob.ErrJobFailed))
	assert.Equal(t, 1, files.getCalls)
	assert.Equal(t, []videojob.State{videojob.StateProcessing, videojob.StateFailed}, states(seen))
}

func TestJobUploadError(t *testing.T) {
	files := &scriptedFiles{uploadErr: errors.New("quota exceeded")}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	_, err := job.Run(context.Background())
	assert.True(t, errors.Is(err, videojob.ErrJobFailed))
	assert.Equal(t, []videojob.State{videojob.StateFailed}, states(seen))

	job.Release(context.Background())
	assert.Empty(t, files.deleted)
}

func TestJobHonoursCancellation(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateProcessing, polls: []videojob.State{videojob.StateProcessing}}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := job.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, videojob.StateFailed, job.State)
	assert.Zero(t, files.getCalls)
}

func TestJobRunsOnce(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateActive}
	clock := &fakeClock{}
	var seen []videojob.Transition
	job := newJob(files, clock, &seen)

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	assert.True(t, errors.Is(err, videojob.ErrJobFailed))
}

func TestCustomBudgetAndInterval(t *testing.T) {
	files := &scriptedFiles{uploadState: videojob.StateProcessing, polls: []videojob.State{videojob.StateProcessing}}
	clock := &fakeClock{}
	job := videojob.New(files, "/tmp/clip.mp4", "video/mp4",
		videojob.WithSleeper(clock.Sleep),
		videojob.WithBudget(10*time.Second),
		videojob.WithInterval(5*time.Second))

	_, err := job.Run(context.Background())
	assert.True(t, errors.Is(err, videojob.ErrJobTimedOut))
	assert.Equal(t, 2, files.getCalls)
}
