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

// Package videojob drives the asynchronous full-video analysis job: the
// video is uploaded to the provider, then polled at a fixed interval until
// the provider reports it ready, reports a failure, or the wait budget runs
// out.
//
// State machine:
//
//	SUBMITTED --upload ok--> PROCESSING --ready--> ACTIVE
//	    |                        |   ^
//	    |                        |   | poll (interval), elapsed < budget
//	    |                        +---+
//	    +--upload error--> FAILED <--provider failure | elapsed >= budget | ctx done
//
// A Job belongs to a single request and is never reused.
package videojob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type State string

const (
	StateSubmitted  State = "SUBMITTED"
	StateProcessing State = "PROCESSING"
	StateActive     State = "ACTIVE"
	StateFailed     State = "FAILED"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultBudget       = 30 * time.Second
)

var (
	// ErrJobFailed is returned when the provider reports a terminal failure
	// or the upload itself fails.
	ErrJobFailed = errors.New("video analysis job failed")
	// ErrJobTimedOut is returned when the asset is still processing once
	// the wait budget is spent.
	ErrJobTimedOut = errors.New("video analysis job timed out")
)

// RemoteFile is the provider-side handle for an uploaded video.
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
	State    State
}

// FileService is the provider contract a Job depends on.
type FileService interface {
	Upload(ctx context.Context, path string, mimeType string) (*RemoteFile, error)
	Get(ctx context.Context, name string) (*RemoteFile, error)
	Delete(ctx context.Context, name string) error
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Transition describes one observable state change.
type Transition struct {
	Handle  string
	From    State
	To      State
	Elapsed time.Duration
	Reason  string
}

// Job is one full-video analysis attempt.
type Job struct {
	Handle   string
	State    State
	Elapsed  time.Duration
	Budget   time.Duration
	Interval time.Duration

	files        FileService
	path         string
	mimeType     string
	remote       *RemoteFile
	sleep        Sleeper
	OnTransition func(Transition)
}

// Option customises a Job.
type Option func(*Job)

func WithBudget(budget time.Duration) Option {
	return func(j *Job) {
		if budget > 0 {
			j.Budget = budget
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(j *Job) {
		if interval > 0 {
			j.Interval = interval
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(j *Job) {
		if s != nil {
			j.sleep = s
		}
	}
}

func WithObserver(fn func(Transition)) Option {
	return func(j *Job) {
		j.OnTransition = fn
	}
}

// New prepares a job for the local video at path. Nothing is uploaded until
// Run is called.
func New(files FileService, path string, mimeType string, opts ...Option) *Job {
	j := &Job{
		State:    StateSubmitted,
		Budget:   DefaultBudget,
		Interval: DefaultPollInterval,
		files:    files,
		path:     path,
		mimeType: mimeType,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run uploads the video and polls until it is ACTIVE. On success the ready
// remote file is returned; every other outcome leaves the job FAILED and
// returns an error wrapping ErrJobFailed, ErrJobTimedOut or the context
// error.
func (j *Job) Run(ctx context.Context) (*RemoteFile, error) {
	if j.State != StateSubmitted {
		return nil, fmt.Errorf("%w: job already ran (state %s)", ErrJobFailed, j.State)
	}

	remote, err := j.files.Upload(ctx, j.path, j.mimeType)
	if err != nil {
		j.transition(ctx, StateFailed, err.Error())
		return nil, fmt.Errorf("%w: upload: %v", ErrJobFailed, err)
	}
	j.remote = remote
	j.Handle = remote.Name

	switch remote.State {
	case StateActive:
		j.transition(ctx, StateActive, "ready on upload")
		return remote, nil
	case StateFailed:
		j.transition(ctx, StateFailed, "provider rejected upload")
		return nil, fmt.Errorf("%w: provider rejected %s", ErrJobFailed, remote.Name)
	}
	j.transition(ctx, StateProcessing, "upload acknowledged")

	for j.Elapsed < j.Budget {
		if err := j.sleep(ctx, j.Interval); err != nil {
			j.transition(ctx, StateFailed, err.Error())
			return nil, err
		}
		j.Elapsed += j.Interval

		current, err := j.files.Get(ctx, j.Handle)
		if err != nil {
			j.transition(ctx, StateFailed, err.Error())
			return nil, fmt.Errorf("%w: poll: %v", ErrJobFailed, err)
		}
		switch current.State {
		case StateActive:
			j.remote = current
			j.transition(ctx, StateActive, "ready")
			return current, nil
		case StateFailed:
			j.transition(ctx, StateFailed, "provider reported failure")
			return nil, fmt.Errorf("%w: provider reported failure for %s", ErrJobFailed, j.Handle)
		default:
			j.transition(ctx, StateProcessing, "still processing")
		}
	}

	j.transition(ctx, StateFailed, "wait budget exhausted")
	return nil, fmt.Errorf("%w after %s", ErrJobTimedOut, j.Elapsed)
}

// Release deletes the remote artifact, if one was created. It is safe to
// call more than once and is meant to be deferred right after New.
func (j *Job) Release(ctx context.Context) {
	if j.remote == nil || j.remote.Name == "" {
		return
	}
	name := j.remote.Name
	j.remote = nil
	if err := j.files.Delete(context.WithoutCancel(ctx), name); err != nil {
		slog.WarnContext(ctx, "failed to delete uploaded video", "handle", name, "error", err)
	}
}

func (j *Job) transition(ctx context.Context, to State, reason string) {
	t := Transition{Handle: j.Handle, From: j.State, To: to, Elapsed: j.Elapsed, Reason: reason}
	j.State = to

	slog.DebugContext(ctx, "video job transition",
		"handle", t.Handle, "from", t.From, "to", t.To, "elapsed", t.Elapsed.String(), "reason", reason)
	trace.SpanFromContext(ctx).AddEvent("video_job.transition", trace.WithAttributes(
		attribute.String("handle", t.Handle),
		attribute.String("from", string(t.From)),
		attribute.String("to", string(t.To)),
		attribute.Int64("elapsed_ms", t.Elapsed.Milliseconds()),
	))
	if j.OnTransition != nil {
		j.OnTransition(t)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
