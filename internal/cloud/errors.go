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
// This file defines the transport error shared by every outbound call.
package cloud

import (
	"fmt"
	"net/http"
)

// TransportError reports a provider call that did not produce a usable reply:
// network failures, non-2xx statuses, quota rejections and empty bodies.
type TransportError struct {
	Provider   string
	StatusCode int // zero when no HTTP response was received
	Message    string
	Err        error
}

func NewTransportError(provider string, err error) *TransportError {
	return &TransportError{Provider: provider, Err: err}
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status=%d %s: %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode), msg)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
