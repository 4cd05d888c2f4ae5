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

// Package extract recovers structured JSON from free-form provider replies.
//
// Providers wrap answers in ```json fences, surround them with prose or
// return them bare. Extract finds the payload, decodes it and leaves all
// field-level interpretation to the caller.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseErrorKind distinguishes the two ways extraction fails.
type ParseErrorKind string

const (
	NoStructureFound   ParseErrorKind = "no_structure_found"
	MalformedStructure ParseErrorKind = "malformed_structure"
)

var (
	ErrNoStructureFound   = errors.New("no structured payload found")
	ErrMalformedStructure = errors.New("malformed structured payload")
)

// ParseError is returned by Extract. Use errors.Is with ErrNoStructureFound
// or ErrMalformedStructure to branch on the kind.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse error: %s", e.Kind)
	}
	return fmt.Sprintf("parse error: %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrNoStructureFound:
		return e.Kind == NoStructureFound
	case ErrMalformedStructure:
		return e.Kind == MalformedStructure
	}
	return false
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Document is a decoded payload.
type Document struct {
	Raw   string
	Value any
}

// Object returns the payload as a JSON object when it is one.
func (d *Document) Object() (map[string]any, bool) {
	m, ok := d.Value.(map[string]any)
	return m, ok
}

// Result exposes the payload for gjson path queries.
func (d *Document) Result() gjson.Result {
	return gjson.Parse(d.Raw)
}

// Extract locates and decodes the structured payload in raw. A fenced json
// block wins; otherwise the span from the first '{' to the last '}' is
// decoded. Only when that span is not valid JSON and a '[' ... ']' span
// encloses it is the bracket span tried, so bare lists of several objects
// still decode. A list holding a single object yields that object.
func Extract(raw string) (*Document, error) {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return decode(m[1])
	}

	open := strings.Index(raw, "{")
	if open < 0 {
		return nil, &ParseError{Kind: NoStructureFound, Err: ErrNoStructureFound}
	}
	closing := strings.LastIndex(raw, "}")
	if closing < open {
		// A '{' with no closing brace after it still has structure; report
		// it as malformed rather than decoding an empty span.
		return decode(raw[open:])
	}

	doc, err := decode(raw[open : closing+1])
	if err == nil {
		return doc, nil
	}
	if lb, rb := strings.Index(raw, "["), strings.LastIndex(raw, "]"); lb >= 0 && lb < open && rb > closing {
		if list, listErr := decode(raw[lb : rb+1]); listErr == nil {
			return list, nil
		}
	}
	return nil, err
}

func decode(candidate string) (*Document, error) {
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, &ParseError{Kind: MalformedStructure, Err: err}
	}
	return &Document{Raw: candidate, Value: value}, nil
}
