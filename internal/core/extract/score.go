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

package extract

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// DecodeScore overlays a decoded reply onto a default ScoreResult. Missing
// fields keep their defaults and numeric strings such as "72" are accepted.
func DecodeScore(doc *Document, providerID string) (*model.ScoreResult, error) {
	obj, ok := doc.Object()
	if !ok {
		return nil, &ParseError{Kind: MalformedStructure, Err: fmt.Errorf("expected an object, got %T", doc.Value)}
	}

	out := model.NewDefaultScoreResult(providerID)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(obj); err != nil {
		return nil, &ParseError{Kind: MalformedStructure, Err: err}
	}
	out.Reasoning = strings.TrimSpace(out.Reasoning)
	out.ProviderID = providerID
	return out, nil
}

// ParseScore runs Extract and DecodeScore over a raw provider reply.
func ParseScore(raw string, providerID string) (*model.ScoreResult, error) {
	doc, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return DecodeScore(doc, providerID)
}
