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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/api"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/scoring"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/services"
)

type fakeService struct {
	err         error
	submissions []*model.Submission
}

func (f *fakeService) ensemble(s *model.Submission) *model.EnsembleResult {
	out := &model.EnsembleResult{ScoreResult: *model.NewDefaultScoreResult(model.EnsembleProviderID)}
	out.OverallScore = float64(40 + len(s.Caption))
	out.Reasoning = "Ensemble of 1 models. " + s.Caption
	return out
}

func (f *fakeService) ScoreSingle(_ context.Context, s *model.Submission) (*model.EnsembleResult, error) {
	f.submissions = append(f.submissions, s)
	if f.err != nil {
		return nil, f.err
	}
	return f.ensemble(s), nil
}

func (f *fakeService) CompareAB(_ context.Context, a, b *model.Submission) (*model.ABVerdict, error) {
	f.submissions = append(f.submissions, a, b)
	if f.err != nil {
		return nil, f.err
	}
	verdict := scoring.DefaultComparator().Compare(f.ensemble(a), f.ensemble(b))
	verdict.VariantAID, verdict.VariantBID = a.VariantID, b.VariantID
	return verdict, nil
}

func (f *fakeService) Analyze(_ context.Context, s *model.Submission) (*model.AnalysisReport, error) {
	f.submissions = append(f.submissions, s)
	if f.err != nil {
		return nil, f.err
	}
	return &model.AnalysisReport{
		RequestID:       s.VariantID,
		MediaKind:       model.MediaKindNone,
		Targeting:       s.Targeting.Values(),
		Ensemble:        f.ensemble(s),
		Baseline:        50,
		Recommendations: []*model.Recommendation{},
	}, nil
}

func (f *fakeService) Providers() []string { return []string{"gpt", "gemini"} }

func router(svc api.ScoringAPI, maxUploadBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.Register(r, svc, maxUploadBytes)
	return r
}

type file struct {
	field, name string
	data        []byte
}

func post(t *testing.T, r http.Handler, path string, fields map[string]string, files ...file) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	router(&fakeService{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "providers": ["gpt", "gemini"]}`, rec.Body.String())
}

func TestScoreReadsFormFields(t *testing.T) {
	svc := &fakeService{}
	rec := post(t, router(svc, 1<<20), "/api/v1/score", map[string]string{
		"text":              "Lunch in 9",
		"target_audience":   "office workers",
		"business_category": "restaurant",
		"location":          "Seattle",
		"age_range":         "any",
	}, file{"image", "dish.png", []byte("png bytes")})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, svc.submissions, 1)
	s := svc.submissions[0]
	assert.Equal(t, "Lunch in 9", s.Caption)
	assert.Equal(t, "office workers", s.Audience)
	assert.Equal(t, "restaurant", s.Category)
	assert.Equal(t, "Seattle", s.Targeting.Location)
	assert.Equal(t, "dish.png", s.Filename)
	assert.Equal(t, []byte("png bytes"), s.Media)

	var out model.EnsembleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 50.0, out.OverallScore)
	assert.Equal(t, model.EnsembleProviderID, out.ProviderID)
}

func TestScorePrefersMediaOverImage(t *testing.T) {
	svc := &fakeService{}
	post(t, router(svc, 1<<20), "/api/v1/score", map[string]string{"text": "x"},
		file{"image", "a.png", []byte("a")}, file{"media", "b.mp4", []byte("b")})
	require.Len(t, svc.submissions, 1)
	assert.Equal(t, "b.mp4", svc.submissions[0].Filename)
}

func TestScoreRejectsEmptySubmission(t *testing.T) {
	rec := post(t, router(&fakeService{}, 1<<20), "/api/v1/score", map[string]string{"location": "Paris"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text or media is required")
}

func TestScoreRejectsNonMultipart(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"text": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router(&fakeService{}, 1<<20).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreRejectsOversizedFile(t *testing.T) {
	svc := &fakeService{}
	rec := post(t, router(svc, 1000), "/api/v1/score", map[string]string{"text": "x"},
		file{"media", "big.mp4", bytes.Repeat([]byte{1}, 1200)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, svc.submissions)
}

func TestScoreAllProvidersFailed(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w (gpt: timeout)", services.ErrAllProvidersFailed)}
	rec := post(t, router(svc, 1<<20), "/api/v1/score", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"all providers failed (gpt: timeout)"`)
}

func TestCompare(t *testing.T) {
	svc := &fakeService{}
	rec := post(t, router(svc, 1<<20), "/api/v1/ab", map[string]string{
		"text_a":          "a much longer caption",
		"text_b":          "short",
		"id_a":            "spring",
		"target_audience": "runners",
	}, file{"image_b", "b.jpg", []byte("jpeg")})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, svc.submissions, 2)
	assert.Equal(t, "runners", svc.submissions[0].Audience)
	assert.Equal(t, "runners", svc.submissions[1].Audience)
	assert.Equal(t, "b.jpg", svc.submissions[1].Filename)
	assert.Empty(t, svc.submissions[0].Media)

	var verdict model.ABVerdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.Equal(t, model.VariantA, verdict.Winner)
	assert.Equal(t, "spring", verdict.VariantAID)
}

func TestCompareTextSummary(t *testing.T) {
	rec := post(t, router(&fakeService{}, 1<<20), "/api/v1/ab?format=text", map[string]string{"text_a": "aa", "text_b": "bbbb"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "WINNER: Variant B"))
}

func TestCompareNeedsBothVariants(t *testing.T) {
	rec := post(t, router(&fakeService{}, 1<<20), "/api/v1/ab", map[string]string{"text_a": "only a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text_b")
}

func TestAnalyze(t *testing.T) {
	svc := &fakeService{}
	rec := post(t, router(svc, 1<<20), "/api/v1/analyze", map[string]string{
		"text": "hello", "request_id": "req-5", "device": "mobile",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "req-5", report.RequestID)
	assert.Equal(t, "mobile", report.Targeting["device"])
	assert.Equal(t, "any", report.Targeting["location"])
	assert.NotNil(t, report.Recommendations)
}
