// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jkariuki/pamoja/internal/dataset"
	"github.com/jkariuki/pamoja/internal/matchmaker"
	"github.com/jkariuki/pamoja/internal/matchmaker/storage"
	"github.com/jkariuki/pamoja/internal/models"
)

// stubLoader returns a fixed dataset snapshot.
type stubLoader struct {
	data *matchmaker.Dataset
	err  error
}

func (s *stubLoader) Load() (*matchmaker.Dataset, *dataset.LoadStats, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.data, &dataset.LoadStats{Profiles: len(s.data.Profiles)}, nil
}

func apiDataset() *matchmaker.Dataset {
	return &matchmaker.Dataset{
		Profiles: []models.Profile{
			{
				ProfileID: "p1", UserID: "u1", Age: 30,
				Country: "Kenya", Language: "Swahili", Sex: "female", Seeking: "male",
				RelationshipGoals: "long-term", AboutMe: "Love football",
			},
			{
				ProfileID: "p2", UserID: "u2", Age: 31,
				Country: "Kenya", Language: "Swahili", Sex: "male", Seeking: "female",
				RelationshipGoals: "long-term", AboutMe: "Soccer fan seeking my soul mate",
			},
		},
		Interactions: []models.InteractionRecord{
			{UserID: "u1", ProfileID: "p2", Kind: models.InteractionMatched},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *matchmaker.Engine) {
	t.Helper()

	engine, err := matchmaker.NewEngine(matchmaker.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	handler := NewHandler(engine, &stubLoader{data: apiDataset()}, store, 2)
	router := NewRouter(handler, RouterConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   0,
		RateLimitWindow: time.Minute,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, engine
}

func decodeEnvelope(t *testing.T, resp *http.Response) *models.APIResponse {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &envelope
}

func rankBody(userID string) string {
	return `{"query":{"user_id":"` + userID + `","age":30,"country":"Kenya","language":"Swahili","sex":"female","seeking":"male","relationship_goals":"long-term"},"k":10}`
}

func TestRankBeforeTraining(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/matches/rank", "application/json", strings.NewReader(rankBody("u1")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Code != "MODEL_NOT_TRAINED" {
		t.Errorf("error = %+v, want MODEL_NOT_TRAINED", envelope.Error)
	}
}

func TestTrainThenRank(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/matches/train", "application/json", nil)
	if err != nil {
		t.Fatalf("POST train: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		t.Fatalf("train status = %d (%s)", resp.StatusCode, envelope.Status)
	}

	resp, err = http.Post(srv.URL+"/api/v1/matches/rank", "application/json", strings.NewReader(rankBody("u1")))
	if err != nil {
		t.Fatalf("POST rank: %v", err)
	}
	envelope = decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rank status = %d", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %s, want success", envelope.Status)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var rankResp matchmaker.RankResponse
	if err := json.Unmarshal(data, &rankResp); err != nil {
		t.Fatalf("unmarshal rank response: %v", err)
	}
	if rankResp.Outcome != matchmaker.OutcomeRanked {
		t.Errorf("outcome = %s, want ranked", rankResp.Outcome)
	}
	if len(rankResp.Candidates) != 1 || rankResp.Candidates[0].Profile.ProfileID != "p2" {
		t.Errorf("candidates = %+v, want the single compatible profile p2", rankResp.Candidates)
	}
}

func TestRankInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/matches/rank", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "INVALID_REQUEST" {
		t.Errorf("error = %+v, want INVALID_REQUEST", envelope.Error)
	}
}

func TestRankMissingUserID(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"query":{"age":30},"k":5}`
	resp, err := http.Post(srv.URL+"/api/v1/matches/rank", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", envelope.Error)
	}
}

func TestRankEmptyOutcome(t *testing.T) {
	srv, engine := newTestServer(t)
	if err := engine.Train(context.Background(), apiDataset()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	// Nobody in the pool seeks a 90 year old male seeking male.
	body := `{"query":{"user_id":"u9","age":90,"sex":"male","seeking":"male"}}`
	resp, err := http.Post(srv.URL+"/api/v1/matches/rank", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for an empty outcome", resp.StatusCode)
	}
	if envelope.Status != "empty" {
		t.Errorf("envelope status = %s, want empty", envelope.Status)
	}
}

func TestTrainLoaderFailure(t *testing.T) {
	engine, err := matchmaker.NewEngine(matchmaker.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	handler := NewHandler(engine, &stubLoader{err: errors.New("disk gone")}, nil, 1)
	router := NewRouter(handler, RouterConfig{CORSOrigins: []string{"*"}})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/v1/matches/train", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "DATA_LOAD_ERROR" {
		t.Errorf("error = %+v, want DATA_LOAD_ERROR", envelope.Error)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	if err := engine.Train(context.Background(), apiDataset()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/matches/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		t.Fatalf("status endpoint = %d (%s)", resp.StatusCode, envelope.Status)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	var status matchmaker.TrainingStatus
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.ModelVersion != 1 || status.ProfileCount != 2 {
		t.Errorf("status = %+v", status)
	}
}

func TestHealthReadiness(t *testing.T) {
	srv, engine := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health/ready")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready before training = %d, want 503", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatalf("GET live: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live = %d, want 200 regardless of training", resp.StatusCode)
	}

	if err := engine.Train(context.Background(), apiDataset()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	resp, err = http.Get(srv.URL + "/api/v1/health/ready")
	if err != nil {
		t.Fatalf("GET ready: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready after training = %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/matches/status", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "req-12345")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-12345" {
		t.Errorf("X-Request-ID = %q, want caller-supplied id echoed", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics = %d, want 200", resp.StatusCode)
	}
}
