package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

const testJobToken = "job-secret"

func intRef(v int) *int { return &v }

func int64Ref(v int64) *int64 { return &v }

func newTestRouter(t *testing.T, swaggerEnabled bool) http.Handler {
	t.Helper()

	matches := memory.NewMatchRepository(id.NewSequence("match"), []match.Match{
		{
			MatchID:   100,
			FixtureID: int64Ref(9000),
			Date:      time.Date(2024, time.March, 1, 19, 0, 0, 0, time.UTC),
			Status:    match.StatusFinished,
			Scores:    match.Scores{Home: intRef(2), Away: intRef(1)},
		},
		{
			MatchID: 101,
			Date:    time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC),
			Status:  match.StatusLive,
			Scores:  match.Scores{Home: intRef(0), Away: intRef(0)},
		},
	})

	stats := memory.NewMatchStatsRepository(id.NewSequence("stats"))
	if _, err := stats.Create(context.Background(), matchstats.MatchStats{
		MatchID:     100,
		DataQuality: matchstats.QualityMinimal,
	}); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	posts := memory.NewPostRepository(id.NewSequence("post"), []prediction.Post{
		{
			ID:       "p-1",
			AuthorID: "u-1",
			PostType: prediction.PostTypePrediction,
			Prediction: &prediction.Prediction{
				MatchID: int64Ref(100),
				Events: []prediction.LegacyEvent{
					{Event: "1", Coefficient: 1.8},
					{Event: "X", Coefficient: 3.2},
				},
			},
		},
		{
			ID:       "p-2",
			AuthorID: "u-2",
			PostType: prediction.PostTypePrediction,
			Prediction: &prediction.Prediction{
				MatchID: int64Ref(101),
				Events:  []prediction.LegacyEvent{{Event: "2", Coefficient: 4.0}},
			},
		},
	})

	logger := logging.NewNop()
	settlementService := usecase.NewSettlementService(
		posts,
		memory.NewOutcomeGroupRepository(nil),
		matches,
		stats,
		memory.NewPredictionStatsRepository(id.NewSequence("settlement")),
		usecase.SettlementConfig{MaxWorkers: 2},
		logger,
	)
	handler := NewHandler(usecase.NewMatchQueryService(matches, stats), settlementService, logger)
	return NewRouter(handler, logger, swaggerEnabled, nil, testJobToken)
}

func serve(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %s", rec.Body.String())
	}
	return data
}

func TestListMatches_FiltersByStatus(t *testing.T) {
	router := newTestRouter(t, false)

	rec := serve(router, http.MethodGet, "/v1/matches?status=finished&sort=-date", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if got, _ := data["totalDocs"].(float64); got != 1 {
		t.Fatalf("expected totalDocs=1, got %v", data["totalDocs"])
	}
	docs, _ := data["docs"].([]any)
	if len(docs) != 1 {
		t.Fatalf("expected one doc, got %d", len(docs))
	}
	first, _ := docs[0].(map[string]any)
	if got, _ := first["matchId"].(float64); got != 100 {
		t.Fatalf("expected matchId=100, got %v", first["matchId"])
	}
}

func TestListMatches_RejectsBadQuery(t *testing.T) {
	router := newTestRouter(t, false)

	for _, target := range []string{
		"/v1/matches?from=01-03-2024",
		"/v1/matches?from=2024-03-05&to=2024-03-01",
		"/v1/matches?status=abandoned",
		"/v1/matches?sort=name",
		"/v1/matches?has_stats=maybe",
		"/v1/matches?limit=-1",
	} {
		rec := serve(router, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestListMatches_ToIncludesWholeDay(t *testing.T) {
	router := newTestRouter(t, false)

	rec := serve(router, http.MethodGet, "/v1/matches?from=2024-03-01&to=2024-03-01", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeData(t, rec)
	if got, _ := data["totalDocs"].(float64); got != 1 {
		t.Fatalf("expected the evening kickoff to match, got totalDocs=%v", data["totalDocs"])
	}
}

func TestGetMatchAndStats(t *testing.T) {
	router := newTestRouter(t, false)

	rec := serve(router, http.MethodGet, "/v1/matches/100", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, _ := decodeData(t, rec)["status"].(string); got != string(match.StatusFinished) {
		t.Fatalf("unexpected status: %v", got)
	}

	rec = serve(router, http.MethodGet, "/v1/matches/100/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for stats, got %d", rec.Code)
	}
	if got, _ := decodeData(t, rec)["dataQuality"].(string); got != string(matchstats.QualityMinimal) {
		t.Fatalf("unexpected dataQuality: %v", got)
	}

	if rec := serve(router, http.MethodGet, "/v1/matches/101/stats", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing stats, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/v1/matches/999", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown match, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/v1/matches/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non numeric id, got %d", rec.Code)
	}
}

func TestSettlePost_RequiresTokenAndActor(t *testing.T) {
	router := newTestRouter(t, false)

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "no token", headers: map[string]string{headerActorRole: "admin", headerActorID: "a-1"}, want: http.StatusUnauthorized},
		{name: "no actor", headers: map[string]string{headerJobToken: testJobToken}, want: http.StatusUnauthorized},
		{name: "user without id", headers: map[string]string{headerJobToken: testJobToken, headerActorRole: "user"}, want: http.StatusUnauthorized},
		{name: "other user", headers: map[string]string{headerJobToken: testJobToken, headerActorRole: "user", headerActorID: "u-2"}, want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := serve(router, http.MethodPost, "/v1/posts/p-1/settlement", "", tc.headers)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestSettlePost_OwnerSettlesThenReads(t *testing.T) {
	router := newTestRouter(t, false)

	if rec := serve(router, http.MethodGet, "/v1/posts/p-1/settlement", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before settlement, got %d", rec.Code)
	}

	headers := map[string]string{headerJobToken: testJobToken, headerActorRole: "user", headerActorID: "u-1"}
	rec := serve(router, http.MethodPost, "/v1/posts/p-1/settlement", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(router, http.MethodGet, "/v1/posts/p-1/settlement", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on read, got %d", rec.Code)
	}
	data := decodeData(t, rec)
	summary, _ := data["summary"].(map[string]any)
	if got, _ := summary["won"].(float64); got != 1 {
		t.Fatalf("expected one won pick, got %v", summary["won"])
	}
	if got, _ := summary["lost"].(float64); got != 1 {
		t.Fatalf("expected one lost pick, got %v", summary["lost"])
	}
	if got, _ := data["postId"].(string); got != "p-1" {
		t.Fatalf("unexpected postId: %v", data["postId"])
	}
}

func TestSettlePost_UnfinishedMatchConflicts(t *testing.T) {
	router := newTestRouter(t, false)

	headers := map[string]string{headerJobToken: testJobToken, headerActorRole: "system"}
	rec := serve(router, http.MethodPost, "/v1/posts/p-2/settlement", "", headers)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunSettleFinishedJob(t *testing.T) {
	router := newTestRouter(t, false)
	headers := map[string]string{headerJobToken: testJobToken}

	if rec := serve(router, http.MethodPost, "/v1/internal/jobs/settle-finished", `{"unknown":1}`, headers); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodPost, "/v1/internal/jobs/settle-finished", `{"max_workers":1000}`, headers); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too many workers, got %d", rec.Code)
	}

	rec := serve(router, http.MethodPost, "/v1/internal/jobs/settle-finished", "", headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if got, _ := data["match_count"].(float64); got != 1 {
		t.Fatalf("expected one finished match, got %v", data["match_count"])
	}
	if got, _ := data["settled_count"].(float64); got != 1 {
		t.Fatalf("expected one settled post, got %v", data["settled_count"])
	}
}

func TestSwaggerRoutesFollowFlag(t *testing.T) {
	if rec := serve(newTestRouter(t, false), http.MethodGet, "/openapi.yaml", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with swagger disabled, got %d", rec.Code)
	}

	rec := serve(newTestRouter(t, true), http.MethodGet, "/openapi.yaml", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with swagger enabled, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Football Insights API") {
		t.Fatalf("unexpected openapi body")
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag on openapi response")
	}
	cached := serve(newTestRouter(t, true), http.MethodGet, "/openapi.yaml", "", map[string]string{"If-None-Match": etag})
	if cached.Code != http.StatusNotModified {
		t.Fatalf("expected 304 for matching ETag, got %d", cached.Code)
	}
}
