package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplens/hooplens/internal/api"
	"github.com/hooplens/hooplens/internal/cache"
	"github.com/hooplens/hooplens/internal/config"
	"github.com/hooplens/hooplens/internal/dataset"
	"github.com/hooplens/hooplens/internal/llm"
	"github.com/hooplens/hooplens/internal/query"
	"github.com/hooplens/hooplens/internal/stats"
	"github.com/hooplens/hooplens/internal/storage"
)

// scriptedChat returns canned replies in order, then repeats the last one.
type scriptedChat struct {
	replies []string
	calls   int
}

func (s *scriptedChat) Chat(_ context.Context, _ []llm.Message, _ llm.ChatOptions) (string, error) {
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	return s.replies[i], nil
}

func (s *scriptedChat) ModelName() string { return "scripted" }

const analysisReply = `{
	"intent": "player_stats",
	"entity": "player",
	"players": ["Jayson Tatum"],
	"teams": [],
	"timeframe": "season",
	"seasons": ["2023-24"],
	"stats": ["points"],
	"stats_type": "per_game",
	"top_n": 10
}`

func testPipeline(t *testing.T, chat llm.ChatClient) *query.Pipeline {
	t.Helper()

	store := storage.NewLocalStore(t.TempDir(), nil)
	table := dataset.NewTable("PLAYER_NAME", "PTS_PER_GAME", "season")
	table.AppendRow([]string{"Jayson Tatum", "26.9", "2023-24"})
	err := store.Save(context.Background(), dataset.Dataset{"player_stats": table}, "nba-data")
	require.NoError(t, err)

	analyzer := query.NewAnalyzer(chat, "2023-24", []string{"2023-24"}, nil)
	retriever := query.NewRetriever(store, cache.New(), stats.NewResolver(nil), "nba-data", nil)
	generator := query.NewGenerator(chat, nil)
	return query.NewPipeline(analyzer, retriever, generator, nil)
}

func testRouter(t *testing.T, chat llm.ChatClient) http.Handler {
	t.Helper()
	cfg := &config.Config{
		CORSAllowOrigins: []string{"*"},
		RateLimitEnabled: false,
	}
	return api.NewRouter(testPipeline(t, chat), cache.New(), cfg)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	chat := &scriptedChat{replies: []string{analysisReply, "Jayson Tatum averaged 26.9 points per game in 2023-24."}}
	router := testRouter(t, chat)

	rec := postJSON(t, router, "/api/v1/query", `{"question": "How many points did Tatum average?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "How many points did Tatum average?", resp.Question)
	assert.Contains(t, resp.Answer, "26.9")
	assert.Equal(t, 2, chat.calls)
}

func TestQueryEndpointRejectsBadBodies(t *testing.T) {
	router := testRouter(t, &scriptedChat{replies: []string{analysisReply}})

	for name, body := range map[string]string{
		"not json":       "points please",
		"empty question": `{"question": "   "}`,
		"missing field":  `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/v1/query", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error.Code)
		})
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	chat := &scriptedChat{replies: []string{analysisReply}}
	router := testRouter(t, chat)

	rec := postJSON(t, router, "/api/v1/analyze", `{"question": "How many points did Tatum average?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Analysis query.QueryAnalysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, query.IntentPlayerStats, resp.Analysis.Intent)
	assert.Equal(t, []string{"Jayson Tatum"}, resp.Analysis.Players)
	// Analyze never retrieves or generates.
	assert.Equal(t, 1, chat.calls)
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t, &scriptedChat{replies: []string{analysisReply}})

	for _, path := range []string{"/", "/health", "/health/cache"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", path)
	}
}

func TestTimingHeader(t *testing.T) {
	router := testRouter(t, &scriptedChat{replies: []string{analysisReply}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	}
	chat := &scriptedChat{replies: []string{analysisReply}}
	router := api.NewRouter(testPipeline(t, chat), cache.New(), cfg)

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
