package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	settings.Timezone = "UTC"
	require.NoError(t, store.SaveSettings(ctx, settings))

	// Wednesday
	clock := utils.NewFakeClock(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))
	trk, err := tracker.New(store, tracker.WithClock(clock))
	require.NoError(t, err)
	return New(trk, community.New(trk))
}

func do(t *testing.T, s *Server, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

type createdGoal struct {
	Goal struct {
		ID string `json:"id"`
	} `json:"goal"`
	Habits []struct {
		ID string `json:"id"`
	} `json:"habits"`
}

func createReadingGoal(t *testing.T, s *Server, user string) createdGoal {
	t.Helper()
	w := do(t, s, http.MethodPost, "/v1/goals", user, gin.H{
		"type":         "reading",
		"title":        "Read more",
		"target_value": 12,
		"deadline":     "2024-09-30",
		"habits":       []gin.H{{"name": "Read 30 minutes", "template_id": "custom"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out createdGoal
	decode(t, w, &out)
	require.Len(t, out.Habits, 1)
	return out
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequiresUserID(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodGet, "/v1/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), HeaderUserID)
}

func TestGoalOwnership(t *testing.T) {
	s := setupServer(t)
	created := createReadingGoal(t, s, "alice")

	w := do(t, s, http.MethodGet, "/v1/goals/"+created.Goal.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/v1/goals/"+created.Goal.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/v1/logs", "bob", gin.H{
		"habit_id": created.Habits[0].ID, "day": "2024-06-05", "completed": true,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var goals []map[string]interface{}
	decode(t, do(t, s, http.MethodGet, "/v1/goals", "bob", nil), &goals)
	assert.Empty(t, goals)
}

func TestToggleAndStreak(t *testing.T) {
	s := setupServer(t)
	created := createReadingGoal(t, s, "alice")
	habitID := created.Habits[0].ID

	w := do(t, s, http.MethodPost, "/v1/logs/toggle", "alice", gin.H{
		"habit_id": habitID, "day": "2024-06-05", "completed": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var toggled struct {
		Writes []struct {
			HabitID   string `json:"habit_id"`
			Completed bool   `json:"completed"`
		} `json:"writes"`
	}
	decode(t, w, &toggled)
	require.Len(t, toggled.Writes, 1)
	assert.Equal(t, habitID, toggled.Writes[0].HabitID)
	assert.True(t, toggled.Writes[0].Completed)

	var streak struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/habits/"+habitID+"/streak", "alice", nil), &streak)
	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 1, streak.Longest)

	var rate struct {
		Rate int `json:"rate"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/habits/"+habitID+"/rate?window=1", "alice", nil), &rate)
	assert.Equal(t, 100, rate.Rate)

	var achievable struct {
		MaxAchievable int `json:"max_achievable"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/goals/"+created.Goal.ID+"/max-achievable", "alice", nil), &achievable)
	assert.Equal(t, 1, achievable.MaxAchievable)
}

func TestErrorMapping(t *testing.T) {
	s := setupServer(t)
	created := createReadingGoal(t, s, "alice")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		field  string
	}{
		{
			name: "deadline too soon", method: http.MethodPost, path: "/v1/goals",
			body:   gin.H{"type": "reading", "title": "Short", "target_value": 3, "deadline": "2024-07-01"},
			status: http.StatusBadRequest, field: "deadline",
		},
		{
			name: "future day", method: http.MethodPost, path: "/v1/logs",
			body:   gin.H{"habit_id": created.Habits[0].ID, "day": "2024-06-06", "completed": true},
			status: http.StatusBadRequest, field: "day",
		},
		{
			name: "community needs matching goal", method: http.MethodPost, path: "/v1/communities",
			body: gin.H{"name": "Fasting", "goal_type": "weight-loss"}, status: http.StatusConflict,
		},
		{
			name: "unknown habit", method: http.MethodGet, path: "/v1/habits/missing/streak",
			status: http.StatusNotFound,
		},
		{
			name: "bad leaderboard kind", method: http.MethodGet, path: "/v1/communities/none/leaderboard?kind=karma",
			status: http.StatusBadRequest,
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/v1/goals",
			body: "not an object", status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, "alice", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			var body map[string]interface{}
			decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestCommunityRoutes(t *testing.T) {
	s := setupServer(t)
	createReadingGoal(t, s, "alice")
	createReadingGoal(t, s, "bob")

	w := do(t, s, http.MethodPost, "/v1/communities", "alice", gin.H{"name": "Bookworms", "goal_type": "reading"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID         string `json:"id"`
		InviteCode string `json:"invite_code"`
	}
	decode(t, w, &created)
	require.Len(t, created.InviteCode, 6)

	w = do(t, s, http.MethodPost, "/v1/communities/join", "bob", gin.H{"invite_code": created.InviteCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodPost, "/v1/communities/join", "bob", gin.H{"invite_code": created.InviteCode})
	assert.Equal(t, http.StatusConflict, w.Code)

	var members []struct {
		UserID string `json:"user_id"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/communities/"+created.ID+"/members", "bob", nil), &members)
	assert.Len(t, members, 2)

	var board []struct {
		Rank   int    `json:"rank"`
		UserID string `json:"user_id"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/communities/"+created.ID+"/leaderboard", "alice", nil), &board)
	require.Len(t, board, 2)
	assert.Equal(t, 1, board[0].Rank)

	w = do(t, s, http.MethodGet, "/v1/communities/"+created.ID+"/feed", "carol", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/v1/communities/"+created.ID+"/invite-code", "bob", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEncouragementRoutes(t *testing.T) {
	s := setupServer(t)
	createReadingGoal(t, s, "alice")
	createReadingGoal(t, s, "bob")

	w := do(t, s, http.MethodPost, "/v1/communities", "alice", gin.H{"name": "Bookworms"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID         string `json:"id"`
		InviteCode string `json:"invite_code"`
	}
	decode(t, w, &created)
	w = do(t, s, http.MethodPost, "/v1/communities/join", "bob", gin.H{"invite_code": created.InviteCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	base := "/v1/communities/" + created.ID
	w = do(t, s, http.MethodPost, base+"/nudges", "alice", gin.H{"to_user_id": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, s, http.MethodPost, base+"/nudges", "alice", gin.H{"to_user_id": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already nudged this person today")

	w = do(t, s, http.MethodPost, base+"/cheers", "alice", gin.H{"to_user_id": "bob", "message": "nice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, s, http.MethodPost, base+"/cheers", "alice", gin.H{"message": "who?"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var inbox []struct {
		ID              string `json:"id"`
		Type            string `json:"type"`
		FromDisplayName string `json:"from_display_name"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/encouragements", "bob", nil), &inbox)
	require.Len(t, inbox, 2)
	kinds := []string{inbox[0].Type, inbox[1].Type}
	assert.ElementsMatch(t, []string{"cheer", "nudge"}, kinds)
	assert.Equal(t, "alice", inbox[0].FromDisplayName)

	var marked struct {
		Marked int `json:"marked"`
	}
	decode(t, do(t, s, http.MethodPost, "/v1/encouragements/read", "bob", gin.H{"ids": []string{inbox[0].ID}}), &marked)
	assert.Equal(t, 1, marked.Marked)
	decode(t, do(t, s, http.MethodPost, "/v1/encouragements/read", "bob", nil), &marked)
	assert.Equal(t, 1, marked.Marked)
	decode(t, do(t, s, http.MethodGet, "/v1/encouragements", "bob", nil), &inbox)
	assert.Empty(t, inbox)
	decode(t, do(t, s, http.MethodGet, "/v1/encouragements?all=true", "bob", nil), &inbox)
	assert.Len(t, inbox, 2)

	var feed []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	decode(t, do(t, s, http.MethodGet, base+"/feed", "bob", nil), &feed)
	require.NotEmpty(t, feed)
	target := feed[len(feed)-1].ID

	var reaction struct {
		Added bool `json:"added"`
	}
	w = do(t, s, http.MethodPost, "/v1/activity/"+target+"/reactions", "bob", gin.H{"emoji": "🎉"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &reaction)
	assert.True(t, reaction.Added)
	decode(t, do(t, s, http.MethodPost, "/v1/activity/"+target+"/reactions", "bob", gin.H{"emoji": "🎉"}), &reaction)
	assert.False(t, reaction.Added)

	w = do(t, s, http.MethodPost, "/v1/activity/"+target+"/reactions", "carol", gin.H{"emoji": "🎉"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAchievementCheckComputesValue(t *testing.T) {
	s := setupServer(t)
	createReadingGoal(t, s, "alice")

	for _, trigger := range []string{"goal_completed", "community_joined", "cheer_sent", "streak"} {
		w := do(t, s, http.MethodPost, "/v1/achievements/check", "alice", gin.H{"trigger": trigger, "value": 1000})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out struct {
			Unlocked []string `json:"unlocked"`
		}
		decode(t, w, &out)
		assert.Empty(t, out.Unlocked, trigger)
	}

	var stats struct {
		Unlocked int `json:"unlocked"`
	}
	decode(t, do(t, s, http.MethodGet, "/v1/achievements/stats", "alice", nil), &stats)
	assert.Equal(t, 0, stats.Unlocked)

	w := do(t, s, http.MethodPost, "/v1/achievements/check", "alice", gin.H{"trigger": "karma"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)
	do(t, s, http.MethodGet, "/health", "", nil)

	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stride_http_requests_total")
}
