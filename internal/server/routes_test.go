package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"planetwars-server/internal/auth"
	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/game"
	"planetwars-server/internal/match"
	serverHandlers "planetwars-server/internal/server/handlers"
	"planetwars-server/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeControl struct {
	snapshot game.Snapshot
	aborted  []string
	err      error
}

func (f *fakeControl) Snapshot() game.Snapshot { return f.snapshot }

func (f *fakeControl) Abort(operator string) error {
	if f.err != nil {
		return f.err
	}
	f.aborted = append(f.aborted, operator)
	return nil
}

func serve(t *testing.T, mux http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMatchStatus(t *testing.T) {
	control := &fakeControl{snapshot: game.Snapshot{
		Turn:   42,
		State:  game.StateActive,
		Scores: map[galaxy.TeamID]int{galaxy.Team1: 80, galaxy.Team2: 64},
	}}
	mux := NewRoutes(control, nil, nil, testSecret).Setup()

	rec := serve(t, mux, http.MethodGet, "/api/match/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got game.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Turn != 42 || got.State != game.StateActive || got.Scores[galaxy.Team1] != 80 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestMatchAbort(t *testing.T) {
	control := &fakeControl{}
	mux := NewRoutes(control, nil, nil, testSecret).Setup()

	if rec := serve(t, mux, http.MethodPost, "/api/match/abort", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous abort = %d, want 401", rec.Code)
	}

	token, err := auth.GenerateToken(testSecret, "alice", auth.RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if rec := serve(t, mux, http.MethodPost, "/api/match/abort", token); rec.Code != http.StatusAccepted {
		t.Errorf("operator abort = %d, want 202", rec.Code)
	}
	if len(control.aborted) != 1 || control.aborted[0] != "alice" {
		t.Errorf("aborted by %v", control.aborted)
	}

	control.err = errors.Conflict("match already finished")
	if rec := serve(t, mux, http.MethodPost, "/api/match/abort", token); rec.Code != http.StatusConflict {
		t.Errorf("abort after finish = %d, want 409", rec.Code)
	}

	if rec := serve(t, mux, http.MethodGet, "/api/match/abort", token); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET abort = %d, want 405", rec.Code)
	}
}

func TestResultsWithoutDatabase(t *testing.T) {
	mux := NewRoutes(&fakeControl{}, nil, nil, testSecret).Setup()

	if rec := serve(t, mux, http.MethodGet, "/api/matches", ""); rec.Code != http.StatusNotFound {
		t.Errorf("results = %d, want 404", rec.Code)
	}
}

type brokenResults struct{}

func (brokenResults) GetRecentResults(context.Context, int) ([]match.Record, error) {
	return nil, context.DeadlineExceeded
}

func TestResultsDatabaseFailureIsUnavailable(t *testing.T) {
	h := serverHandlers.NewMatchHandler(&fakeControl{}, brokenResults{})

	rec := httptest.NewRecorder()
	h.GetRecentResults(rec, httptest.NewRequest(http.MethodGet, "/api/matches?limit=5", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetRecentResults(rec, httptest.NewRequest(http.MethodGet, "/api/matches?limit=500", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized limit = %d, want 400", rec.Code)
	}
}

func TestHealthReportsDisabledDependencies(t *testing.T) {
	mux := NewRoutes(&fakeControl{}, nil, nil, testSecret).Setup()

	rec := serve(t, mux, http.MethodGet, "/api/server/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got serverHandlers.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Dependencies["database"] != "disabled" || got.Dependencies["redis"] != "disabled" {
		t.Errorf("dependencies = %v", got.Dependencies)
	}
	if !strings.HasPrefix(got.Status, "healthy") {
		t.Errorf("status = %q", got.Status)
	}
}

func TestLiveStreamsUntilTermination(t *testing.T) {
	feed := match.NewFeed(uuid.New())
	ctx := context.Background()
	_ = feed.PublishTurn(ctx, game.Snapshot{Turn: 1, State: game.StateActive})

	mux := NewRoutes(&fakeControl{}, nil, nil, testSecret).
		WithLiveFeed(feed, "http://localhost:3000").
		Setup()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/match/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first match.Standing
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("first standing: %v", err)
	}
	if first.Turn != 1 || first.State != game.StateActive {
		t.Errorf("first = %+v", first)
	}

	_ = feed.PublishTurn(ctx, game.Snapshot{Turn: 2, State: game.StateTerminated})

	var last match.Standing
	if err := conn.ReadJSON(&last); err != nil {
		t.Fatalf("final standing: %v", err)
	}
	if last.Turn != 2 || last.State != game.StateTerminated {
		t.Errorf("last = %+v", last)
	}

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("after termination err = %v, want normal close", err)
	}
}

func TestLiveRejectsForeignOrigin(t *testing.T) {
	mux := NewRoutes(&fakeControl{}, nil, nil, testSecret).
		WithLiveFeed(match.NewFeed(uuid.New()), "http://localhost:3000").
		Setup()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/match/live"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}
