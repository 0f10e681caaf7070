package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/game"
	"planetwars-server/internal/player"
	sharedErrors "planetwars-server/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
	matchID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
)

func testRoster(t *testing.T) *player.Roster {
	t.Helper()
	roster, err := player.NewRoster([]player.Entry{
		{Team: galaxy.Team1, Name: "Oingo"},
		{Team: galaxy.Team2, Name: "Johnny Joestar"},
		{Team: galaxy.Team1, Name: "Boingo"},
	})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return roster
}

func TestNewRecordFromWin(t *testing.T) {
	roster := testRoster(t)
	loser, _ := roster.Player(2)
	loser.Eliminate()

	rec := NewRecord(matchID, &game.Result{
		Outcome: game.OutcomeWin,
		Winner:  galaxy.Team1,
		Turn:    57,
		Scores:  map[galaxy.TeamID]int{galaxy.Team1: 120, galaxy.Team2: 0},
		Members: []string{"Oingo", "Boingo"},
	}, roster, "maps/map1.txt")

	if rec.WinnerTeam == nil || *rec.WinnerTeam != galaxy.Team1 {
		t.Errorf("winner = %v, want team 1", rec.WinnerTeam)
	}
	if rec.UUID != matchID {
		t.Errorf("uuid = %s", rec.UUID)
	}
	if rec.Team1Score != 120 || rec.Team2Score != 0 || rec.Turn != 57 || rec.MapPath != "maps/map1.txt" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Players) != 3 {
		t.Fatalf("players = %+v", rec.Players)
	}
	if p := rec.Players[1]; p.PlayerID != 2 || p.Team != galaxy.Team2 || !p.Eliminated {
		t.Errorf("player 2 record = %+v", p)
	}
}

func TestNewRecordFromDraw(t *testing.T) {
	rec := NewRecord(matchID, &game.Result{
		Outcome:        game.OutcomeDraw,
		Turn:           200,
		TurnCapReached: true,
		Scores:         map[galaxy.TeamID]int{galaxy.Team1: 40, galaxy.Team2: 40},
	}, testRoster(t), "maps/map1.txt")

	if rec.WinnerTeam != nil {
		t.Errorf("draw has winner %d", *rec.WinnerTeam)
	}
	if rec.Members == nil || len(rec.Members) != 0 {
		t.Errorf("members = %#v, want empty slice", rec.Members)
	}
}

type fakeStore struct {
	records []*Record
	err     error
}

func (s *fakeStore) CreateMatchResult(_ context.Context, rec *Record) error {
	if s.err != nil {
		return s.err
	}
	rec.ID = len(s.records) + 1
	s.records = append(s.records, rec)
	return nil
}

func TestRecorderStoresRecord(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, testRoster(t), matchID, "maps/map7.txt", discard)

	if err := recorder.RecordResult(context.Background(), &game.Result{Outcome: game.OutcomeDraw}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if len(store.records) != 1 || store.records[0].MapPath != "maps/map7.txt" || store.records[0].UUID != matchID {
		t.Errorf("stored = %+v", store.records)
	}

	store.err = errors.New("connection refused")
	if err := recorder.RecordResult(context.Background(), &game.Result{Outcome: game.OutcomeDraw}); err == nil {
		t.Error("expected the store error")
	}
}

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestPublisherSendsStanding(t *testing.T) {
	client := &fakeRedis{}
	pub := NewPublisher(client, "planetwars:turns", matchID, discard)

	err := pub.PublishTurn(context.Background(), game.Snapshot{
		Turn:       12,
		State:      game.StateActive,
		Scores:     map[galaxy.TeamID]int{galaxy.Team1: 30, galaxy.Team2: 25},
		Planets:    23,
		Eliminated: []string{"Yoyoma"},
	})
	if err != nil {
		t.Fatalf("PublishTurn: %v", err)
	}

	if client.channel != "planetwars:turns" {
		t.Errorf("channel = %q", client.channel)
	}

	var got Standing
	if err := json.Unmarshal(client.payload, &got); err != nil {
		t.Fatalf("payload %q: %v", client.payload, err)
	}
	if got.Match != matchID {
		t.Errorf("match = %s", got.Match)
	}
	if got.Turn != 12 || got.State != game.StateActive || got.Scores[galaxy.Team2] != 25 || len(got.Eliminated) != 1 {
		t.Errorf("standing = %+v", got)
	}
}

func TestPublisherReportsRedisFailure(t *testing.T) {
	pub := NewPublisher(&fakeRedis{err: errors.New("broken pipe")}, "turns", matchID, discard)
	err := pub.PublishTurn(context.Background(), game.Snapshot{Turn: 1})
	if !sharedErrors.Is(err, sharedErrors.ErrorTypeExternal) {
		t.Errorf("PublishTurn error = %v, want an external error", err)
	}
}

func TestFeedKeepsOnlyNewestStanding(t *testing.T) {
	feed := NewFeed(matchID)

	ch, cancel := feed.Subscribe()
	for turn := 1; turn <= 3; turn++ {
		if err := feed.PublishTurn(context.Background(), game.Snapshot{Turn: turn, State: game.StateActive}); err != nil {
			t.Fatalf("PublishTurn: %v", err)
		}
	}

	got := <-ch
	if got.Turn != 3 || got.Match != matchID {
		t.Errorf("standing = %+v, want turn 3", got)
	}

	cancel()
	cancel()
	if n := feed.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d after cancel", n)
	}
}

func TestFeedReplaysLatestToNewSubscriber(t *testing.T) {
	feed := NewFeed(matchID)
	_ = feed.PublishTurn(context.Background(), game.Snapshot{Turn: 9, State: game.StateTerminated})

	ch, cancel := feed.Subscribe()
	defer cancel()

	select {
	case got := <-ch:
		if got.Turn != 9 || got.State != game.StateTerminated {
			t.Errorf("standing = %+v", got)
		}
	default:
		t.Fatal("late subscriber got nothing")
	}
}

type execCall struct {
	query string
	args  []any
}

// recordingExecutor stands in for a transaction and remembers every exec
type recordingExecutor struct {
	calls  []execCall
	failAt int
}

func (e *recordingExecutor) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	e.calls = append(e.calls, execCall{query: query, args: args})
	if e.failAt > 0 && len(e.calls) == e.failAt {
		return nil, errors.New("duplicate key")
	}
	return nil, nil
}

func (e *recordingExecutor) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (e *recordingExecutor) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestInsertPlayersWritesOneRowPerPlayer(t *testing.T) {
	roster := testRoster(t)
	rec := NewRecord(matchID, &game.Result{Outcome: game.OutcomeDraw}, roster, "maps/map1.txt")
	rec.ID = 41

	exec := &recordingExecutor{}
	if err := insertPlayers(context.Background(), exec, rec); err != nil {
		t.Fatalf("insertPlayers: %v", err)
	}

	if len(exec.calls) != 3 {
		t.Fatalf("exec calls = %d, want 3", len(exec.calls))
	}
	args := exec.calls[1].args
	if args[0] != 41 || args[1] != 2 || args[2] != int(galaxy.Team2) || args[3] != "Johnny Joestar" {
		t.Errorf("second row args = %v", args)
	}

	failing := &recordingExecutor{failAt: 2}
	if err := insertPlayers(context.Background(), failing, rec); err == nil {
		t.Error("expected the exec error")
	}
	if len(failing.calls) != 2 {
		t.Errorf("kept inserting after a failure: %d calls", len(failing.calls))
	}
}

func TestQueryResultsReportsQueryFailure(t *testing.T) {
	if _, err := queryResults(context.Background(), &recordingExecutor{}, "SELECT 1"); err == nil {
		t.Error("expected the query error")
	}
}
