package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/game"
	"planetwars-server/internal/match"
	"planetwars-server/internal/middleware"
	"planetwars-server/internal/player"
	"planetwars-server/internal/server"
	"planetwars-server/internal/session"
	"planetwars-server/internal/shared/config"
	"planetwars-server/internal/shared/database"
	"planetwars-server/internal/shared/logger"
	"planetwars-server/internal/shared/redis"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	exitWin         = 0
	exitFatal       = 1
	exitDraw        = 3
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		return exitFatal
	}
	logger.Init()

	cfg := config.GlobalConfig
	matchID := uuid.New()
	log := slog.With("component", "main", "match", matchID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	planets, err := galaxy.LoadMapFile(cfg.Game.MapPath)
	if err != nil {
		log.Error("Failed to load map", "path", cfg.Game.MapPath, "error", err)
		return exitFatal
	}
	g, err := galaxy.New(planets)
	if err != nil {
		log.Error("Invalid map", "path", cfg.Game.MapPath, "error", err)
		return exitFatal
	}

	roster, err := player.NewRoster(rosterEntries(cfg.Game.Roster))
	if err != nil {
		log.Error("Invalid roster", "error", err)
		return exitFatal
	}

	sessions, err := startSessions(ctx, roster)
	defer closeSessions(sessions, log)
	if err != nil {
		log.Error("Failed to launch agents", "error", err)
		return exitFatal
	}

	svc, err := game.NewService(
		game.ServiceConfig{TurnCap: cfg.Game.TurnCap, TurnRate: cfg.Game.TurnRate},
		g,
		roster,
		sessions,
		session.NewBarrier(cfg.Game.TurnTimeout, slog.Default()),
		slog.Default(),
	)
	if err != nil {
		log.Error("Failed to set up match", "error", err)
		return exitFatal
	}

	db, err := database.Connect(ctx)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return exitFatal
	}
	defer db.Close()

	if db != nil {
		if err := db.RunMigrations(ctx); err != nil {
			log.Error("Failed to run migrations", "error", err)
			return exitFatal
		}
		svc.WithRecorder(match.NewRecorder(match.NewRepository(db), roster, matchID, cfg.Game.MapPath, slog.Default()))
	}

	rdb, err := redis.Connect(ctx)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		return exitFatal
	}
	defer rdb.Close()

	if rdb != nil {
		svc.WithPublisher(match.NewPublisher(rdb, cfg.Redis.Channel, matchID, slog.Default()))
	}

	if cfg.Server.Enabled {
		stopServer := startStatusServer(ctx, cfg, svc, db, rdb, matchID)
		defer stopServer()
	}

	result, err := svc.Run(ctx)
	switch {
	case errors.Is(err, game.ErrAborted):
		log.Warn("Match ended by operator", "error", err)
		result = svc.Snapshot().Result
	case err != nil:
		log.Error("Match interrupted", "error", err)
		return exitInterrupted
	}

	if err := result.Report(os.Stdout); err != nil {
		log.Error("Failed to print report", "error", err)
	}

	if result.IsDraw() {
		return exitDraw
	}
	return exitWin
}

func rosterEntries(entries []config.RosterEntry) []player.Entry {
	out := make([]player.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, player.Entry{
			Team:    galaxy.TeamID(e.Team),
			Name:    e.Name,
			Command: e.Command,
		})
	}
	return out
}

// startSessions launches one agent per player in id order. On failure the
// sessions started so far are returned so the caller can close them.
func startSessions(ctx context.Context, roster *player.Roster) ([]*session.Session, error) {
	var sessions []*session.Session
	for _, p := range roster.Players() {
		s, err := session.Start(ctx, p.ID, p.Name, p.Command, slog.Default())
		if err != nil {
			return sessions, fmt.Errorf("player %s: %w", p, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func closeSessions(sessions []*session.Session, log *slog.Logger) {
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			log.Debug("Failed to close agent session", "player_id", s.PlayerID, "error", err)
		}
	}
}

// startStatusServer serves the status API next to the match and returns
// the func that shuts it down.
func startStatusServer(
	ctx context.Context,
	cfg *config.Config,
	svc *game.Service,
	db *database.DB,
	rdb *redis.Client,
	matchID uuid.UUID,
) func() {
	log := slog.With("component", "main", "operation", "status_server")

	feed := match.NewFeed(matchID)
	svc.WithPublisher(feed)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	handler := server.NewRoutes(svc, db, rdb, cfg.Auth.JWTSecret).
		WithLiveFeed(feed, cfg.Frontend.URL).
		Handler(cfg, limiter)

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		limiter.Run(ctx)
		return nil
	})
	group.Go(func() error {
		return server.Serve(ctx, cfg.Server, handler)
	})

	return func() {
		cancel()
		if err := group.Wait(); err != nil {
			log.Error("Status server stopped with error", "error", err)
		}
	}
}
