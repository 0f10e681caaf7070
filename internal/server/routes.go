package server

import (
	"context"
	"log/slog"
	"net/http"

	"planetwars-server/internal/match"
	"planetwars-server/internal/middleware"
	serverHandlers "planetwars-server/internal/server/handlers"
	"planetwars-server/internal/shared/config"
	"planetwars-server/internal/shared/database"
	"planetwars-server/internal/shared/redis"
)

type Routes struct {
	control serverHandlers.MatchControl
	db      *database.DB
	redis   *redis.Client
	feed    serverHandlers.StandingFeed
	origin  string
	secret  string
}

// NewRoutes wires the status endpoints. db and rdb are nil when their
// integrations are disabled.
func NewRoutes(control serverHandlers.MatchControl, db *database.DB, rdb *redis.Client, secret string) *Routes {
	return &Routes{
		control: control,
		db:      db,
		redis:   rdb,
		secret:  secret,
	}
}

// WithLiveFeed exposes feed as a websocket at /api/match/live, accepting
// browsers from origin.
func (r *Routes) WithLiveFeed(feed serverHandlers.StandingFeed, origin string) *Routes {
	r.feed = feed
	r.origin = origin
	return r
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")

	mux := http.NewServeMux()

	deps := map[string]serverHandlers.Pinger{"database": nil, "redis": nil}
	var results serverHandlers.ResultLister
	if r.db != nil {
		deps["database"] = r.db
		results = match.NewRepository(r.db)
	}
	if r.redis != nil {
		deps["redis"] = redisPinger{r.redis}
	}

	healthHandler := serverHandlers.NewHealthHandler(deps)
	matchHandler := serverHandlers.NewMatchHandler(r.control, results)

	mux.Handle("GET /api/server/health", healthHandler)
	mux.HandleFunc("GET /api/match/status", matchHandler.GetStatus)
	mux.HandleFunc("GET /api/matches", matchHandler.GetRecentResults)
	mux.Handle("POST /api/match/abort", middleware.RequireOperator(r.secret, http.HandlerFunc(matchHandler.Abort)))

	public := []string{"/api/server/health", "/api/match/status", "/api/matches"}
	if r.feed != nil {
		mux.Handle("GET /api/match/live", serverHandlers.NewLiveHandler(r.feed, r.origin))
		public = append(public, "/api/match/live")
	}

	logger.Info("Routes configured successfully",
		"public_endpoints", public,
		"operator_endpoints", []string{"/api/match/abort"},
	)

	return mux
}

// Handler wraps the mux in rate limiting and CORS
func (r *Routes) Handler(cfg *config.Config, limiter *middleware.RateLimiter) http.Handler {
	cors := middleware.NewCORS(cfg.Frontend)
	return cors.Middleware(limiter.Middleware(r.Setup()))
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
