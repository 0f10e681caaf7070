package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"planetwars-server/internal/galaxy"
	"planetwars-server/internal/game"
	"planetwars-server/internal/shared/database"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// CreateMatchResult stores the verdict and the roster in one transaction
// and fills in the generated id and timestamp.
func (r *Repository) CreateMatchResult(ctx context.Context, rec *Record) error {
	logger := slog.With(
		"component", "match_repository",
		"operation", "create",
		"match", rec.UUID,
		"outcome", rec.Outcome,
		"turn", rec.Turn,
	)

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := insertResult(ctx, tx, rec); err != nil {
		return err
	}
	if err := insertPlayers(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match result: %w", err)
	}

	logger.Info("Match result stored", "match_id", rec.ID, "players", len(rec.Players))
	return nil
}

func insertResult(ctx context.Context, exec database.Executor, rec *Record) error {
	var winner sql.NullInt64
	if rec.WinnerTeam != nil {
		winner = sql.NullInt64{Int64: int64(*rec.WinnerTeam), Valid: true}
	}

	query := `
		INSERT INTO match_results
			(match_uuid, map_path, outcome, winner_team, turn, turn_cap_reached, team1_score, team2_score, members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, finished_at
	`
	err := exec.QueryRowContext(ctx, query,
		rec.UUID,
		rec.MapPath,
		string(rec.Outcome),
		winner,
		rec.Turn,
		rec.TurnCapReached,
		rec.Team1Score,
		rec.Team2Score,
		pq.Array(rec.Members),
	).Scan(&rec.ID, &rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

func insertPlayers(ctx context.Context, exec database.Executor, rec *Record) error {
	for _, p := range rec.Players {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO match_players (match_id, player_id, team, name, eliminated) VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, int(p.PlayerID), int(p.Team), p.Name, p.Eliminated,
		)
		if err != nil {
			return fmt.Errorf("failed to insert match player %d: %w", p.PlayerID, err)
		}
	}
	return nil
}

// GetRecentResults returns the latest matches, newest first, without
// their player rows
func (r *Repository) GetRecentResults(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, match_uuid, map_path, outcome, winner_team, turn, turn_cap_reached,
		       team1_score, team2_score, members, finished_at
		FROM match_results
		ORDER BY finished_at DESC, id DESC
		LIMIT $1
	`

	return queryResults(ctx, r.db, query, limit)
}

func queryResults(ctx context.Context, exec database.Executor, query string, args ...any) ([]Record, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec       Record
			outcome   string
			winner    sql.NullInt64
			matchUUID uuid.NullUUID
		)
		err := rows.Scan(
			&rec.ID,
			&matchUUID,
			&rec.MapPath,
			&outcome,
			&winner,
			&rec.Turn,
			&rec.TurnCapReached,
			&rec.Team1Score,
			&rec.Team2Score,
			pq.Array(&rec.Members),
			&rec.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}

		rec.Outcome = game.Outcome(outcome)
		if matchUUID.Valid {
			rec.UUID = matchUUID.UUID
		}
		if winner.Valid {
			team := galaxy.TeamID(winner.Int64)
			rec.WinnerTeam = &team
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match results: %w", err)
	}

	return records, nil
}
