package repository

import (
	"context"
	"fmt"

	"trail-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnArchiveRepository persists completed chat turns to Postgres for
// offline analysis (intent mix, degradation rate, per-session traces).
type TurnArchiveRepository struct {
	db *pgxpool.Pool
}

func NewTurnArchiveRepository(db *pgxpool.Pool) *TurnArchiveRepository {
	return &TurnArchiveRepository{db: db}
}

var _ domain.TurnArchive = (*TurnArchiveRepository)(nil)

// EnsureSchema creates the archive table when it does not exist. Called
// once at startup; the service owns this table.
func (r *TurnArchiveRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS chat_turns (
			id UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			intent TEXT NOT NULL,
			user_text TEXT NOT NULL,
			response_text TEXT NOT NULL,
			result_count INT NOT NULL,
			degraded BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_turns_session_created
			ON chat_turns (session_id, created_at DESC)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure chat_turns schema: %w", err)
	}
	return nil
}

func (r *TurnArchiveRepository) Record(ctx context.Context, turn *domain.TurnRecord) error {
	query := `
		INSERT INTO chat_turns (id, session_id, intent, user_text, response_text, result_count, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		turn.ID,
		turn.SessionID,
		string(turn.Intent),
		turn.UserText,
		turn.ResponseText,
		turn.ResultCount,
		turn.Degraded,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

func (r *TurnArchiveRepository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]domain.TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, session_id, intent, user_text, response_text, result_count, degraded, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.TurnRecord
	for rows.Next() {
		var t domain.TurnRecord
		var intent string
		if err := rows.Scan(&t.ID, &t.SessionID, &intent, &t.UserText, &t.ResponseText, &t.ResultCount, &t.Degraded, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Intent = domain.Intent(intent)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}
