package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gamerules/internal/states"
)

// StackRepository stores the state stack counters of battlers. Multicast
// sessions are turn-scoped and never stored.
type StackRepository struct {
	db *pgxpool.Pool
}

// NewStackRepository creates a new StackRepository.
func NewStackRepository(db *pgxpool.Pool) *StackRepository {
	return &StackRepository{db: db}
}

// LoadByBattler loads the stacks of a battler ordered by state id.
func (r *StackRepository) LoadByBattler(ctx context.Context, battlerID int64) ([]states.Stack, error) {
	query := `
		SELECT state_id, stacks, turns
		FROM battler_state_stacks
		WHERE battler_id = $1
		ORDER BY state_id
	`

	rows, err := r.db.Query(ctx, query, battlerID)
	if err != nil {
		return nil, fmt.Errorf("querying stacks for battler %d: %w", battlerID, err)
	}
	defer rows.Close()

	stacks := make([]states.Stack, 0, 8)
	for rows.Next() {
		var stateID, turns int32
		var count int16
		if err := rows.Scan(&stateID, &count, &turns); err != nil {
			return nil, fmt.Errorf("scanning stack row: %w", err)
		}
		stacks = append(stacks, states.Stack{
			StateID: int(stateID),
			Stacks:  int(count),
			Turns:   int(turns),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stack rows: %w", err)
	}

	return stacks, nil
}

// SaveTx saves the stacks of a battler within a transaction.
// Performs full replace: deletes all existing, then inserts. Rows with no
// stacks are skipped and counts above the stack limit are clamped.
func (r *StackRepository) SaveTx(ctx context.Context, tx pgx.Tx, battlerID int64, stacks []states.Stack) error {
	if _, err := tx.Exec(ctx, `DELETE FROM battler_state_stacks WHERE battler_id = $1`, battlerID); err != nil {
		return fmt.Errorf("deleting old stacks for battler %d: %w", battlerID, err)
	}

	rows := make([][]any, 0, len(stacks))
	seen := make(map[int]bool, len(stacks))
	for _, s := range stacks {
		if s.Stacks <= 0 || s.StateID <= 0 || seen[s.StateID] {
			continue
		}
		seen[s.StateID] = true
		rows = append(rows, []any{
			battlerID,
			int32(s.StateID),
			int16(min(s.Stacks, states.MaxStacksLimit)),
			int32(max(s.Turns, 0)),
		})
	}
	if len(rows) == 0 {
		return nil
	}

	// Bulk insert using COPY
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"battler_state_stacks"},
		[]string{"battler_id", "state_id", "stacks", "turns"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting stacks for battler %d: %w", battlerID, err)
	}

	slog.Debug("saved battler stacks",
		"battlerID", battlerID,
		"count", len(rows))

	return nil
}

// Save saves the stacks of a battler (standalone, creates own transaction).
func (r *StackRepository) Save(ctx context.Context, battlerID int64, stacks []states.Stack) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "battlerID", battlerID, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, battlerID, stacks); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SaveAll saves several battlers in one transaction.
func (r *StackRepository) SaveAll(ctx context.Context, byBattler map[int64][]states.Stack) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "battlers", len(byBattler), "error", err)
		}
	}()

	for id, stacks := range byBattler {
		if err := r.SaveTx(ctx, tx, id, stacks); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
