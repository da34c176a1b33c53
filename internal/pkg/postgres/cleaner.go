package postgres

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner removes all records related with ID
type Cleaner struct {
	pool *pgxpool.Pool
}

// NewCleaner creates Cleaner instance
func NewCleaner(pool *pgxpool.Pool) (*Cleaner, error) {
	res := &Cleaner{pool: pool}
	return res, nil
}

// Clean deletes the result row by ID
func (db *Cleaner) Clean(ctx context.Context, id string) error {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM results WHERE result_id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete %s: %w", id, err)
	}
	goapp.Log.Info().Str("ID", id).Int64("rows", cmd.RowsAffected()).Msg("deleted")
	return nil
}
