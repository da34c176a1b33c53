package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vibra-app/vibra/internal/pkg/persistence"
	"github.com/vibra-app/vibra/internal/pkg/status"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertResult inserts result row into DB.
// Duplicate result_id is silently ignored - the insert is idempotent
func (db *DB) InsertResult(ctx context.Context, item *persistence.Result) error {
	rows, err := db.pool.Query(ctx, `INSERT INTO results(result_id, user_name, birth_date, vibration_number, status, created, updated)
	VALUES($1, $2, $3, $4, $5, $6, $6)
	ON CONFLICT (result_id) DO NOTHING`, item.ID, item.UserName, item.BirthDate,
		item.VibrationNumber, item.Status, item.Created)
	if err != nil {
		return fmt.Errorf("can't insert result: %w", err)
	}
	defer rows.Close()
	return nil
}

// LoadResult loads result from DB, returns nil if no row exists
func (db *DB) LoadResult(ctx context.Context, id string) (*persistence.Result, error) {
	var res persistence.Result
	err := db.pool.QueryRow(ctx, `SELECT result_id, user_name, birth_date, vibration_number,
	reading, image_blob_path, error_message, status, created, updated FROM results
		WHERE result_id = $1`, id).Scan(&res.ID, &res.UserName, &res.BirthDate, &res.VibrationNumber,
		&res.Reading, &res.ImageBlobPath, &res.ErrorMessage, &res.Status, &res.Created, &res.Updated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load result: %w", err)
	}
	return &res, nil
}

// UpdateStatus updates the row's status
func (db *DB) UpdateStatus(ctx context.Context, id string, to status.Status) error {
	rows, err := db.pool.Exec(ctx, `UPDATE results SET status = $2, updated = $3 WHERE result_id = $1`,
		id, to.String(), time.Now())
	if err != nil {
		return fmt.Errorf("can't update status: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update status, no records found")
	}
	return nil
}

// UpdateReading persists the generated reading.
// The persisted reading also serves as the workflow's step checkpoint
func (db *DB) UpdateReading(ctx context.Context, id string, reading *persistence.Reading) error {
	rows, err := db.pool.Exec(ctx, `UPDATE results SET reading = $2, updated = $3 WHERE result_id = $1`,
		id, reading, time.Now())
	if err != nil {
		return fmt.Errorf("can't update reading: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update reading, no records found")
	}
	return nil
}

// CompleteResult overwrites the generated content and marks the row completed.
// The update is unconditional - replayed workflow steps leave the latest outcome
func (db *DB) CompleteResult(ctx context.Context, item *persistence.Result) error {
	rows, err := db.pool.Exec(ctx, `UPDATE results SET
	reading = $2,
	image_blob_path = $3,
	status = $4,
	updated = $5
	WHERE result_id = $1`, item.ID, item.Reading, item.ImageBlobPath,
		status.Completed.String(), time.Now())
	if err != nil {
		return fmt.Errorf("can't complete result: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't complete result, no records found")
	}
	return nil
}

// MarkError moves a non-terminal row to the error state with a captured message
func (db *DB) MarkError(ctx context.Context, id, errMsg string) error {
	rows, err := db.pool.Exec(ctx, `UPDATE results SET status = $2, error_message = $3, updated = $4
	WHERE result_id = $1 AND status NOT IN ($5, $2)`,
		id, status.Error.String(), errMsg, time.Now(), status.Completed.String())
	if err != nil {
		return fmt.Errorf("can't mark error: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't mark error, no non-terminal record found")
	}
	return nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'gue_jobs')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}
