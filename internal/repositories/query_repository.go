package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/database"
	"schemabrowser/internal/models"
)

// QueryRepository executes built statements. Writes commit per statement;
// failures are surfaced once, never retried.
type QueryRepository struct {
	db      database.Querier
	timeout time.Duration
}

func NewQueryRepository(db database.Querier, timeout time.Duration) *QueryRepository {
	return &QueryRepository{db: db, timeout: timeout}
}

func (r *QueryRepository) Execute(ctx context.Context, stmt models.Statement) (*models.ExecutionResult, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	if stmt.Kind == models.StatementWrite {
		affected, err := r.db.Exec(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, queryFailed(ctx, stmt, err)
		}
		return &models.ExecutionResult{Affected: affected}, nil
	}

	rs, err := r.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, queryFailed(ctx, stmt, err)
	}
	rows := rs.Rows
	if rows == nil {
		rows = []models.Row{}
	}
	return &models.ExecutionResult{Columns: rs.Columns, Rows: rows}, nil
}

func queryFailed(ctx context.Context, stmt models.Statement, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrTimeout) {
		err = fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	}
	return &apperrors.QueryFailedError{SQL: stmt.SQL, Cause: err}
}
