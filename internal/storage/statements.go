package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Pratham266/cassure-go/internal/models"
)

const (
	insertStatementSQL = `INSERT INTO statements (
        id,
        user_id,
        file_name,
        page_count,
        processing_status,
        masked_account_number,
        bank_name,
        transaction_count,
        is_accurate,
        error_message
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
    );`

	updateStatementOutcomeSQL = `UPDATE statements
    SET processing_status     = $2,
        page_count            = $3,
        masked_account_number = $4,
        bank_name             = $5,
        transaction_count     = $6,
        is_accurate           = $7,
        error_message         = $8
    WHERE id = $1;`

	listStatementsSQL = `SELECT
        id, user_id, file_name, page_count, upload_date,
        processing_status, masked_account_number, bank_name,
        transaction_count, is_accurate, error_message
    FROM statements
    WHERE user_id = $1
    ORDER BY upload_date DESC
    LIMIT $2 OFFSET $3;`

	countStatementsSQL = `SELECT COUNT(*) FROM statements WHERE user_id = $1;`

	getStatementSQL = `SELECT
        id, user_id, file_name, page_count, upload_date,
        processing_status, masked_account_number, bank_name,
        transaction_count, is_accurate, error_message
    FROM statements
    WHERE id = $1 AND user_id = $2;`

	deleteStatementSQL             = `DELETE FROM statements WHERE id = $1 AND user_id = $2;`
	deleteStatementTransactionsSQL = `DELETE FROM transactions WHERE statement_id = $1 AND user_id = $2;`
)

// RecordOutcome inserts a terminal audit row for one completed or failed
// run, keyed by the requesting principal.
func (s *Store) RecordOutcome(ctx context.Context, userID string, outcome models.Outcome) error {
	_, err := s.pool.Exec(ctx, insertStatementSQL,
		uuid.NewString(),
		userID,
		outcome.FileName,
		outcome.PageCount,
		outcome.Status,
		outcome.MaskedAccountNumber,
		outcome.BankName,
		outcome.TransactionCount,
		outcome.IsAccurate,
		outcome.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// CreateStatement inserts the initial row for an asynchronous run, usually
// in the processing state.
func (s *Store) CreateStatement(ctx context.Context, st models.Statement) error {
	_, err := s.pool.Exec(ctx, insertStatementSQL,
		st.ID,
		st.UserID,
		st.FileName,
		st.PageCount,
		st.ProcessingStatus,
		st.MaskedAccountNumber,
		st.BankName,
		st.TransactionCount,
		st.IsAccurate,
		st.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("create statement: %w", err)
	}
	return nil
}

// UpdateOutcome moves a statement row to its terminal state.
func (s *Store) UpdateOutcome(ctx context.Context, id string, outcome models.Outcome) error {
	tag, err := s.pool.Exec(ctx, updateStatementOutcomeSQL,
		id,
		outcome.Status,
		outcome.PageCount,
		outcome.MaskedAccountNumber,
		outcome.BankName,
		outcome.TransactionCount,
		outcome.IsAccurate,
		outcome.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("update statement outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStatements returns one page of the principal's statements, newest
// first, plus the total count.
func (s *Store) ListStatements(ctx context.Context, userID string, page, limit int) ([]models.Statement, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx, listStatementsSQL, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	statements := []models.Statement{}
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, 0, err
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list statements: %w", err)
	}

	var total int
	if err := s.pool.QueryRow(ctx, countStatementsSQL, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count statements: %w", err)
	}

	return statements, total, nil
}

// GetStatement fetches one statement owned by the principal.
func (s *Store) GetStatement(ctx context.Context, userID, id string) (models.Statement, error) {
	st, err := scanStatement(s.pool.QueryRow(ctx, getStatementSQL, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Statement{}, ErrNotFound
	}
	if err != nil {
		return models.Statement{}, fmt.Errorf("get statement: %w", err)
	}
	return st, nil
}

// DeleteStatement removes a statement and its transactions in one
// transaction.
func (s *Store) DeleteStatement(ctx context.Context, userID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteStatementTransactionsSQL, id, userID); err != nil {
		return fmt.Errorf("delete statement transactions: %w", err)
	}

	tag, err := tx.Exec(ctx, deleteStatementSQL, id, userID)
	if err != nil {
		return fmt.Errorf("delete statement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanStatement(row pgx.Row) (models.Statement, error) {
	var st models.Statement
	err := row.Scan(
		&st.ID,
		&st.UserID,
		&st.FileName,
		&st.PageCount,
		&st.UploadDate,
		&st.ProcessingStatus,
		&st.MaskedAccountNumber,
		&st.BankName,
		&st.TransactionCount,
		&st.IsAccurate,
		&st.ErrorMessage,
	)
	return st, err
}
