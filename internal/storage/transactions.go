package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Pratham266/cassure-go/internal/models"
	"github.com/Pratham266/cassure-go/internal/pipeline"
)

const (
	insertTransactionSQL = `INSERT INTO transactions (
        id, statement_id, user_id, date, description, type, amount, balance, raw
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    );`

	transactionColumns = `id, statement_id, user_id, date, description, type, amount, balance, raw, created_at`

	exportTransactionsSQL = `SELECT ` + transactionColumns + `
    FROM transactions
    WHERE user_id = $1 AND ($2 = '' OR statement_id = $2)
    ORDER BY date ASC NULLS LAST;`
)

// TransactionQuery filters and pages a transaction listing.
type TransactionQuery struct {
	UserID      string
	StatementID string
	Search      string // case-insensitive description substring
	StartDate   *time.Time
	EndDate     *time.Time
	SortBy      string // date, amount, balance or description
	SortOrder   string // asc or desc
	Page        int
	Limit       int
}

// Summary carries the debit/credit totals for a filtered listing. Decimal,
// not float: these are sums over arbitrarily many rows.
type Summary struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// InsertTransactions bulk-inserts the accumulated transactions of one run.
func (s *Store) InsertTransactions(ctx context.Context, statementID, userID string, txns []models.Txn) error {
	if len(txns) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, txn := range txns {
		raw, err := json.Marshal(txn)
		if err != nil {
			raw = nil
		}

		var date *time.Time
		if v, ok := txn.Str("date"); ok {
			if t, err := time.Parse(pipeline.CanonicalDateLayout, v); err == nil {
				date = &t
			}
		}

		description, _ := txn.Str("description")
		txnType, _ := txn.Str("type")

		batch.Queue(insertTransactionSQL,
			uuid.NewString(),
			statementID,
			userID,
			date,
			description,
			txnType,
			txn.NumOr("amount", 0),
			txn.NumOr("balance", 0),
			raw,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range txns {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert transactions: %w", err)
		}
	}
	return nil
}

// ListTransactions returns one page of matching rows, the total match
// count, and the debit/credit summary over every match (not just the page).
func (s *Store) ListTransactions(ctx context.Context, q TransactionQuery) ([]models.TransactionRow, int, Summary, error) {
	where, args := buildTransactionFilter(q)

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY %s LIMIT $%d OFFSET $%d;`,
		transactionColumns, where, orderClause(q), len(args)+1, len(args)+2)
	listArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	rows, err := s.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	result := []models.TransactionRow{}
	for rows.Next() {
		row, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, Summary{}, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM transactions %s;`, where)
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, Summary{}, fmt.Errorf("count transactions: %w", err)
	}

	summary, err := s.summarize(ctx, where, args)
	if err != nil {
		return nil, 0, Summary{}, err
	}

	return result, total, summary, nil
}

// ExportTransactions returns every matching row ordered oldest first, for
// CSV or JSON export.
func (s *Store) ExportTransactions(ctx context.Context, userID, statementID string) ([]models.TransactionRow, error) {
	rows, err := s.pool.Query(ctx, exportTransactionsSQL, userID, statementID)
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	defer rows.Close()

	result := []models.TransactionRow{}
	for rows.Next() {
		row, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) summarize(ctx context.Context, where string, args []any) (Summary, error) {
	summarySQL := fmt.Sprintf(`SELECT
        COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)::text,
        COALESCE(SUM(CASE WHEN amount >= 0 THEN amount ELSE 0 END), 0)::text
    FROM transactions %s;`, where)

	var debitStr, creditStr string
	if err := s.pool.QueryRow(ctx, summarySQL, args...).Scan(&debitStr, &creditStr); err != nil {
		return Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}

	debit, err := decimal.NewFromString(debitStr)
	if err != nil {
		return Summary{}, fmt.Errorf("parse debit total %q: %w", debitStr, err)
	}
	credit, err := decimal.NewFromString(creditStr)
	if err != nil {
		return Summary{}, fmt.Errorf("parse credit total %q: %w", creditStr, err)
	}

	return Summary{TotalDebit: debit, TotalCredit: credit}, nil
}

// buildTransactionFilter renders the WHERE clause and its arguments for a
// listing. Split out so the SQL shape is testable without a database.
func buildTransactionFilter(q TransactionQuery) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{q.UserID}

	if q.StatementID != "" {
		args = append(args, q.StatementID)
		clauses = append(clauses, fmt.Sprintf("statement_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		clauses = append(clauses, fmt.Sprintf("description ILIKE $%d", len(args)))
	}
	if q.StartDate != nil {
		args = append(args, *q.StartDate)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if q.EndDate != nil {
		args = append(args, *q.EndDate)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause whitelists sortable columns; anything else sorts by date.
func orderClause(q TransactionQuery) string {
	column := "date"
	switch q.SortBy {
	case "amount", "balance", "description", "date":
		column = q.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction + " NULLS LAST"
}

func scanTransaction(rows pgx.Rows) (models.TransactionRow, error) {
	var (
		row models.TransactionRow
		raw []byte
	)
	if err := rows.Scan(
		&row.ID,
		&row.StatementID,
		&row.UserID,
		&row.Date,
		&row.Description,
		&row.Type,
		&row.Amount,
		&row.Balance,
		&raw,
		&row.CreatedAt,
	); err != nil {
		return models.TransactionRow{}, err
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &row.Raw)
	}
	return row, nil
}
