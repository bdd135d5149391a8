package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_manager_app/internal/models"
	"github.com/SscSPs/expense_manager_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, company_id, user_id, title, description, expense_date, category,
	original_amount, original_currency, converted_amount, exchange_rate, status, current_approver_id, version,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxExpenseRepository stores expenses with their lines, attachments and approval history.
type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryWithTx
var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.CompanyID,
		&m.UserID,
		&m.Title,
		&m.Description,
		&m.ExpenseDate,
		&m.Category,
		&m.OriginalAmount,
		&m.OriginalCurrency,
		&m.ConvertedAmount,
		&m.ExchangeRate,
		&m.Status,
		&m.CurrentApproverID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindExpenseByID retrieves an expense with lines, attachments and history.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return findExpense(ctx, r.Pool, expenseID)
}

func findExpense(ctx context.Context, q querier, expenseID string) (*domain.Expense, error) {
	m, err := scanExpense(q.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE expense_id = $1;`, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	expense := mapping.ToDomainExpense(m)
	expenses := []domain.Expense{expense}
	if err := loadChildren(ctx, q, expenses, true); err != nil {
		return nil, err
	}
	return &expenses[0], nil
}

// ListExpensesByUser retrieves the caller's expenses, newest first.
func (r *PgxExpenseRepository) ListExpensesByUser(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Category != nil {
		add("category = $%d", *filter.Category)
	}
	if filter.StartDate != nil {
		add("expense_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("expense_date <= $%d", *filter.EndDate)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add("(title ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+s+"%")
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, expense_id;`
	return r.listExpenses(ctx, query, args...)
}

// ListPendingByApprover retrieves expenses awaiting approverID's decision, oldest first.
func (r *PgxExpenseRepository) ListPendingByApprover(ctx context.Context, approverID string) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE current_approver_id = $1 AND status = 'PENDING'
		ORDER BY created_at ASC, expense_id;`
	return r.listExpenses(ctx, query, approverID)
}

func (r *PgxExpenseRepository) listExpenses(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, mapping.ToDomainExpense(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}

	if err := loadChildren(ctx, r.Pool, expenses, false); err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadChildren fills lines and attachments, plus history when withHistory is set,
// for all expenses with one query per child table.
func loadChildren(ctx context.Context, q querier, expenses []domain.Expense, withHistory bool) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]string, len(expenses))
	byID := make(map[string]*domain.Expense, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ExpenseID
		byID[expenses[i].ExpenseID] = &expenses[i]
	}

	lineRows, err := q.Query(ctx, `
		SELECT line_id, expense_id, line_no, description, amount
		FROM expense_lines WHERE expense_id = ANY($1) ORDER BY expense_id, line_no;`, ids)
	if err != nil {
		return fmt.Errorf("failed to query expense lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l models.ExpenseLine
		if err := lineRows.Scan(&l.LineID, &l.ExpenseID, &l.LineNo, &l.Description, &l.Amount); err != nil {
			return fmt.Errorf("failed to scan expense line: %w", err)
		}
		e := byID[l.ExpenseID]
		e.Lines = append(e.Lines, mapping.ToDomainExpenseLine(l))
	}
	if lineRows.Err() != nil {
		return fmt.Errorf("error iterating expense lines: %w", lineRows.Err())
	}

	attRows, err := q.Query(ctx, `
		SELECT attachment_id, expense_id, filename, url, content_type, size_bytes, created_at
		FROM attachments WHERE expense_id = ANY($1) ORDER BY created_at;`, ids)
	if err != nil {
		return fmt.Errorf("failed to query attachments: %w", err)
	}
	defer attRows.Close()
	for attRows.Next() {
		var a models.Attachment
		if err := attRows.Scan(&a.AttachmentID, &a.ExpenseID, &a.Filename, &a.URL, &a.ContentType, &a.Size, &a.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		e := byID[a.ExpenseID]
		e.Attachments = append(e.Attachments, mapping.ToDomainAttachment(a))
	}
	if attRows.Err() != nil {
		return fmt.Errorf("error iterating attachments: %w", attRows.Err())
	}

	if !withHistory {
		return nil
	}

	histRows, err := q.Query(ctx, `
		SELECT history_id, expense_id, approver_id, decision, comment, created_at
		FROM approval_history WHERE expense_id = ANY($1) ORDER BY created_at, history_id;`, ids)
	if err != nil {
		return fmt.Errorf("failed to query approval history: %w", err)
	}
	defer histRows.Close()
	for histRows.Next() {
		var h models.ApprovalHistory
		if err := histRows.Scan(&h.HistoryID, &h.ExpenseID, &h.ApproverID, &h.Decision, &h.Comment, &h.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan approval history: %w", err)
		}
		e := byID[h.ExpenseID]
		e.ApprovalHistory = append(e.ApprovalHistory, mapping.ToDomainApprovalHistory(h))
	}
	if histRows.Err() != nil {
		return fmt.Errorf("error iterating approval history: %w", histRows.Err())
	}
	return nil
}

// SaveExpense inserts an expense and its lines within a DB transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (
			expense_id, company_id, user_id, title, description, expense_date, category,
			original_amount, original_currency, converted_amount, exchange_rate, status, current_approver_id, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, query,
		m.ExpenseID,
		m.CompanyID,
		m.UserID,
		m.Title,
		m.Description,
		m.ExpenseDate,
		m.Category,
		m.OriginalAmount,
		m.OriginalCurrency,
		m.ConvertedAmount,
		m.ExchangeRate,
		m.Status,
		m.CurrentApproverID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert expense "+m.ExpenseID, err)
	}

	if err := insertLines(ctx, tx, expense.ExpenseID, expense.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertLines(ctx context.Context, tx pgx.Tx, expenseID string, lines []domain.ExpenseLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO expense_lines (line_id, expense_id, line_no, description, amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, l := range mapping.ToModelExpenseLines(expenseID, lines) {
		batch.Queue(lineQuery, l.LineID, l.ExpenseID, l.LineNo, l.Description, l.Amount)
	}
	// Close the batch results to surface errors from each command
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for expense "+expenseID, err)
	}
	return nil
}

// UpdateExpense overwrites the expense row and replaces its lines, guarded by the version column.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET title = $1, description = $2, expense_date = $3, category = $4,
			original_amount = $5, original_currency = $6, converted_amount = $7, exchange_rate = $8,
			status = $9, current_approver_id = $10, last_updated_at = $11, last_updated_by = $12,
			version = version + 1
		WHERE expense_id = $13 AND version = $14;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.Title,
		m.Description,
		m.ExpenseDate,
		m.Category,
		m.OriginalAmount,
		m.OriginalCurrency,
		m.ConvertedAmount,
		m.ExchangeRate,
		m.Status,
		m.CurrentApproverID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ExpenseID,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense "+m.ExpenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return staleOrMissing(ctx, tx, m.ExpenseID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expense_lines WHERE expense_id = $1;`, m.ExpenseID); err != nil {
		return apperrors.NewAppError(500, "failed to clear lines for expense "+m.ExpenseID, err)
	}
	if err := insertLines(ctx, tx, m.ExpenseID, expense.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// staleOrMissing distinguishes a deleted expense from a concurrent update after a guarded write matched no rows.
func staleOrMissing(ctx context.Context, q querier, expenseID string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE expense_id = $1);`, expenseID).Scan(&exists); err != nil {
		return apperrors.NewAppError(500, "failed to check expense "+expenseID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%w: expense %s was modified concurrently", apperrors.ErrConflict, expenseID)
}

// DeleteExpense removes an expense; lines, attachments and history cascade.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("expense not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

// LoadExpenseForDecision reads the expense, its owner and the owner's company rules.
func (r *PgxExpenseRepository) LoadExpenseForDecision(ctx context.Context, expenseID string) (*domain.DecisionContext, error) {
	expense, err := findExpense(ctx, r.Pool, expenseID)
	if err != nil {
		return nil, err
	}

	owner, err := scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1;`, expense.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("owner of expense %s: %w", expenseID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load owner of expense %s: %w", expenseID, err)
	}

	rules, err := listRulesByCompany(ctx, r.Pool, owner.CompanyID)
	if err != nil {
		return nil, err
	}

	return &domain.DecisionContext{
		Expense: *expense,
		Owner:   mapping.ToDomainUser(owner),
		Rules:   rules,
	}, nil
}

// CommitDecision locks the expense row, verifies the version read at load
// time, appends the history entry and writes the new state in one transaction.
func (r *PgxExpenseRepository) CommitDecision(ctx context.Context, commit domain.DecisionCommit) (*domain.Expense, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var version int64
	err = tx.QueryRow(ctx, `SELECT version FROM expenses WHERE expense_id = $1 FOR UPDATE;`, commit.ExpenseID).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock expense "+commit.ExpenseID, err)
	}
	if version != commit.ExpectedVersion {
		return nil, fmt.Errorf("%w: expense %s was modified concurrently", apperrors.ErrConflict, commit.ExpenseID)
	}

	h := mapping.ToModelApprovalHistory(commit.Entry)
	_, err = tx.Exec(ctx, `
		INSERT INTO approval_history (history_id, expense_id, approver_id, decision, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		h.HistoryID, h.ExpenseID, h.ApproverID, h.Decision, h.Comment, h.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert approval history for expense "+commit.ExpenseID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE expenses
		SET status = $1, current_approver_id = $2, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE expense_id = $5;`,
		string(commit.Status), commit.CurrentApproverID, commit.UpdatedAt, commit.Entry.ApproverID, commit.ExpenseID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update expense state "+commit.ExpenseID, err)
	}

	updated, err := findExpense(ctx, tx, commit.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return updated, nil
}
