package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_manager_app/internal/models"
	"github.com/SscSPs/expense_manager_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ruleColumns = `rule_id, company_id, name, conditions, approvers, created_at, created_by, last_updated_at, last_updated_by`

type PgxApprovalRuleRepository struct {
	db *pgxpool.Pool
}

func newPgxApprovalRuleRepository(db *pgxpool.Pool) portsrepo.ApprovalRuleRepositoryFacade {
	return &PgxApprovalRuleRepository{db: db}
}

var _ portsrepo.ApprovalRuleRepositoryFacade = (*PgxApprovalRuleRepository)(nil)

func scanRule(row pgx.Row) (models.ApprovalRule, error) {
	var m models.ApprovalRule
	err := row.Scan(
		&m.RuleID,
		&m.CompanyID,
		&m.Name,
		&m.Conditions,
		&m.Approvers,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxApprovalRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	m, err := scanRule(r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM approval_rules WHERE rule_id = $1;`, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval rule %s: %w", ruleID, err)
	}
	d, err := mapping.ToDomainApprovalRule(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode approval rule", err)
	}
	return &d, nil
}

// ListRulesByCompany returns rules oldest first; rule resolution depends on this order.
func (r *PgxApprovalRuleRepository) ListRulesByCompany(ctx context.Context, companyID string) ([]domain.ApprovalRule, error) {
	return listRulesByCompany(ctx, r.db, companyID)
}

func listRulesByCompany(ctx context.Context, q querier, companyID string) ([]domain.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules WHERE company_id = $1 ORDER BY created_at, rule_id;`
	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval rules: %w", err)
	}
	defer rows.Close()

	ms := []models.ApprovalRule{}
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule row: %w", err)
		}
		ms = append(ms, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating approval rule rows: %w", rows.Err())
	}

	rules, err := mapping.ToDomainApprovalRuleSlice(ms)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode approval rules", err)
	}
	return rules, nil
}

func (r *PgxApprovalRuleRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	m, err := mapping.ToModelApprovalRule(rule)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode approval rule", err)
	}
	query := `
		INSERT INTO approval_rules (rule_id, company_id, name, conditions, approvers, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.db.Exec(ctx, query,
		m.RuleID, m.CompanyID, m.Name, m.Conditions, m.Approvers,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save approval rule: %w", err)
	}
	return nil
}

func (r *PgxApprovalRuleRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	m, err := mapping.ToModelApprovalRule(rule)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode approval rule", err)
	}
	query := `
		UPDATE approval_rules
		SET name = $1, conditions = $2, approvers = $3, last_updated_at = $4, last_updated_by = $5
		WHERE rule_id = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query, m.Name, m.Conditions, m.Approvers, m.LastUpdatedAt, m.LastUpdatedBy, m.RuleID)
	if err != nil {
		return fmt.Errorf("failed to update approval rule: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("approval rule not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxApprovalRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM approval_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete approval rule: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("approval rule not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
