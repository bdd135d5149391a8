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

type PgxCompanyRepository struct {
	BaseRepository
}

func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `
		SELECT company_id, name, default_currency, settings, created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE company_id = $1;
	`
	var m models.Company
	err := r.Pool.QueryRow(ctx, query, companyID).Scan(
		&m.CompanyID,
		&m.Name,
		&m.DefaultCurrency,
		&m.Settings,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company %s: %w", companyID, err)
	}
	d, err := mapping.ToDomainCompany(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode company", err)
	}
	return &d, nil
}

// SaveCompanyWithAdmin inserts the company and its first admin atomically.
func (r *PgxCompanyRepository) SaveCompanyWithAdmin(ctx context.Context, company domain.Company, admin domain.User) error {
	m, err := mapping.ToModelCompany(company)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode company", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	query := `
		INSERT INTO companies (company_id, name, default_currency, settings, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, query,
		m.CompanyID,
		m.Name,
		m.DefaultCurrency,
		m.Settings,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert company "+m.CompanyID, err)
	}

	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
