package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_manager_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAttachmentRepository struct {
	db *pgxpool.Pool
}

func newPgxAttachmentRepository(db *pgxpool.Pool) portsrepo.AttachmentRepositoryFacade {
	return &PgxAttachmentRepository{db: db}
}

var _ portsrepo.AttachmentRepositoryFacade = (*PgxAttachmentRepository)(nil)

func (r *PgxAttachmentRepository) SaveAttachment(ctx context.Context, attachment domain.Attachment) error {
	m := mapping.ToModelAttachment(attachment)
	query := `
		INSERT INTO attachments (attachment_id, expense_id, filename, url, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := r.db.Exec(ctx, query, m.AttachmentID, m.ExpenseID, m.Filename, m.URL, m.ContentType, m.Size, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save attachment for expense %s: %w", m.ExpenseID, err)
	}
	return nil
}
