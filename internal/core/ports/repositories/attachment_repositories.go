package repositories

import (
	"context"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
)

// AttachmentRepositoryFacade defines persistence operations for expense attachments
type AttachmentRepositoryFacade interface {
	SaveAttachment(ctx context.Context, attachment domain.Attachment) error
}
