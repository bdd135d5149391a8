package services

import (
	"context"
	"io"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencySvcFacade converts amounts between currencies
type CurrencySvcFacade interface {
	// GetExchangeRate returns how many units of to one unit of from buys.
	GetExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)

	// Convert converts amount from one currency to another, returning the converted amount and the rate used.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
}

// UploadFile is a received multipart file.
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AttachmentSvcFacade stores receipts and extracts their data
type AttachmentSvcFacade interface {
	// UploadAttachment stores a receipt for one of the caller's expenses.
	UploadAttachment(ctx context.Context, caller domain.Principal, expenseID string, file UploadFile) (*domain.Attachment, error)

	// ExtractReceipt returns the structured data read from a receipt image.
	ExtractReceipt(ctx context.Context, caller domain.Principal, file UploadFile) (*dto.OCRResponse, error)
}
