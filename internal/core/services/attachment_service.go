package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_manager_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var allowedUploadTypes = []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}

// AttachmentConfig locates stored uploads.
type AttachmentConfig struct {
	UploadsDir    string
	BaseURL       string
	MaxUploadSize int64
}

type attachmentService struct {
	BaseService
	cfg            AttachmentConfig
	expenseRepo    portsrepo.ExpenseReader
	attachmentRepo portsrepo.AttachmentRepositoryFacade
}

// NewAttachmentService creates the receipt upload service.
func NewAttachmentService(cfg AttachmentConfig, expenseRepo portsrepo.ExpenseReader, attachmentRepo portsrepo.AttachmentRepositoryFacade, opts ...ServiceOption) portssvc.AttachmentSvcFacade {
	return &attachmentService{
		BaseService:    newBase(opts),
		cfg:            cfg,
		expenseRepo:    expenseRepo,
		attachmentRepo: attachmentRepo,
	}
}

var _ portssvc.AttachmentSvcFacade = (*attachmentService)(nil)

func (s *attachmentService) UploadAttachment(ctx context.Context, caller domain.Principal, expenseID string, file portssvc.UploadFile) (*domain.Attachment, error) {
	if strings.TrimSpace(expenseID) == "" {
		return nil, fmt.Errorf("%w: expenseId is required", apperrors.ErrValidation)
	}
	content, mtype, err := s.readUpload(file)
	if err != nil {
		return nil, err
	}

	exp, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if exp == nil || !exp.IsOwnedBy(caller.UserID) {
		return nil, fmt.Errorf("%w: expense not found or you do not have permission", apperrors.ErrNotFound)
	}

	random, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("failed to name upload: %w", err)
	}
	storedName := random + mtype.Extension()
	if err := os.MkdirAll(s.cfg.UploadsDir, 0o755); err != nil {
		s.LogError(ctx, err, "Failed to create uploads directory", slog.String("dir", s.cfg.UploadsDir))
		return nil, fmt.Errorf("failed to prepare uploads directory: %w", err)
	}
	path := filepath.Join(s.cfg.UploadsDir, storedName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		s.LogError(ctx, err, "Failed to write upload", slog.String("path", path))
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	attachment := domain.Attachment{
		AttachmentID: uuid.NewString(),
		ExpenseID:    expenseID,
		Filename:     filepath.Base(file.Filename),
		URL:          s.cfg.BaseURL + "/uploads/" + storedName,
		ContentType:  mtype.String(),
		Size:         int64(len(content)),
		CreatedAt:    s.Now(),
	}
	if err := s.attachmentRepo.SaveAttachment(ctx, attachment); err != nil {
		s.LogError(ctx, err, "Failed to save attachment", slog.String("expense_id", expenseID))
		if rmErr := os.Remove(path); rmErr != nil {
			s.LogWarn(ctx, "Failed to remove orphaned upload", slog.String("path", path), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Attachment stored",
		slog.String("attachment_id", attachment.AttachmentID),
		slog.String("type", attachment.ContentType),
		slog.Int64("size", attachment.Size))
	return &attachment, nil
}

// ExtractReceipt validates the upload and returns canned extraction data
// until an OCR backend is wired in.
func (s *attachmentService) ExtractReceipt(ctx context.Context, caller domain.Principal, file portssvc.UploadFile) (*dto.OCRResponse, error) {
	if _, _, err := s.readUpload(file); err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Receipt extraction requested", slog.String("user_id", caller.UserID))
	return &dto.OCRResponse{
		Text: "OCR processed text would appear here",
		Data: dto.OCRData{
			Amount:   decimal.RequireFromString("125.50"),
			Date:     "2023-10-15",
			Vendor:   "Office Supplies Inc.",
			Category: "OFFICE_SUPPLIES",
		},
	}, nil
}

// readUpload reads at most MaxUploadSize bytes and checks the sniffed type.
func (s *attachmentService) readUpload(file portssvc.UploadFile) ([]byte, *mimetype.MIME, error) {
	if file.Content == nil {
		return nil, nil, fmt.Errorf("%w: no file uploaded", apperrors.ErrValidation)
	}
	limit := s.cfg.MaxUploadSize
	if file.Size > limit {
		return nil, nil, fmt.Errorf("%w: file size exceeds the %dMB limit", apperrors.ErrValidation, limit>>20)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(file.Content, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if n > limit {
		return nil, nil, fmt.Errorf("%w: file size exceeds the %dMB limit", apperrors.ErrValidation, limit>>20)
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no file uploaded", apperrors.ErrValidation)
	}

	mtype := mimetype.Detect(buf.Bytes())
	for _, allowed := range allowedUploadTypes {
		if mtype.Is(allowed) {
			return buf.Bytes(), mtype, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: invalid file type, only images and PDF files are allowed", apperrors.ErrValidation)
}
