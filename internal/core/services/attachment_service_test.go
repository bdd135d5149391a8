package services_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header plus an IHDR chunk is enough for content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xDE,
}

func newAttachmentFixture(t *testing.T) (portssvc.AttachmentSvcFacade, *MockExpenseRepository, *MockAttachmentRepository, string) {
	dir := t.TempDir()
	expenseRepo := new(MockExpenseRepository)
	attachmentRepo := new(MockAttachmentRepository)
	svc := services.NewAttachmentService(services.AttachmentConfig{
		UploadsDir:    dir,
		BaseURL:       "http://files.test",
		MaxUploadSize: 1 << 10,
	}, expenseRepo, attachmentRepo)
	return svc, expenseRepo, attachmentRepo, dir
}

func TestAttachmentService_UploadStoresSniffedFile(t *testing.T) {
	svc, expenseRepo, attachmentRepo, dir := newAttachmentFixture(t)
	owner := domain.Principal{UserID: "emp-1", Role: domain.RoleEmployee, CompanyID: "co-1"}
	expenseRepo.On("FindExpenseByID", mock.Anything, "exp-1").Return(&domain.Expense{ExpenseID: "exp-1", UserID: "emp-1"}, nil).Once()
	attachmentRepo.On("SaveAttachment", mock.Anything, mock.MatchedBy(func(a domain.Attachment) bool {
		return a.ExpenseID == "exp-1" && a.ContentType == "image/png" && a.Filename == "receipt.png"
	})).Return(nil).Once()

	att, err := svc.UploadAttachment(context.Background(), owner, "exp-1", portssvc.UploadFile{
		Filename: "../../receipt.png",
		Size:     int64(len(pngBytes)),
		Content:  bytes.NewReader(pngBytes),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(att.URL, "http://files.test/uploads/"))
	assert.True(t, strings.HasSuffix(att.URL, ".png"))
	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(att.URL, "http://files.test/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
	attachmentRepo.AssertExpectations(t)
}

func TestAttachmentService_RejectsUnsupportedType(t *testing.T) {
	svc, expenseRepo, _, _ := newAttachmentFixture(t)
	owner := domain.Principal{UserID: "emp-1"}
	text := []byte("just some plain text pretending to be a receipt")

	_, err := svc.UploadAttachment(context.Background(), owner, "exp-1", portssvc.UploadFile{
		Filename: "receipt.png",
		Size:     int64(len(text)),
		Content:  bytes.NewReader(text),
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "only images and PDF")
	expenseRepo.AssertNotCalled(t, "FindExpenseByID", mock.Anything, mock.Anything)
}

func TestAttachmentService_RejectsOversizedFile(t *testing.T) {
	svc, _, _, _ := newAttachmentFixture(t)
	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<10)...)

	_, err := svc.UploadAttachment(context.Background(), domain.Principal{UserID: "emp-1"}, "exp-1", portssvc.UploadFile{
		Filename: "big.png",
		Size:     -1,
		Content:  bytes.NewReader(big),
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestAttachmentService_OtherUsersExpenseIsNotFound(t *testing.T) {
	svc, expenseRepo, attachmentRepo, _ := newAttachmentFixture(t)
	expenseRepo.On("FindExpenseByID", mock.Anything, "exp-1").Return(&domain.Expense{ExpenseID: "exp-1", UserID: "emp-2"}, nil).Once()

	_, err := svc.UploadAttachment(context.Background(), domain.Principal{UserID: "emp-1"}, "exp-1", portssvc.UploadFile{
		Filename: "receipt.png",
		Size:     int64(len(pngBytes)),
		Content:  bytes.NewReader(pngBytes),
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	attachmentRepo.AssertNotCalled(t, "SaveAttachment", mock.Anything, mock.Anything)
}

func TestAttachmentService_ExtractReceiptStub(t *testing.T) {
	svc, _, _, _ := newAttachmentFixture(t)

	resp, err := svc.ExtractReceipt(context.Background(), domain.Principal{UserID: "emp-1"}, portssvc.UploadFile{
		Filename: "receipt.png",
		Size:     int64(len(pngBytes)),
		Content:  bytes.NewReader(pngBytes),
	})

	require.NoError(t, err)
	assert.Equal(t, "Office Supplies Inc.", resp.Data.Vendor)
	assert.Equal(t, "125.5", resp.Data.Amount.String())
}
