package mapping

import (
	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense. Lines,
// attachments and history are mapped separately.
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:         d.ExpenseID,
		CompanyID:         d.CompanyID,
		UserID:            d.UserID,
		Title:             d.Title,
		Description:       d.Description,
		ExpenseDate:       d.Date,
		Category:          d.Category,
		OriginalAmount:    d.OriginalAmount,
		OriginalCurrency:  d.OriginalCurrency,
		ConvertedAmount:   d.ConvertedAmount,
		ExchangeRate:      d.ExchangeRate,
		Status:            string(d.Status),
		CurrentApproverID: d.CurrentApproverID,
		Version:           d.Version,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense with empty collections.
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:         m.ExpenseID,
		CompanyID:         m.CompanyID,
		UserID:            m.UserID,
		Title:             m.Title,
		Description:       m.Description,
		Date:              m.ExpenseDate,
		Category:          m.Category,
		OriginalAmount:    m.OriginalAmount,
		OriginalCurrency:  m.OriginalCurrency,
		ConvertedAmount:   m.ConvertedAmount,
		ExchangeRate:      m.ExchangeRate,
		Status:            domain.ExpenseStatus(m.Status),
		CurrentApproverID: m.CurrentApproverID,
		Version:           m.Version,
		Lines:             []domain.ExpenseLine{},
		Attachments:       []domain.Attachment{},
		ApprovalHistory:   []domain.ApprovalHistory{},
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelExpenseLines converts domain lines to rows, numbering them in order.
func ToModelExpenseLines(expenseID string, ds []domain.ExpenseLine) []models.ExpenseLine {
	ms := make([]models.ExpenseLine, len(ds))
	for i, d := range ds {
		ms[i] = models.ExpenseLine{
			LineID:      d.LineID,
			ExpenseID:   expenseID,
			LineNo:      i + 1,
			Description: d.Description,
			Amount:      d.Amount,
		}
	}
	return ms
}

// ToDomainExpenseLine converts a model ExpenseLine to a domain ExpenseLine
func ToDomainExpenseLine(m models.ExpenseLine) domain.ExpenseLine {
	return domain.ExpenseLine{
		LineID:      m.LineID,
		ExpenseID:   m.ExpenseID,
		Description: m.Description,
		Amount:      m.Amount,
	}
}

// ToModelAttachment converts a domain Attachment to a model Attachment
func ToModelAttachment(d domain.Attachment) models.Attachment {
	return models.Attachment{
		AttachmentID: d.AttachmentID,
		ExpenseID:    d.ExpenseID,
		Filename:     d.Filename,
		URL:          d.URL,
		ContentType:  d.ContentType,
		Size:         d.Size,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAttachment converts a model Attachment to a domain Attachment
func ToDomainAttachment(m models.Attachment) domain.Attachment {
	return domain.Attachment{
		AttachmentID: m.AttachmentID,
		ExpenseID:    m.ExpenseID,
		Filename:     m.Filename,
		URL:          m.URL,
		ContentType:  m.ContentType,
		Size:         m.Size,
		CreatedAt:    m.CreatedAt,
	}
}

// ToModelApprovalHistory converts a domain ApprovalHistory to a model ApprovalHistory
func ToModelApprovalHistory(d domain.ApprovalHistory) models.ApprovalHistory {
	return models.ApprovalHistory{
		HistoryID:  d.HistoryID,
		ExpenseID:  d.ExpenseID,
		ApproverID: d.ApproverID,
		Decision:   string(d.Decision),
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt,
	}
}

// ToDomainApprovalHistory converts a model ApprovalHistory to a domain ApprovalHistory
func ToDomainApprovalHistory(m models.ApprovalHistory) domain.ApprovalHistory {
	return domain.ApprovalHistory{
		HistoryID:  m.HistoryID,
		ExpenseID:  m.ExpenseID,
		ApproverID: m.ApproverID,
		Decision:   domain.Decision(m.Decision),
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt,
	}
}
