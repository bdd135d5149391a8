package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/expense_manager_app/internal/core/domain"
	"github.com/SscSPs/expense_manager_app/internal/models"
)

// ToModelCompany converts a domain Company to a model Company
func ToModelCompany(d domain.Company) (models.Company, error) {
	settings := d.Settings
	if settings == nil {
		settings = map[string]string{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to encode company settings: %w", err)
	}
	return models.Company{
		CompanyID:       d.CompanyID,
		Name:            d.Name,
		DefaultCurrency: d.DefaultCurrency,
		Settings:        raw,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainCompany converts a model Company to a domain Company
func ToDomainCompany(m models.Company) (domain.Company, error) {
	d := domain.Company{
		CompanyID:       m.CompanyID,
		Name:            m.Name,
		DefaultCurrency: m.DefaultCurrency,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if len(m.Settings) > 0 {
		if err := json.Unmarshal(m.Settings, &d.Settings); err != nil {
			return domain.Company{}, fmt.Errorf("failed to decode settings of company %s: %w", m.CompanyID, err)
		}
	}
	return d, nil
}
