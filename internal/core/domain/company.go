package domain

// Company is the tenant that owns users, expenses and approval rules.
type Company struct {
	CompanyID       string            `json:"id"`
	Name            string            `json:"name"`
	DefaultCurrency string            `json:"defaultCurrency"`
	Settings        map[string]string `json:"settings,omitempty"`
	AuditFields
}
