package models

// Company is a row of the companies table. Settings is raw JSONB.
type Company struct {
	CompanyID       string `db:"company_id"`
	Name            string `db:"name"`
	DefaultCurrency string `db:"default_currency"`
	Settings        []byte `db:"settings"`
	AuditFields
}
