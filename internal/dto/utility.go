package dto

import "github.com/shopspring/decimal"

// UploadResponse is returned after a receipt upload.
type UploadResponse struct {
	AttachmentID string `json:"attachmentId"`
	FileURL      string `json:"fileUrl"`
}

// OCRData is the structured data extracted from a receipt.
type OCRData struct {
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Vendor   string          `json:"vendor"`
	Category string          `json:"category"`
}

// OCRResponse is the result of receipt text extraction.
type OCRResponse struct {
	Text string  `json:"text"`
	Data OCRData `json:"data"`
}

// ExchangeRateParams selects a currency pair.
type ExchangeRateParams struct {
	From string `form:"from" binding:"required,len=3,alpha"`
	To   string `form:"to" binding:"required,len=3,alpha"`
}

// ExchangeRateResponse is the conversion rate for a currency pair.
type ExchangeRateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}
