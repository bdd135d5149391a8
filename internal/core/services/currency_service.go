package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/expense_manager_app/internal/apperrors"
	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/utils"
	"github.com/shopspring/decimal"
)

// stubCrossRate is returned for every pair of distinct currencies until a
// rate provider is configured.
var stubCrossRate = decimal.RequireFromString("1.1")

type currencyService struct {
	BaseService
}

// NewCurrencyService creates the stub currency converter.
func NewCurrencyService(opts ...ServiceOption) portssvc.CurrencySvcFacade {
	return &currencyService{BaseService: newBase(opts)}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency code must be 3 letters, got %q", apperrors.ErrValidation, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency code must be 3 letters, got %q", apperrors.ErrValidation, code)
		}
	}
	return code, nil
}

func (s *currencyService) GetExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return decimal.Zero, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	s.LogDebug(ctx, "Using stub exchange rate", "from", from, "to", to)
	return stubCrossRate, nil
}

func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	rate, err := s.GetExchangeRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return utils.RoundMoney(amount.Mul(rate)), rate, nil
}
