package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// InvalidAmountError reports a non-positive trade amount. Local input
// validation, never retried.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("'amount' must be a positive number, got %s", e.Amount)
}

// UnknownCurrencyError reports an unsupported currency code.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency '%s'", e.Code)
}

// NoWalletError reports a sell attempted on a currency the user never bought.
// Wallets are only ever created by a first buy.
type NoWalletError struct {
	Code string
}

func (e *NoWalletError) Error() string {
	return fmt.Sprintf("no wallet for '%s': a wallet is created automatically on the first buy", e.Code)
}

// InsufficientFundsError reports a sell amount exceeding the wallet balance.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
	Code      string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s",
		e.Available.StringFixed(4), e.Code, e.Required.StringFixed(4), e.Code)
}

// RateUnavailableError reports that neither a source nor the fallback table
// produced the requested pair or its inverse. The caller may retry later.
type RateUnavailableError struct {
	FromCurrency string
	ToCurrency   string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("rate %s→%s unavailable, try again later", e.FromCurrency, e.ToCurrency)
}

// SourceFetchError reports a transient, provider-local failure. It is
// absorbed at the aggregator boundary and logged, never surfaced to the
// trading path.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source %s fetch failed: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }
