// Package oracle - проверка подписи записи и запросы баланса/merit адреса.
package oracle

import (
	"context"

	"directory/internal/models"
)

// BalanceSource - источник баланса и merit адреса
type BalanceSource interface {
	GetBalance(ctx context.Context, address string) (float64, error)
	GetMerit(ctx context.Context, address string) (float64, error)
}

// Oracle объединяет локальную проверку подписи и удаленный источник баланса
type Oracle struct {
	*Verifier
	source BalanceSource
}

// New создает Oracle
func New(verifier *Verifier, source BalanceSource) *Oracle {
	return &Oracle{Verifier: verifier, source: source}
}

// GetBalance возвращает баланс PSF адреса
func (o *Oracle) GetBalance(ctx context.Context, address string) (float64, error) {
	return o.source.GetBalance(ctx, address)
}

// GetMerit возвращает merit адреса
func (o *Oracle) GetMerit(ctx context.Context, address string) (float64, error) {
	return o.source.GetMerit(ctx, address)
}

var _ interface {
	VerifySignature(*models.Entry) bool
	BalanceSource
} = (*Oracle)(nil)
