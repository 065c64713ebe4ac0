// Package retry - повтор запросов к внешним сервисам с экспоненциальной задержкой.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Policy описывает порядок повторов.
//
// Задержка перед попыткой n+1: min(BaseDelay * Factor^n, MaxDelay) ± Jitter.
type Policy struct {
	// Attempts - общее число попыток, включая первую. Меньше 1 трактуется как 1.
	Attempts int

	BaseDelay time.Duration
	MaxDelay  time.Duration
	Factor    float64

	// Jitter - доля случайного разброса задержки, от 0 до 1
	Jitter float64

	// ShouldRetry решает, стоит ли повторять ошибку. nil - повторять все, кроме Permanent.
	ShouldRetry func(error) bool

	// OnRetry вызывается перед ожиданием очередной попытки
	OnRetry func(attempt int, err error, wait time.Duration)
}

// OracleDefaults - политика для запросов к PSF оракулу: 3 попытки, 200ms, 400ms
func OracleDefaults() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Factor:    2,
		Jitter:    0.1,
	}
}

func (p *Policy) normalize() {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Factor < 1 {
		p.Factor = 2
	}
	p.Jitter = math.Max(0, math.Min(1, p.Jitter))
}

// Backoff возвращает задержку после неудачной попытки attempt (с нуля)
func (p Policy) Backoff(attempt int) time.Duration {
	p.normalize()

	d := float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Do выполняет op, пока она не завершится успешно, попытки не кончатся
// или ошибка не окажется неповторяемой. Возвращается последняя ошибка op.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p.normalize()

	var zero T
	var lastErr error

	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = unwrapPermanent(err)

		if !p.retryable(err) || attempt == p.Attempts-1 {
			return zero, lastErr
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		}
	}

	return zero, lastErr
}

func (p Policy) retryable(err error) bool {
	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	return true
}

// PermanentError помечает ошибку как неповторяемую
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent оборачивает err так, что Do вернет ее без повторов.
// Do снимает обертку, вызывающий код получает исходную ошибку.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func unwrapPermanent(err error) error {
	var perm *PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
