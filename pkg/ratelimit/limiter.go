// Package ratelimit - token bucket для исходящих запросов к внешним API.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter - token bucket: rate токенов в секунду, емкость burst.
// Каждый запрос забирает один токен.
type Limiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time
}

// New создает limiter с полным ведром.
// rate <= 0 - 10 req/sec; burst меньше rate поднимается до rate.
func New(rate, burst float64) *Limiter {
	if rate <= 0 {
		rate = 10
	}
	if burst < rate {
		burst = rate
	}
	l := &Limiter{rate: rate, burst: burst, tokens: burst, now: time.Now}
	l.last = l.now()
	return l
}

// refill вызывается под mu
func (l *Limiter) refill() {
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.last = now
}

// take забирает токен или возвращает время до появления следующего
func (l *Limiter) take() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}
	return time.Duration((1 - l.tokens) / l.rate * float64(time.Second)), false
}

// Wait блокирует до получения токена или отмены ctx
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait, ok := l.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Allow забирает токен без ожидания
func (l *Limiter) Allow() bool {
	_, ok := l.take()
	return ok
}

// Keyed - набор limiter'ов по ключу (эндпоинту). Limiter создается при первом обращении.
type Keyed struct {
	mu       sync.Mutex
	rate     float64
	burst    float64
	limiters map[string]*Limiter
}

// NewKeyed создает набор с одинаковыми параметрами для всех ключей
func NewKeyed(rate, burst float64) *Keyed {
	return &Keyed{rate: rate, burst: burst, limiters: make(map[string]*Limiter)}
}

// Get возвращает limiter для key
func (k *Keyed) Get(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = New(k.rate, k.burst)
		k.limiters[key] = l
	}
	return l
}

// Wait ожидает токен для key. throttled = true, если токена не было и пришлось ждать.
func (k *Keyed) Wait(ctx context.Context, key string) (throttled bool, err error) {
	l := k.Get(key)
	if l.Allow() {
		return false, nil
	}
	return true, l.Wait(ctx)
}
