package utils

import (
	"sync"
	"time"
)

// AttemptLimiter ограничивает число неудачных попыток по ключу в скользящем окне
type AttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewAttemptLimiter создает новый AttemptLimiter
func NewAttemptLimiter(limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени
func (l *AttemptLimiter) WithClock(now func() time.Time) *AttemptLimiter {
	l.now = now
	return l
}

// Blocked сообщает, исчерпан ли лимит попыток
func (l *AttemptLimiter) Blocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) >= l.limit
}

// Record учитывает неудачную попытку
func (l *AttemptLimiter) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = append(l.prune(key), l.now())
}

// Reset сбрасывает счетчик для ключа
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Remaining возвращает количество оставшихся попыток
func (l *AttemptLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if left := l.limit - len(l.prune(key)); left > 0 {
		return left
	}
	return 0
}

// ResetTime возвращает момент, когда освободится самая старая попытка
func (l *AttemptLimiter) ResetTime(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempts := l.prune(key)
	if len(attempts) == 0 {
		return l.now()
	}
	return attempts[0].Add(l.window)
}

// prune удаляет попытки за пределами окна; вызывается под мьютексом
func (l *AttemptLimiter) prune(key string) []time.Time {
	windowStart := l.now().Add(-l.window)
	attempts := l.attempts[key]

	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}
