package services

import (
	"context"
	"sync"
	"time"

	"motoloans/utils"

	"go.uber.org/zap"
)

// DefaultSweepScheduler периодически переводит просроченные кредиты в DEFAULTED
type DefaultSweepScheduler struct {
	loans    *LoanService
	interval time.Duration
	wg       sync.WaitGroup
}

// NewDefaultSweepScheduler создает новый экземпляр DefaultSweepScheduler
func NewDefaultSweepScheduler(loans *LoanService, interval time.Duration) *DefaultSweepScheduler {
	return &DefaultSweepScheduler{
		loans:    loans,
		interval: interval,
	}
}

// Start запускает планировщик; первый проход выполняется сразу.
// Планировщик останавливается при отмене ctx.
func (s *DefaultSweepScheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce выполняет один проход по открытым кредитам
func (s *DefaultSweepScheduler) RunOnce(ctx context.Context) int {
	start := time.Now()
	defaulted, err := s.loans.SweepDefaults(ctx, s.loans.now())
	utils.LogOperation("default_sweep", start, err, zap.Int("defaulted", defaulted))
	return defaulted
}

// Wait дожидается завершения горутины планировщика
func (s *DefaultSweepScheduler) Wait() {
	s.wg.Wait()
}
