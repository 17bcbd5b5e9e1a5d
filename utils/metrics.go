package utils

import (
	"fmt"
	"sync"
	"time"
)

// Metrics содержит счетчики операций с кредитами
type Metrics struct {
	mu sync.RWMutex

	LoansCreated     int64
	PaymentsRecorded int64
	LatePayments     int64
	LoansCompleted   int64
	LoansDefaulted   int64
	LastPaymentTime  time.Time

	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

// События, учитываемые RecordLoanEvent
const (
	EventLoanCreated     = "loan_created"
	EventPaymentRecorded = "payment_recorded"
	EventLatePayment     = "late_payment"
	EventLoanCompleted   = "loan_completed"
	EventLoanDefaulted   = "loan_defaulted"
)

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{ErrorTypes: make(map[string]int64)}
}

// GetMetrics возвращает общий экземпляр метрик процесса
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// RecordLoanEvent увеличивает счетчик события
func (m *Metrics) RecordLoanEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event {
	case EventLoanCreated:
		m.LoansCreated++
	case EventPaymentRecorded:
		m.PaymentsRecorded++
		m.LastPaymentTime = time.Now()
	case EventLatePayment:
		m.LatePayments++
	case EventLoanCompleted:
		m.LoansCompleted++
	case EventLoanDefaulted:
		m.LoansDefaulted++
	}
}

// RecordError учитывает ошибку по ее типу
func (m *Metrics) RecordError(err error) {
	if err == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()
	m.ErrorTypes[fmt.Sprintf("%T", err)]++
}

// Snapshot возвращает снимок текущих метрик
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"loans_created":     m.LoansCreated,
		"payments_recorded": m.PaymentsRecorded,
		"late_payments":     m.LatePayments,
		"loans_completed":   m.LoansCompleted,
		"loans_defaulted":   m.LoansDefaulted,
		"last_payment_time": m.LastPaymentTime,
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
		"error_types":       errorTypes,
	}
}

// Reset сбрасывает все метрики
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoansCreated = 0
	m.PaymentsRecorded = 0
	m.LatePayments = 0
	m.LoansCompleted = 0
	m.LoansDefaulted = 0
	m.LastPaymentTime = time.Time{}
	m.ErrorCount = 0
	m.LastErrorTime = time.Time{}
	m.ErrorTypes = make(map[string]int64)
}
