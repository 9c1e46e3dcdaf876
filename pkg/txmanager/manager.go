package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

const (
	// maxAttempts максимальное число попыток выполнить сериализуемую транзакцию
	maxAttempts = 3

	// baseBackoff базовая задержка перед повторной попыткой
	baseBackoff = 25 * time.Millisecond

	// pgSerializationFailure код ошибки Postgres "could not serialize access"
	pgSerializationFailure = "40001"

	// pgDeadlockDetected код ошибки Postgres при взаимной блокировке
	pgDeadlockDetected = "40P01"
)

// ErrSerializationConflict возвращается, когда все попытки выполнить
// транзакцию завершились конфликтом сериализации
var ErrSerializationConflict = errors.New("txmanager: serialization conflict, retries exhausted")

// TxBeginner интерфейс для начала транзакций
// Поддерживает *dbmetrics.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TxMetrics счётчик повторов транзакций
type TxMetrics interface {
	IncTxRetry(operation string)
}

// TransactionManager выполняет функции в сериализуемых транзакциях
// с повторами при конфликтах сериализации
type TransactionManager struct {
	db      TxBeginner
	metrics TxMetrics
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithMetrics включает учёт повторов транзакций
func (m *TransactionManager) WithMetrics(metrics TxMetrics) *TransactionManager {
	m.metrics = metrics
	return m
}

// DoSerializable выполняет fn в транзакции с уровнем изоляции SERIALIZABLE
// Транзакция кладется в контекст: репозитории, вызванные из fn,
// автоматически выполняют запросы внутри неё (dbmetrics.GetExecutor).
//
// При конфликте сериализации (40001) или deadlock (40P01) транзакция
// повторяется до maxAttempts раз с джиттер-задержкой. После исчерпания
// попыток возвращается ErrSerializationConflict.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
		if m.metrics != nil {
			m.metrics.IncTxRetry("serializable")
		}

		// Джиттер, чтобы конкурирующие транзакции не повторялись синхронно
		backoff := baseBackoff*time.Duration(attempt) + time.Duration(rand.Int63n(int64(baseBackoff)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w: %v", ErrSerializationConflict, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("txmanager: failed to begin transaction: %w", err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txmanager: failed to commit transaction: %w", err)
	}

	return nil
}

// isRetryable возвращает true для ошибок, при которых транзакцию имеет смысл повторить
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
	}
	return false
}
